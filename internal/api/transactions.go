package api

import (
	"context"
	"fmt"

	"github.com/poupix/poupix/internal/model"
)

// TransactionService covers the transaction endpoints.
type TransactionService struct {
	client *Client
}

// Create records a new transaction in a group.
func (s *TransactionService) Create(ctx context.Context, groupID int64, req model.CreateTransactionRequest) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := s.client.post(ctx, fmt.Sprintf("/groups/%d/transactions", groupID), req, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Update applies a partial update to a transaction.
func (s *TransactionService) Update(ctx context.Context, transactionID int64, req model.UpdateTransactionRequest) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := s.client.put(ctx, fmt.Sprintf("/transactions/%d", transactionID), req, &transaction); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// Delete removes a transaction permanently; there is no undo.
func (s *TransactionService) Delete(ctx context.Context, transactionID int64) error {
	return s.client.delete(ctx, fmt.Sprintf("/transactions/%d", transactionID))
}
