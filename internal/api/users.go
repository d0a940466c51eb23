package api

import (
	"context"
	"fmt"

	"github.com/poupix/poupix/internal/model"
)

// UserService covers the /users endpoints.
type UserService struct {
	client *Client
}

// Create registers a new user.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	var user model.User
	if err := s.client.post(ctx, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAll lists every user in the directory.
func (s *UserService) GetAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.client.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID fetches one user.
func (s *UserService) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := s.client.get(ctx, fmt.Sprintf("/users/%d", userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetGroups lists the groups a user belongs to.
func (s *UserService) GetGroups(ctx context.Context, userID int64) ([]model.Group, error) {
	var groups []model.Group
	if err := s.client.get(ctx, fmt.Sprintf("/users/%d/groups", userID), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetTransactions lists the transactions a user has recorded, across
// all their groups.
func (s *UserService) GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	var transactions []model.Transaction
	if err := s.client.get(ctx, fmt.Sprintf("/users/%d/transactions", userID), &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, userID int64, req model.UpdateUserRequest) (*model.User, error) {
	var user model.User
	if err := s.client.put(ctx, fmt.Sprintf("/users/%d", userID), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
