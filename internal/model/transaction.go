package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType partitions transactions into money going out and
// money coming in.
type TransactionType string

const (
	TransactionExpense TransactionType = "expense"
	TransactionIncome  TransactionType = "income"
)

// Transaction represents a single expense or income record attributed
// to one user within one group.
type Transaction struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	GroupID     int64           `json:"groupId"`
	UserID      int64           `json:"userId"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CreateTransactionRequest represents the request to create a transaction
type CreateTransactionRequest struct {
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	GroupID     int64           `json:"groupId"`
	UserID      int64           `json:"userId"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category,omitempty"`
}

// UpdateTransactionRequest represents a partial transaction update
type UpdateTransactionRequest struct {
	Description *string          `json:"description,omitempty"`
	Amount      *float64         `json:"amount,omitempty"`
	Type        *TransactionType `json:"type,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// Totals aggregates a transaction set. Amounts travel the wire as JSON
// numbers but are summed as decimals, so Balance is exactly
// Income minus Expenses at every scope the totals are computed at.
type Totals struct {
	Expenses decimal.Decimal
	Income   decimal.Decimal
	Balance  decimal.Decimal
}

// SumTransactions partitions transactions by type and sums each side.
// Unknown types are ignored.
func SumTransactions(transactions []Transaction) Totals {
	var expenses, income decimal.Decimal
	for _, t := range transactions {
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Type {
		case TransactionExpense:
			expenses = expenses.Add(amount)
		case TransactionIncome:
			income = income.Add(amount)
		}
	}
	return Totals{
		Expenses: expenses,
		Income:   income,
		Balance:  income.Sub(expenses),
	}
}
