package models

import "time"

// TransactionType separates money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
	Title  string `json:"title"`

	// Amount is signed; the Type field, not the sign, decides whether it
	// counts as income or expense in summaries.
	Amount Amount          `json:"amount"`
	Type   TransactionType `json:"type"`
	Notes  string          `json:"notes"`

	TransactionDate time.Time `json:"transaction_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
