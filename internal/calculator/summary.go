package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tracker/internal/models"
)

// Summary aggregates a set of transactions.
type Summary struct {
	Income  models.Amount `json:"income"`  // Sum of |amount| over income entries
	Expense models.Amount `json:"expense"` // Sum of |amount| over expense entries
	Net     models.Amount `json:"net"`     // Income - Expense
	Count   int           `json:"count"`
}

// Summarize totals transactions by type.
//
// The Type field decides the direction of each entry; the sign of the stored
// amount is ignored, so an expense recorded as -20 and one recorded as 20
// both add 20 to Expense.
func Summarize(txns []*models.Transaction) Summary {
	income := decimal.Zero
	expense := decimal.Zero

	for _, t := range txns {
		abs := t.Amount.Abs()
		switch t.Type {
		case models.TransactionIncome:
			income = income.Add(abs)
		case models.TransactionExpense:
			expense = expense.Add(abs)
		}
	}

	return Summary{
		Income:  models.Amount{Decimal: Normalize(income)},
		Expense: models.Amount{Decimal: Normalize(expense)},
		Net:     models.Amount{Decimal: Normalize(income.Sub(expense))},
		Count:   len(txns),
	}
}
