package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point money value with two decimal places.
// It is serialized as a JSON string ("12.50") and accepts either a JSON
// string or number on input. Database values are stored as TEXT.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses s into an Amount.
func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

// MustAmount is like NewAmount but panics on malformed input.
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the amount with exactly two decimals.
func (a Amount) String() string {
	return a.StringFixed(2)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.StringFixed(2))
}
