// Package calculator holds the fixed-point money rules shared by payload
// validation and reporting.
package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// DecimalPlaces is the number of fractional digits an amount may carry.
	DecimalPlaces = 2

	// MaxIntegerDigits bounds the integer part of an amount.
	MaxIntegerDigits = 10
)

var (
	ErrTooManyDecimals = errors.New("ensure that there are no more than 2 decimal places")
	ErrTooManyDigits   = errors.New("ensure that there are no more than 10 digits before the decimal point")
	ErrNotPositive     = errors.New("ensure this value is greater than zero")
)

var maxAmount = decimal.New(1, MaxIntegerDigits)

// Exponent bounds checked before any rescaling. Round and Cmp expand the
// coefficient to the operand's exponent, so "1e-20000000" would otherwise
// allocate a 20-million-digit integer.
const (
	minExponent = -(DecimalPlaces + MaxIntegerDigits)
	maxExponent = MaxIntegerDigits
)

// CheckAmount reports whether d fits the 2-decimal fixed-point format.
// Trailing zeros are not counted, so "1.500" is accepted as 1.50, as long
// as the written exponent stays within minExponent.
func CheckAmount(d decimal.Decimal) error {
	switch exp := d.Exponent(); {
	case exp < minExponent:
		return ErrTooManyDecimals
	case exp > maxExponent:
		if d.IsZero() {
			return nil
		}
		return ErrTooManyDigits
	}

	if !d.Equal(d.Round(DecimalPlaces)) {
		return ErrTooManyDecimals
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return ErrTooManyDigits
	}
	return nil
}

// CheckPositiveAmount is CheckAmount plus a strict lower bound of zero.
func CheckPositiveAmount(d decimal.Decimal) error {
	if err := CheckAmount(d); err != nil {
		return err
	}
	if !d.IsPositive() {
		return ErrNotPositive
	}
	return nil
}

// Normalize rounds d to DecimalPlaces so stored values compare equal.
func Normalize(d decimal.Decimal) decimal.Decimal {
	return d.Round(DecimalPlaces)
}
