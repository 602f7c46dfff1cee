package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, matching what clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrAmountRequired = errors.New("amount is required")
	ErrAmountNaN      = errors.New("amount must be a number")
	ErrAmountNegative = errors.New("amount cannot be negative")
)

// ParseAmount parses a user-entered amount. Non-numeric input is rejected
// rather than coerced to zero, and so are negative amounts.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrAmountRequired
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmountNaN
	}
	if d.IsNegative() {
		return decimal.Zero, ErrAmountNegative
	}
	return d, nil
}

// AmountOf returns a pointer to d, for inputs where an amount must be
// supplied explicitly.
func AmountOf(d decimal.Decimal) *decimal.Decimal {
	return &d
}
