// Package core provides amount parsing for transaction records.
//
// Amounts are stored as trimmed decimal text as entered. Parsing happens at
// two places: strictly at the form boundary and leniently for summation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user supplied amount.
//
// Only plain decimals with a dot separator are accepted. Grouping commas,
// signs, empty input and non-positive values return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("1,000") -> 0, ErrInvalidAmount
//	ParseAmount("0")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = NormalizeAmount(s)
	if s == "" || strings.ContainsAny(s, ",+-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountValue is the lenient reader used for summation: malformed or empty
// amounts count as zero instead of failing.
func AmountValue(s string) decimal.Decimal {
	s = NormalizeAmount(s)
	if strings.Contains(s, ",") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeAmount is the form in which an amount is stored
func NormalizeAmount(s string) string {
	return strings.TrimSpace(s)
}
