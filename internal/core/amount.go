// Package core provides the donation domain types and field parsing.
//
// This file contains the currency-string coercion used during cleaning:
// raw amounts arrive as display strings ("$1,200.50") and are reduced to
// plain float64 dollars before any aggregation happens.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount coerces a currency-like display string to a float64 amount.
//
// All runes except digits, the decimal point, and a single leading minus
// sign are stripped before parsing, so currency symbols and thousands
// separators are tolerated. Anything that does not survive as a valid
// number fails with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("$1,200.50") -> 1200.50, nil
//	ParseAmount("100")       -> 100, nil
//	ParseAmount("-$25")      -> -25, nil
//	ParseAmount("N/A")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	var b strings.Builder
	negative := false
	for i, r := range s {
		switch {
		case unicode.IsDigit(r), r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			negative = true
		}
	}

	stripped := b.String()
	if stripped == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Count(stripped, ".") > 1 {
		return 0, ErrInvalidAmount
	}

	v, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if negative {
		v = -v
	}
	return v, nil
}
