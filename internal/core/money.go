// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals so that discounts and surcharges such as
// x0.80 or x1.03 stay exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cashDiscountRate  = decimal.RequireFromString("0.20")
	otherDiscountRate = decimal.RequireFromString("0.10")
	openEndedRate     = decimal.RequireFromString("0.03")
	longPlanRate      = decimal.RequireFromString("0.10")
	mediumPlanRate    = decimal.RequireFromString("0.05")
	shortPlanRate     = decimal.RequireFromString("0.03")
)

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// zero and anything that is not a plain decimal number are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
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

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
