// Package money holds the minor-unit arithmetic shared by drafts, quotes and
// reports. Amounts travel as integer cents everywhere inside the service;
// decimal math only happens here, and only for rounding and display.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string such as "8.50" into cents,
// rounding half-up at two decimal places.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q must be non-negative", value)
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

// TaxAmount returns round-half-up(subtotal * ratePercent / 100) in cents.
// Negative rates are rejected by callers before reaching here; a zero rate
// yields zero tax.
func TaxAmount(subtotalCents int64, ratePercent decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotalCents).
		Mul(ratePercent).
		Div(hundred).
		Round(0).
		IntPart()
}

// Format renders cents as a plain two-decimal string, e.g. 2550 -> "25.50".
func Format(cents int64) string {
	return decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}
