// Package money holds the rounding rules for the single settlement currency.
// Every persisted or reported amount passes through Round.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the fixed currency precision.
const Places int32 = 2

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// Round rounds to Places using round-half-up (ties go toward +inf).
// decimal.Round rounds half away from zero, which differs for negatives.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Shift(Places).Add(half).Floor().Shift(-Places)
}

// Sum adds the amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Percent returns part/whole*100 rounded to Places, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round(part.Div(whole).Mul(hundred))
}

// Ratio returns part/whole rounded to Places, or false when whole is zero.
func Ratio(part, whole decimal.Decimal) (decimal.Decimal, bool) {
	if whole.IsZero() {
		return decimal.Zero, false
	}
	return Round(part.Div(whole)), true
}

// Parse parses a decimal amount string and rejects negatives.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", s)
	}
	return d, nil
}
