// Package money provides a fixed-point USD amount type. All arithmetic and
// persistence happen in integer cents; decimal strings exist only at the API
// and gateway boundary.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is a USD amount in integer cents.
type Money int64

var (
	hundred = decimal.NewFromInt(100)
	// IntPart wraps silently past int64, so amounts are bounded first.
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

func FromCents(cents int64) Money {
	return Money(cents)
}

// FromUSDString parses a decimal USD string like "25.00" into cents.
// Amounts with sub-cent precision are rejected rather than rounded.
func FromUSDString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has sub-cent precision", s)
	}
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return Money(cents.IntPart()), nil
}

func (m Money) Cents() int64 {
	return int64(m)
}

// USDString renders the amount with exactly two decimal digits.
func (m Money) USDString() string {
	return decimal.NewFromInt(int64(m)).Div(hundred).StringFixed(2)
}

func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) Neg() Money {
	return -m
}

func (m Money) IsPositive() bool {
	return m > 0
}
