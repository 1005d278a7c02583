package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a rate or amount is NaN, infinite or
// otherwise unusable for payroll arithmetic.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// Round applies the engine's boundary rounding: two decimal places,
// half-up. Every monetary value crossing a calculation boundary goes
// through here before it is returned or persisted.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundHours rounds a leave-hours figure to four decimal places. Leave is
// tracked in hours, not cents, and needs the extra precision to keep
// accrual linear at fortnightly magnitudes.
func RoundHours(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// FromFloat converts an externally supplied float into a decimal, rejecting
// NaN and infinities before they can propagate into a stored balance.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}

// NonNegativeFromFloat is FromFloat with a non-negative guard, for rates
// and hours that must never be below zero.
func NonNegativeFromFloat(f float64) (decimal.Decimal, error) {
	d, err := FromFloat(f)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Cents returns the amount in integer minor units after boundary rounding.
func Cents(d decimal.Decimal) int64 {
	return Round(d).Mul(decimal.NewFromInt(100)).IntPart()
}

// FromCents converts integer minor units back into a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
