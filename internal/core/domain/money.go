package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyEUR is the only currency this subsystem quotes in.
const CurrencyEUR = "EUR"

// Money is an exact base-10 amount tagged with a currency code.
// Amounts are never round-tripped through binary floats; shopspring/decimal
// serializes them as quoted decimal strings, which keeps the store
// round-trip exact.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney builds an EUR money value from an exact decimal.
func NewMoney(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: CurrencyEUR}
}

// MoneyFromString parses an exact decimal string into an EUR money value.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// ZeroMoney is the "no pricing-grid entry" sentinel, distinct from a
// negative amount which is always invalid.
func ZeroMoney() Money {
	return NewMoney(decimal.Zero)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is strictly below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// MulInt multiplies the amount by an integer quantity.
func (m Money) MulInt(n int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(n)), Currency: m.Currency}
}

// Mul multiplies the amount by an exact decimal factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// Add sums two amounts. Both sides carry EUR in this subsystem, so no
// conversion is attempted.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

// Equal compares amount and currency without losing precision.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String renders the amount with two decimal places, e.g. "1070.00".
func (m Money) String() string {
	return m.Amount.StringFixed(2)
}
