// Package money provides a decimal monetary value tagged with its currency.
//
// Invariants:
//   - Amounts use exact decimal arithmetic, never binary floating point.
//   - Arithmetic between two values requires matching currencies.
//   - Converted amounts are rounded half-to-even to two places (RoundBank).
package money

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amirasaad/bank/pkg/currency"
	"github.com/shopspring/decimal"
)

// ConvertedScale is the number of decimal places kept for converted amounts.
const ConvertedScale int32 = 2

var (
	// ErrCurrencyMismatch is returned when combining values of different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidAmount is returned when an amount string cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Money is an immutable decimal amount in a specific currency.
type Money struct {
	amount   decimal.Decimal
	currency currency.Code
}

// New creates a Money value.
func New(amount decimal.Decimal, code currency.Code) Money {
	return Money{amount: amount, currency: code}
}

// Parse creates a Money value from a decimal string such as "10.50".
func Parse(amount string, code currency.Code) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return New(d, code), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(amount string, code currency.Code) Money {
	m, err := Parse(amount, code)
	if err != nil {
		panic(fmt.Sprintf("money.MustParse(%q, %s): %v", amount, code, err))
	}
	return m
}

// Zero returns a zero amount in the given currency.
func Zero(code currency.Code) Money {
	return Money{amount: decimal.Zero, currency: code}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other. Currencies must match.
// The result may be negative; callers enforcing balances check it.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Cmp compares m and other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is strictly below zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Equals reports whether both amount and currency match.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// RoundBank rounds half-to-even to the given number of places.
func (m Money) RoundBank(places int32) Money {
	return Money{amount: m.amount.RoundBank(places), currency: m.currency}
}

// Convert multiplies m by rate and returns the result in the target currency,
// rounded half-to-even to ConvertedScale places.
func (m Money) Convert(rate decimal.Decimal, to currency.Code) Money {
	return Money{amount: m.amount.Mul(rate).RoundBank(ConvertedScale), currency: to}
}

// String renders the amount followed by the currency code.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.String(), m.currency)
}

// MarshalJSON renders {"amount": "10.5", "currency": "USD"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency currency.Code   `json:"currency"`
	}{Amount: m.amount, Currency: m.currency})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var aux struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	code, err := currency.Parse(aux.Currency)
	if err != nil {
		return err
	}
	m.amount = aux.Amount
	m.currency = code
	return nil
}
