// Package currency holds the ISO 4217 currency code type used by accounts and money.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// Code is a three-letter ISO 4217 currency code (e.g. "USD", "BRL").
type Code string

// Commonly used codes.
const (
	BRL Code = "BRL"
	USD Code = "USD"
	EUR Code = "EUR"
	CAD Code = "CAD"
	AUD Code = "AUD"
	GBP Code = "GBP"
	JPY Code = "JPY"
)

// ErrInvalidCode is returned when a string is not a recognised ISO 4217 code.
var ErrInvalidCode = errors.New("invalid currency code")

// Parse normalises s to upper case and checks it against the ISO 4217 table.
func Parse(s string) (Code, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if len(normalized) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	unit, err := currency.ParseISO(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	return Code(unit.String()), nil
}

// IsValid reports whether c is a recognised ISO 4217 code.
func (c Code) IsValid() bool {
	_, err := Parse(string(c))
	return err == nil && strings.ToUpper(string(c)) == string(c)
}

// String returns the code as a plain string.
func (c Code) String() string {
	return string(c)
}

// Pair joins two codes into the upstream pair symbol, e.g. "BRL_USD".
func Pair(from, to Code) string {
	return fmt.Sprintf("%s_%s", from, to)
}

// SplitPair parses a pair symbol of the form "AAA_BBB".
func SplitPair(symbols string) (from, to Code, ok bool) {
	parts := strings.Split(symbols, "_")
	if len(parts) != 2 || len(parts[0]) != 3 || len(parts[1]) != 3 {
		return "", "", false
	}
	for _, r := range parts[0] + parts[1] {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return "", "", false
		}
	}
	return Code(strings.ToUpper(parts[0])), Code(strings.ToUpper(parts[1])), true
}
