// Package provider declares the contracts for external collaborators of the
// ledger: the currency conversion gateway and the rate source behind it.
package provider

import (
	"context"
	"time"

	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/shopspring/decimal"
)

// ConvertedAmount is the outcome of a conversion. Value and Rate are rounded
// half-to-even to two places; Timestamp is the quote time in UTC.
type ConvertedAmount struct {
	Value     money.Money
	Rate      decimal.Decimal
	Timestamp time.Time
}

// CurrencyConverter is the Currency Conversion Gateway used by transfers.
// Implementations must not mutate any local state.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount money.Money, to currency.Code) (*ConvertedAmount, error)
}

// Quote is an upstream price for one unit of the base currency of a pair.
type Quote struct {
	Symbols   string          `json:"symbols"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// RateSource fetches a quote for a pair symbol such as "BRL_USD".
type RateSource interface {
	Quote(ctx context.Context, symbols string) (*Quote, error)
	Name() string
}
