package currency

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/amirasaad/bank/pkg/service/currency")

// Conversion is the full answer of the converter endpoint.
type Conversion struct {
	Symbols         string          `json:"symbols"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Service converts amounts between currencies using quotes from a RateSource.
// It implements provider.CurrencyConverter.
type Service struct {
	source provider.RateSource
	logger *slog.Logger
}

// New creates a converter service.
func New(source provider.RateSource, logger *slog.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// ConvertSymbols converts amount for a pair symbol such as "USD_EUR".
func (s *Service) ConvertSymbols(
	ctx context.Context,
	symbols string,
	amount decimal.Decimal,
) (*Conversion, error) {
	logger := s.logger.With("symbols", symbols, "amount", amount.String())
	ctx, span := tracer.Start(ctx, "currency.ConvertSymbols")
	defer span.End()
	span.SetAttributes(attribute.String("symbols", symbols))

	if !amount.IsPositive() {
		logger.Warn("Conversion rejected: non-positive amount")
		return nil, provider.ErrInvalidAmount
	}
	from, to, ok := currency.SplitPair(symbols)
	if !ok {
		logger.Warn("Conversion rejected: malformed symbols")
		return nil, provider.ErrInvalidSyntax
	}
	if _, err := currency.Parse(string(from)); err != nil {
		return nil, domain.Wrapf(provider.ErrUnsupportedCurrency, "invalid currency code %s. Example: BRL, USD, CAD, AUD", from)
	}
	if _, err := currency.Parse(string(to)); err != nil {
		return nil, domain.Wrapf(provider.ErrUnsupportedCurrency, "invalid currency code %s. Example: BRL, USD, CAD, AUD", to)
	}
	normalized := currency.Pair(from, to)

	quote, err := s.source.Quote(ctx, normalized)
	if err != nil {
		logger.Error("Quote lookup failed", "source", s.source.Name(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	converted := money.New(amount, from).Convert(quote.Price, to)
	logger.Info("Conversion done", "rate", quote.Price.String(), "converted", converted.Amount().String())
	return &Conversion{
		Symbols:         normalized,
		ExchangeRate:    quote.Price.RoundBank(money.ConvertedScale),
		Amount:          amount,
		ConvertedAmount: converted.Amount(),
		Timestamp:       quote.Timestamp.UTC(),
	}, nil
}

// Convert implements provider.CurrencyConverter.
func (s *Service) Convert(
	ctx context.Context,
	amount money.Money,
	to currency.Code,
) (*provider.ConvertedAmount, error) {
	c, err := s.ConvertSymbols(ctx, currency.Pair(amount.Currency(), to), amount.Amount())
	if err != nil {
		return nil, err
	}
	return &provider.ConvertedAmount{
		Value:     money.New(c.ConvertedAmount, to),
		Rate:      c.ExchangeRate,
		Timestamp: c.Timestamp,
	}, nil
}

var _ provider.CurrencyConverter = (*Service)(nil)
