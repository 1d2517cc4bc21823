package provider

import "github.com/amirasaad/bank/pkg/domain"

// Conversion gateway failures. Each one aborts a cross-currency transfer
// before any balance is touched.
var (
	// ErrCurrencyNotFound is returned when the upstream does not know the pair.
	ErrCurrencyNotFound = domain.NewError(domain.KindNotFound, "currency_not_found", "currency pair not found")
	// ErrInvalidSyntax is returned for pair symbols not shaped like "USD_EUR".
	ErrInvalidSyntax = domain.NewError(domain.KindInvalidInput, "invalid_syntax", "Example: USD_EUR")
	// ErrInvalidAmount is returned when the amount to convert is zero or less.
	ErrInvalidAmount = domain.NewError(domain.KindInvalidInput, "invalid_amount", "Amount value must be greater than zero")
	// ErrTimeout is returned when the upstream did not answer in time.
	ErrTimeout = domain.NewError(domain.KindUpstreamFailure, "timeout", "Timeout occurred while calling the external API")
	// ErrExternalService is returned for any other upstream failure.
	ErrExternalService = domain.NewError(domain.KindUpstreamFailure, "external_service_error", "external service error")
)

// ErrUnsupportedCurrency is returned when either side of a pair is not ISO 4217.
var ErrUnsupportedCurrency = domain.NewError(domain.KindInvalidInput, "unsupported_currency", "Example: BRL, USD, CAD, AUD")
