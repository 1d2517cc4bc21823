package provider

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/sony/gobreaker"
)

// BreakerRateSource trips after consecutive upstream failures and then fails
// fast with ExternalServiceError until the breaker half-opens.
type BreakerRateSource struct {
	next   provider.RateSource
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerRateSource wraps next with a circuit breaker.
func NewBreakerRateSource(next provider.RateSource, cfg *config.Breaker, logger *slog.Logger) *BreakerRateSource {
	logger = logger.With("breaker", next.Name())
	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
		},
		// Caller mistakes (unknown pair, bad syntax) say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || domain.KindOf(err) != domain.KindUpstreamFailure
		},
	}
	return &BreakerRateSource{next: next, cb: gobreaker.NewCircuitBreaker(settings), logger: logger}
}

// Name returns the wrapped source name.
func (b *BreakerRateSource) Name() string { return b.next.Name() }

// Quote calls the wrapped source through the breaker.
func (b *BreakerRateSource) Quote(ctx context.Context, symbols string) (*provider.Quote, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.Quote(ctx, symbols)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.logger.Warn("Quote short-circuited", "symbols", symbols, "state", b.cb.State().String())
			return nil, &domain.Error{
				Kind:    provider.ErrExternalService.Kind,
				Code:    provider.ErrExternalService.Code,
				Message: "External service unavailable",
				Err:     err,
			}
		}
		return nil, err
	}
	return res.(*provider.Quote), nil
}

// State reports the breaker state.
func (b *BreakerRateSource) State() gobreaker.State { return b.cb.State() }

var _ provider.RateSource = (*BreakerRateSource)(nil)
