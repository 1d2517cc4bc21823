package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/bank/pkg/cache"
	"github.com/amirasaad/bank/pkg/provider"
	"golang.org/x/sync/singleflight"
)

// CachedRateSource serves quotes from a cache and collapses concurrent misses
// for the same pair into one upstream call.
type CachedRateSource struct {
	next   provider.RateSource
	cache  cache.QuoteCache
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedRateSource creates a new CachedRateSource.
func NewCachedRateSource(
	next provider.RateSource,
	c cache.QuoteCache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedRateSource {
	return &CachedRateSource{next: next, cache: c, ttl: ttl, logger: logger}
}

// Name returns the wrapped source name.
func (c *CachedRateSource) Name() string { return c.next.Name() }

// Quote returns a cached quote or fetches and caches a fresh one.
func (c *CachedRateSource) Quote(ctx context.Context, symbols string) (*provider.Quote, error) {
	if q, err := c.cache.Get(ctx, symbols); err == nil && q != nil {
		c.logger.Debug("Cache hit for Quote", "symbols", symbols)
		return q, nil
	} else if err != nil {
		c.logger.Error("Error getting from cache", "symbols", symbols, "error", err)
	}

	// The shared fetch outlives any single caller's cancellation; the HTTP
	// client timeouts still bound it. Each caller stops waiting on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(symbols, func() (any, error) {
		q, err := c.next.Quote(shared, symbols)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(shared, symbols, q, c.ttl); err != nil {
			c.logger.Warn("Failed to cache quote", "symbols", symbols, "error", err)
		}
		return q, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		c.logger.Debug("Cache miss for Quote", "symbols", symbols, "shared", res.Shared)
		return res.Val.(*provider.Quote), nil
	}
}

var _ provider.RateSource = (*CachedRateSource)(nil)
