package common

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// KeyExtractor extracts an idempotency key from an event
type KeyExtractor func(domain.Event) string

// IdempotencyTracker remembers which event keys were handled successfully.
// With a retention window, keys older than the window are forgotten and a
// late redelivery is handled again.
type IdempotencyTracker struct {
	processed sync.Map // key -> time.Time handled at
	inflight  singleflight.Group
	retention time.Duration
	now       func() time.Time
}

// TrackerOption configures an IdempotencyTracker.
type TrackerOption func(*IdempotencyTracker)

// WithRetention bounds how long a handled key is remembered. Zero keeps keys forever.
func WithRetention(d time.Duration) TrackerOption {
	return func(t *IdempotencyTracker) { t.retention = d }
}

func NewIdempotencyTracker(opts ...TrackerOption) *IdempotencyTracker {
	t := &IdempotencyTracker{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Seen reports whether key was handled successfully within the retention window.
func (t *IdempotencyTracker) Seen(key string) bool {
	v, ok := t.processed.Load(key)
	if !ok {
		return false
	}
	if t.retention > 0 && t.now().Sub(v.(time.Time)) > t.retention {
		t.processed.CompareAndDelete(key, v)
		return false
	}
	return true
}

func (t *IdempotencyTracker) markHandled(key string) {
	t.processed.Store(key, t.now())
}

// WithIdempotency wraps a handler so that redelivered events with a key that
// already succeeded are skipped. Concurrent deliveries of one key share a
// single attempt and observe its result.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *IdempotencyTracker,
	keyExtractor KeyExtractor,
	handlerName string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e domain.Event) error {
		key := keyExtractor(e)
		if key == "" {
			return handler(ctx, e)
		}

		log := logger.With(
			"handler", handlerName,
			"event_type", e.Type(),
			"idempotency_key", key,
		)

		if tracker.Seen(key) {
			log.Info("Event already processed, skipping")
			return nil
		}

		_, err, _ := tracker.inflight.Do(key, func() (any, error) {
			if tracker.Seen(key) {
				return nil, nil
			}
			if err := handler(ctx, e); err != nil {
				return nil, err
			}
			tracker.markHandled(key)
			return nil, nil
		})
		if err != nil {
			log.Warn("Event handler failed", "error", err)
			return err
		}
		return nil
	}
}
