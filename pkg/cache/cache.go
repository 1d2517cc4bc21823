// Package cache declares the caches used by the bank: upstream quotes and
// replayable responses for idempotent requests.
package cache

import (
	"context"
	"time"

	"github.com/amirasaad/bank/pkg/provider"
)

// QuoteCache stores upstream quotes by pair symbol. Get returns nil, nil on a miss.
type QuoteCache interface {
	Get(ctx context.Context, key string) (*provider.Quote, error)
	Set(ctx context.Context, key string, q *provider.Quote, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// StoredResponse is a completed HTTP response kept for replay. A Pending
// entry marks a key claimed by a request that has not finished yet.
type StoredResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ResponseStore keeps responses of idempotent requests. Get returns nil, nil on a miss.
// SetNX stores r only when key is absent and reports whether it did; it is
// the claim that lets a single request run per key across instances.
type ResponseStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Set(ctx context.Context, key string, r *StoredResponse, ttl time.Duration) error
	SetNX(ctx context.Context, key string, r *StoredResponse, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
