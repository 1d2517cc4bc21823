package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process TTL cache of T values.
type MemoryCache[T any] struct {
	entries map[string]cacheEntry[T]
	mu      sync.RWMutex
	now     func() time.Time
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{entries: make(map[string]cacheEntry[T]), now: time.Now}
}

// Get returns a copy of the cached value, or nil when absent or expired.
func (c *MemoryCache[T]) Get(_ context.Context, key string) (*T, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	v := entry.value
	return &v, nil
}

// Set stores a copy of v for ttl.
func (c *MemoryCache[T]) Set(_ context.Context, key string, v *T, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[T]{value: *v, expiresAt: c.now().Add(ttl)}
	return nil
}

// SetNX stores a copy of v for ttl unless a live entry exists.
func (c *MemoryCache[T]) SetNX(_ context.Context, key string, v *T, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if entry, ok := c.entries[key]; ok && !now.After(entry.expiresAt) {
		return false, nil
	}
	c.entries[key] = cacheEntry[T]{value: *v, expiresAt: now.Add(ttl)}
	return true, nil
}

// Delete removes key.
func (c *MemoryCache[T]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
