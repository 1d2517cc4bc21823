// Package lock provides lock.Locker implementations: a Redis-backed
// distributed lock for multi-instance deployments and an in-process one.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/bank/pkg/lock"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisLocker is a redsync mutex per key.
type RedisLocker struct {
	rs         *redsync.Redsync
	expiry     time.Duration
	tries      int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewRedisLocker creates a locker over client. Locks expire after expiry if
// the holder dies; Lock retries tries times before giving up.
func NewRedisLocker(client *redis.Client, expiry time.Duration, tries int, logger *slog.Logger) *RedisLocker {
	if tries <= 0 {
		tries = 1
	}
	return &RedisLocker{
		rs:         redsync.New(goredis.NewPool(client)),
		expiry:     expiry,
		tries:      tries,
		retryDelay: 50 * time.Millisecond,
		logger:     logger.With("locker", "redis"),
	}
}

// Lock acquires key. Contention after all retries yields lock.ErrNotObtained.
func (l *RedisLocker) Lock(ctx context.Context, key string) (lock.Unlock, error) {
	mutex := l.rs.NewMutex(
		key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(l.tries),
		redsync.WithRetryDelay(l.retryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			l.logger.Debug("lock already held", "key", key)
			return nil, lock.ErrNotObtained
		}
		return nil, fmt.Errorf("distributed lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return fmt.Errorf("distributed lock: unlock: %w", err)
		}
		if !ok {
			l.logger.Warn("lock was not held or already expired", "key", key)
		}
		return nil
	}, nil
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken
	if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}

var _ lock.Locker = (*RedisLocker)(nil)
