// Package lock declares a keyed mutual-exclusion contract. It guards account
// creation so that concurrent requests for one user cannot race past the
// existence check.
package lock

import (
	"context"
	"errors"
)

// ErrNotObtained is returned when the lock is held elsewhere after all retries.
var ErrNotObtained = errors.New("lock not obtained")

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker obtains exclusive locks by key.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// AccountCreationKey is the lock key for opening an account for userID.
func AccountCreationKey(userID string) string {
	return "lock:account:create:" + userID
}
