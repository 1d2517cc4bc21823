package common

import (
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/bank/pkg/cache"
	"github.com/gofiber/fiber/v2"
)

const (
	// HeaderIdempotencyKey carries the client supplied request key.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplayed marks a response served from the store.
	HeaderIdempotentReplayed = "Idempotent-Replayed"
	maxIdempotencyKeyLen     = 255
)

// claimTTL bounds how long a pending claim outlives a crashed request.
const claimTTL = time.Minute

// ScopeFunc returns the caller the key belongs to.
type ScopeFunc func(c *fiber.Ctx) (string, error)

// Idempotency replays the first completed response for a repeated
// Idempotency-Key from the same caller. Requests without the header pass
// through. Server errors are not stored so the client may retry them.
//
// A key is claimed in the store with SetNX before the handler runs, so only
// one request per key executes even across instances. When the store is
// unreachable the claim falls back to a process-local guard.
func Idempotency(
	store cache.ResponseStore,
	ttl time.Duration,
	scope ScopeFunc,
	logger *slog.Logger,
) fiber.Handler {
	var inflight sync.Map
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return ProblemDetailsJSON(c, "Invalid idempotency key", nil,
				"Idempotency-Key must be at most 255 characters", fiber.StatusBadRequest)
		}
		owner, err := scope(c)
		if err != nil {
			return ProblemDetailsJSON(c, "Unauthorized", err)
		}
		storeKey := owner + ":" + c.Method() + ":" + c.Path() + ":" + key
		log := logger.With("idempotency_key", key, "owner", owner)
		ctx := c.UserContext()

		stored, err := store.Get(ctx, storeKey)
		if err != nil {
			log.Warn("Idempotency lookup failed, processing request", "error", err)
		}
		if stored != nil {
			return replay(c, log, stored)
		}

		claimed, err := store.SetNX(ctx, storeKey, &cache.StoredResponse{Pending: true}, min(ttl, claimTTL))
		if err != nil {
			log.Warn("Idempotency claim failed, using local guard", "error", err)
		} else if !claimed {
			// Another request owns the key; it may have finished since the lookup.
			if stored, err = store.Get(ctx, storeKey); err == nil && stored != nil {
				return replay(c, log, stored)
			}
			return inProgress(c)
		}

		if _, busy := inflight.LoadOrStore(storeKey, struct{}{}); busy {
			return inProgress(c)
		}
		defer inflight.Delete(storeKey)

		release := func() {
			if claimed {
				if err := store.Delete(ctx, storeKey); err != nil {
					log.Warn("Failed to release idempotency claim", "error", err)
				}
			}
		}
		if err := c.Next(); err != nil {
			release()
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			release()
			return nil
		}
		resp := &cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Set(ctx, storeKey, resp, ttl); err != nil {
			log.Warn("Failed to store idempotent response", "error", err)
			release()
		}
		return nil
	}
}

func replay(c *fiber.Ctx, log *slog.Logger, stored *cache.StoredResponse) error {
	if stored.Pending {
		return inProgress(c)
	}
	log.Info("Replaying stored response", "status", stored.Status)
	c.Set(HeaderIdempotentReplayed, "true")
	if stored.ContentType != "" {
		c.Set(fiber.HeaderContentType, stored.ContentType)
	}
	return c.Status(stored.Status).Send(stored.Body)
}

func inProgress(c *fiber.Ctx) error {
	return ProblemDetailsJSON(c, "Request in progress", nil,
		"A request with this Idempotency-Key is still being processed", fiber.StatusConflict)
}
