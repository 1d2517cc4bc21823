// Package eventbus defines the contract for publishing domain events after a
// unit of work commits and for consuming them.
package eventbus

import (
	"context"
	"log/slog"

	"github.com/amirasaad/bank/pkg/domain"
)

// HandlerFunc handles one event. A returned error is logged by the bus and,
// for durable buses, moves the message to the dead-letter destination.
type HandlerFunc func(ctx context.Context, e domain.Event) error

// Bus publishes and consumes domain events.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, e domain.Event) error
}

// Factories map an event type to a constructor used to decode payloads.
type Factories map[string]func() domain.Event

// EmitAll publishes events in order. Failures are logged and never returned:
// events go out after the unit of work committed, so the caller's result
// already stands.
func EmitAll(ctx context.Context, bus Bus, logger *slog.Logger, events ...domain.Event) {
	if bus == nil {
		return
	}
	for _, e := range events {
		if err := bus.Emit(ctx, e); err != nil {
			logger.Error("Event publish failed", "event_type", e.Type(), "error", err)
		}
	}
}
