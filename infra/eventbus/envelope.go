package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/eventbus"
)

// envelope is the wire form shared by the durable buses.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(event domain.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("event bus: marshal failed: %w", err)
	}
	env, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("event bus: envelope marshal failed: %w", err)
	}
	return env, nil
}

func decode(raw []byte, factories eventbus.Factories) (domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("event bus: envelope unmarshal failed: %w", err)
	}
	constructor, ok := factories[env.Type]
	if !ok {
		return nil, fmt.Errorf("event bus: unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("event bus: payload unmarshal failed: %w", err)
	}
	return evt, nil
}

// dispatch runs every handler, recovering panics. It reports whether all succeeded.
func dispatch(
	ctx context.Context,
	logger *slog.Logger,
	evt domain.Event,
	handlers []eventbus.HandlerFunc,
) bool {
	ok := true
	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic recovered", "event_type", evt.Type(), "panic", r)
					ok = false
				}
			}()
			if err := handler(ctx, evt); err != nil {
				logger.Error("handler error", "event_type", evt.Type(), "error", err)
				ok = false
			}
		}()
	}
	return ok
}
