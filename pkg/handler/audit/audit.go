// Package audit consumes committed domain events and writes an audit trail.
// Handlers are keyed by event identity so redelivery from durable buses is
// recorded once.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/eventbus"
	"github.com/amirasaad/bank/pkg/handler/common"
)

// Entry is one audit line.
type Entry struct {
	Key        string
	EventType  string
	AccountID  string
	Summary    map[string]string
	OccurredAt time.Time
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// LogRecorder writes entries to a structured logger.
type LogRecorder struct {
	Logger *slog.Logger
}

// Record logs the entry at info level.
func (r LogRecorder) Record(_ context.Context, e Entry) error {
	args := []any{
		"key", e.Key,
		"event_type", e.EventType,
		"account_id", e.AccountID,
		"occurred_at", e.OccurredAt,
	}
	for k, v := range e.Summary {
		args = append(args, k, v)
	}
	r.Logger.Info("Audit", args...)
	return nil
}

// Register subscribes the audit handlers for every account event on bus.
func Register(bus eventbus.Bus, rec Recorder, tracker *common.IdempotencyTracker, logger *slog.Logger) {
	handle := func(ctx context.Context, e domain.Event) error {
		entry, ok := toEntry(e)
		if !ok {
			logger.Warn("Audit skipped unknown event", "event_type", e.Type())
			return nil
		}
		return rec.Record(ctx, entry)
	}
	for _, t := range []string{
		account.EventAccountCreated,
		account.EventBalanceChanged,
		account.EventTransferCompleted,
	} {
		bus.Register(t, common.WithIdempotency(handle, tracker, EventKey, "audit", logger))
	}
}

// EventKey identifies an event occurrence.
func EventKey(e domain.Event) string {
	entry, ok := toEntry(e)
	if !ok {
		return ""
	}
	return entry.Key
}

func toEntry(e domain.Event) (Entry, bool) {
	switch ev := e.(type) {
	case account.CreatedEvent:
		return createdEntry(&ev), true
	case *account.CreatedEvent:
		return createdEntry(ev), true
	case account.BalanceChangedEvent:
		return balanceEntry(&ev), true
	case *account.BalanceChangedEvent:
		return balanceEntry(ev), true
	case account.TransferCompletedEvent:
		return transferEntry(&ev), true
	case *account.TransferCompletedEvent:
		return transferEntry(ev), true
	}
	return Entry{}, false
}

func createdEntry(ev *account.CreatedEvent) Entry {
	return Entry{
		Key:        account.EventAccountCreated + ":" + ev.AccountID.String(),
		EventType:  ev.Type(),
		AccountID:  ev.AccountID.String(),
		Summary:    map[string]string{"user_id": ev.UserID.String(), "currency": ev.Currency.String()},
		OccurredAt: ev.OccurredAt,
	}
}

func balanceEntry(ev *account.BalanceChangedEvent) Entry {
	return Entry{
		Key:       account.EventBalanceChanged + ":" + ev.ID.String(),
		EventType: ev.Type(),
		AccountID: ev.AccountID.String(),
		Summary: map[string]string{
			"direction": ev.Direction,
			"amount":    ev.Amount.String(),
			"balance":   ev.Balance.String(),
			"currency":  ev.Currency.String(),
		},
		OccurredAt: ev.OccurredAt,
	}
}

func transferEntry(ev *account.TransferCompletedEvent) Entry {
	summary := map[string]string{
		"receiver_id":       ev.ReceiverID.String(),
		"transfer_value":    ev.TransferValue.String(),
		"sender_currency":   ev.SenderCurrency.String(),
		"receiver_currency": ev.ReceiverCurrency.String(),
	}
	if ev.ConvertedAmount != nil {
		summary["converted_amount"] = ev.ConvertedAmount.String()
	}
	return Entry{
		Key:        account.EventTransferCompleted + ":" + ev.TransferID.String(),
		EventType:  ev.Type(),
		AccountID:  ev.SenderID.String(),
		Summary:    summary,
		OccurredAt: ev.OccurredAt,
	}
}
