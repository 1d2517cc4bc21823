package account

import (
	"time"

	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type keys.
const (
	EventAccountCreated    = "account.created"
	EventBalanceChanged    = "account.balance_changed"
	EventTransferCompleted = "transfer.completed"
)

// CreatedEvent is published after an account is opened.
type CreatedEvent struct {
	AccountID  uuid.UUID     `json:"account_id"`
	UserID     uuid.UUID     `json:"user_id"`
	Currency   currency.Code `json:"currency"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func (CreatedEvent) Type() string { return EventAccountCreated }

// BalanceChangedEvent is published after a deposit or withdrawal commits.
type BalanceChangedEvent struct {
	ID         uuid.UUID       `json:"id"`
	AccountID  uuid.UUID       `json:"account_id"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   currency.Code   `json:"currency"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (BalanceChangedEvent) Type() string { return EventBalanceChanged }

// TransferCompletedEvent is published after a transfer commits.
type TransferCompletedEvent struct {
	TransferID       uuid.UUID        `json:"transfer_id"`
	SenderID         uuid.UUID        `json:"sender_id"`
	ReceiverID       uuid.UUID        `json:"receiver_id"`
	SenderCurrency   currency.Code    `json:"sender_currency"`
	ReceiverCurrency currency.Code    `json:"receiver_currency"`
	TransferValue    decimal.Decimal  `json:"transfer_value"`
	ConvertedAmount  *decimal.Decimal `json:"converted_amount,omitempty"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

func (TransferCompletedEvent) Type() string { return EventTransferCompleted }

// EventFactories returns constructors for every account event, keyed by type.
func EventFactories() map[string]func() domain.Event {
	return map[string]func() domain.Event{
		EventAccountCreated:    func() domain.Event { return &CreatedEvent{} },
		EventBalanceChanged:    func() domain.Event { return &BalanceChangedEvent{} },
		EventTransferCompleted: func() domain.Event { return &TransferCompletedEvent{} },
	}
}

// NewTransferCompletedEvent builds the event from a persisted record.
func NewTransferCompletedEvent(r *TransferRecord) TransferCompletedEvent {
	return TransferCompletedEvent{
		TransferID:       r.ID,
		SenderID:         r.SenderID,
		ReceiverID:       r.ReceiverID,
		SenderCurrency:   r.SenderCurrency,
		ReceiverCurrency: r.ReceiverCurrency,
		TransferValue:    r.TransferValue,
		ConvertedAmount:  r.ConvertedAmount,
		OccurredAt:       r.CreatedAt,
	}
}
