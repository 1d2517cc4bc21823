package account

import (
	"time"

	"github.com/amirasaad/bank/pkg/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRecord is the append-only ledger entry written for every
// successful transfer. ConvertedAmount and ExchangeRate are nil for
// same-currency transfers.
type TransferRecord struct {
	ID               uuid.UUID
	SenderID         uuid.UUID
	SenderEmail      string
	SenderName       string
	SenderCurrency   currency.Code
	ReceiverID       uuid.UUID
	ReceiverEmail    string
	ReceiverName     string
	ReceiverCurrency currency.Code
	TransferValue    decimal.Decimal
	ConvertedAmount  *decimal.Decimal
	ExchangeRate     *decimal.Decimal
	CreatedAt        time.Time
}

// NewTransferRecord captures both legs of a completed transfer.
func NewTransferRecord(
	sender, receiver *Account,
	value decimal.Decimal,
	converted, rate *decimal.Decimal,
) *TransferRecord {
	return &TransferRecord{
		ID:               uuid.New(),
		SenderID:         sender.ID,
		SenderEmail:      sender.Email,
		SenderName:       sender.Name,
		SenderCurrency:   sender.Currency,
		ReceiverID:       receiver.ID,
		ReceiverEmail:    receiver.Email,
		ReceiverName:     receiver.Name,
		ReceiverCurrency: receiver.Currency,
		TransferValue:    value,
		ConvertedAmount:  converted,
		ExchangeRate:     rate,
		CreatedAt:        time.Now().UTC(),
	}
}

// CreditedAmount is what the receiver got, in the receiver currency.
func (r *TransferRecord) CreditedAmount() decimal.Decimal {
	if r.ConvertedAmount != nil {
		return *r.ConvertedAmount
	}
	return r.TransferValue
}
