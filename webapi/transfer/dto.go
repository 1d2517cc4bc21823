package transfer

import (
	"time"

	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest represents the request body for a transfer. Value is in
// the sender's currency.
type TransferRequest struct {
	ReceiverAccountEmail string          `json:"receiver_account_email" validate:"required,email" example:"johndoe@gmail.com"`
	Value                decimal.Decimal `json:"value" swaggertype:"number" example:"25.00"`
}

// TransferRecordResponse is the API representation of a ledger entry.
type TransferRecordResponse struct {
	ID               uuid.UUID        `json:"id"`
	SenderEmail      string           `json:"sender_email"`
	SenderName       string           `json:"sender_name"`
	SenderCurrency   string           `json:"sender_currency"`
	ReceiverEmail    string           `json:"receiver_email"`
	ReceiverName     string           `json:"receiver_name"`
	ReceiverCurrency string           `json:"receiver_currency"`
	TransferValue    decimal.Decimal  `json:"transfer_value" swaggertype:"number"`
	ConvertedAmount  *decimal.Decimal `json:"converted_amount,omitempty" swaggertype:"number"`
	ExchangeRate     *decimal.Decimal `json:"exchange_rate,omitempty" swaggertype:"number"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ToRecordResponses maps history records.
func ToRecordResponses(records []*account.TransferRecord) []*TransferRecordResponse {
	out := make([]*TransferRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, &TransferRecordResponse{
			ID:               r.ID,
			SenderEmail:      r.SenderEmail,
			SenderName:       r.SenderName,
			SenderCurrency:   string(r.SenderCurrency),
			ReceiverEmail:    r.ReceiverEmail,
			ReceiverName:     r.ReceiverName,
			ReceiverCurrency: string(r.ReceiverCurrency),
			TransferValue:    r.TransferValue,
			ConvertedAmount:  r.ConvertedAmount,
			ExchangeRate:     r.ExchangeRate,
			CreatedAt:        r.CreatedAt,
		})
	}
	return out
}
