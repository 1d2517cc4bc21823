package account

import (
	"time"

	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents the request body for opening an account.
// The code is checked by the service so the creation checks keep their order.
type CreateAccountRequest struct {
	CurrencyCode string `json:"currency_code" example:"BRL"`
}

// BalanceRequest represents the request body for deposits and withdrawals.
type BalanceRequest struct {
	Value decimal.Decimal `json:"value" swaggertype:"number" example:"100.50"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Email       string          `json:"email"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance" swaggertype:"number"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AccountIDResponse answers the id-by-email lookup.
type AccountIDResponse struct {
	AccountID uuid.UUID `json:"account_id"`
}

// ToAccountResponse maps a domain account to its response DTO.
func ToAccountResponse(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Email:       a.Email,
		AccountName: a.Name,
		Balance:     a.Balance,
		Currency:    string(a.Currency),
		CreatedAt:   a.CreatedAt,
	}
}

// ToAccountResponses maps a page of accounts.
func ToAccountResponses(accounts []*account.Account) []*AccountResponse {
	out := make([]*AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToAccountResponse(a))
	}
	return out
}
