package account

import (
	"time"

	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells ApplyDelta whether to add to or subtract from the balance.
type Direction int

const (
	Credit Direction = iota + 1
	Debit
)

func (d Direction) String() string {
	switch d {
	case Credit:
		return "CREDIT"
	case Debit:
		return "DEBIT"
	default:
		return "UNKNOWN"
	}
}

// Account is a user's single bank account.
//
// Invariants:
//   - Balance is never negative, before or after any mutation.
//   - Currency is fixed at creation.
//   - A user owns at most one account; Email is unique and is the transfer key.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Email     string
	Name      string
	Balance   decimal.Decimal
	Currency  currency.Code
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New opens an account with a zero balance.
func New(userID uuid.UUID, email, name string, code currency.Code) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:        uuid.New(),
		UserID:    userID,
		Email:     email,
		Name:      name,
		Balance:   decimal.Zero,
		Currency:  code,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Money returns the balance as a currency-tagged value.
func (a *Account) Money() money.Money {
	return money.New(a.Balance, a.Currency)
}

// ApplyDelta credits or debits delta. When the resulting balance would be
// negative it returns *InsufficientFundsError and leaves a untouched.
func (a *Account) ApplyDelta(delta money.Money, dir Direction) error {
	if delta.Currency() != a.Currency {
		return domain.Wrapf(ErrCurrencyMismatch, "account currency is %s, got %s", a.Currency, delta.Currency())
	}
	current := a.Money()
	var (
		next money.Money
		err  error
	)
	switch dir {
	case Credit:
		next, err = current.Add(delta)
	case Debit:
		next, err = current.Subtract(delta)
	default:
		return domain.Wrapf(domain.ErrValidation, "unknown direction %d", dir)
	}
	if err != nil {
		return err
	}
	if next.IsNegative() {
		return &InsufficientFundsError{Current: current, Attempted: delta, Operation: opWithdrawal}
	}
	a.Balance = next.Amount()
	a.UpdatedAt = time.Now().UTC()
	return nil
}
