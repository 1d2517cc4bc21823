package account

import (
	"fmt"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/money"
)

var (
	// ErrAccountNotFound is returned when an account id has no record.
	ErrAccountNotFound = domain.NewError(domain.KindNotFound, "account_not_found", "account not found")
	// ErrBankAccountNotFound is returned when the caller's user has no account.
	ErrBankAccountNotFound = domain.NewError(domain.KindNotFound, "bank_account_not_found", "User does not have a bank account")
	// ErrEmailNotFound is returned when a transfer destination email has no account.
	ErrEmailNotFound = domain.NewError(domain.KindNotFound, "email_not_found", "email not found")
	// ErrAccountEmailNotFound is returned by the id-by-email lookup.
	ErrAccountEmailNotFound = domain.NewError(domain.KindNotFound, "account_email_not_found", "bank account email not found")
	// ErrAccountAlreadyExists is returned when a user already owns an account.
	ErrAccountAlreadyExists = domain.NewError(domain.KindConflict, "account_already_exists", "User already has a bank account")
	// ErrInvalidCurrencyCode is returned when the currency code is not ISO 4217.
	ErrInvalidCurrencyCode = domain.NewError(domain.KindInvalidInput, "invalid_currency_code", "Example: BRL, USD, CAD, AUD")
	// ErrCreationInProgress is returned when another request holds the user's creation lock.
	ErrCreationInProgress = domain.NewError(domain.KindConflict, "account_creation_in_progress", "Account creation already in progress")
	// ErrAmountMustBePositive is returned by deposits and withdrawals of zero or less.
	ErrAmountMustBePositive = domain.NewError(domain.KindInvalidInput, "amount_must_be_positive", "value must be greater than zero")
	// ErrTransferNotAllowed covers rejected transfers: non-positive value or own account.
	ErrTransferNotAllowed = domain.NewError(domain.KindPreconditionFailed, "transfer_not_allowed", "transfer not allowed")
	// ErrInsufficientFunds is returned when a debit would leave a negative balance.
	ErrInsufficientFunds = domain.NewError(domain.KindPreconditionFailed, "insufficient_funds", "insufficient funds")
	// ErrCurrencyMismatch is returned when a delta is not in the account currency.
	ErrCurrencyMismatch = domain.NewError(domain.KindInvalidInput, "currency_mismatch", "currency mismatch")
)

// Messages used for ErrTransferNotAllowed.
const (
	MsgValueNotPositive   = "value must be greater than zero"
	MsgOwnAccountTransfer = "cannot transfer to own account"
	opTransfer            = "transfer"
	opWithdrawal          = "withdrawal"
)

// InsufficientFundsError carries the balance and the attempted amount.
// It matches ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	Current   money.Money
	Attempted money.Money
	Operation string
}

func (e *InsufficientFundsError) Error() string {
	op := e.Operation
	if op == "" {
		op = opWithdrawal
	}
	return fmt.Sprintf(
		"Insufficient funds. Current balance is %s, attempted %s: %s",
		e.Current.Amount().String(), op, e.Attempted.Amount().String(),
	)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// NewInsufficientFundsForTransfer builds the error raised by the transfer funds check.
func NewInsufficientFundsForTransfer(current, attempted money.Money) *InsufficientFundsError {
	return &InsufficientFundsError{Current: current, Attempted: attempted, Operation: opTransfer}
}
