// Package transfer is the Transfer Orchestrator: it moves value between two
// accounts, converting across currencies when needed, as one unit of work.
//
// A transfer walks VALIDATING, RESOLVING_ACCOUNTS, then SAME_CURRENCY or
// CONVERTING, MUTATING, RECORDING and DONE. Any failure ends in ABORTED with
// the unit of work rolled back. Nothing is retried.
package transfer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/eventbus"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/amirasaad/bank/pkg/repository"
	"github.com/amirasaad/bank/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/amirasaad/bank/pkg/service/transfer")

// State is a step of the transfer protocol.
type State string

const (
	StateValidating        State = "VALIDATING"
	StateResolvingAccounts State = "RESOLVING_ACCOUNTS"
	StateSameCurrency      State = "SAME_CURRENCY"
	StateConverting        State = "CONVERTING"
	StateMutating          State = "MUTATING"
	StateRecording         State = "RECORDING"
	StateDone              State = "DONE"
	StateAborted           State = "ABORTED"
)

// Result describes a completed transfer from the sender's point of view.
type Result struct {
	SenderBalance    decimal.Decimal  `json:"sender_balance"`
	SenderCurrency   currency.Code    `json:"sender_currency"`
	TransferredValue decimal.Decimal  `json:"transferred_value"`
	ReceiverName     string           `json:"receiver_name"`
	ReceiverEmail    string           `json:"receiver_email"`
	ConvertedAmount  *decimal.Decimal `json:"converted_amount"`
	ReceiverCurrency currency.Code    `json:"receiver_currency"`
}

// Service orchestrates transfers and serves transfer history.
type Service struct {
	uow       repository.UnitOfWork
	converter provider.CurrencyConverter
	engine    *ledger.Engine
	eventBus  eventbus.Bus
	logger    *slog.Logger
}

// NewService creates a new transfer Service.
func NewService(deps config.Deps) *Service {
	return &Service{
		uow:       deps.Uow,
		converter: deps.Converter,
		engine:    ledger.New(deps.Logger),
		eventBus:  deps.EventBus,
		logger:    deps.Logger,
	}
}

type run struct {
	logger *slog.Logger
	span   trace.Span
}

func (r *run) enter(s State) {
	r.logger.Debug("Transfer state", "state", string(s))
	r.span.AddEvent(string(s))
}

// Transfer moves amount, in the sender's currency, from the caller's account
// to the account registered under receiverEmail.
func (s *Service) Transfer(
	ctx context.Context,
	callerUserID uuid.UUID,
	receiverEmail string,
	amount decimal.Decimal,
) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "transfer.Transfer")
	defer span.End()
	logger := s.logger.With(
		"user_id", callerUserID,
		"receiver_email", receiverEmail,
		"amount", amount.String(),
	)
	r := &run{logger: logger, span: span}
	logger.Info("Transfer started")
	defer func() {
		if err != nil {
			r.enter(StateAborted)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("Transfer failed", "error", err)
		}
	}()

	r.enter(StateValidating)
	if !amount.IsPositive() {
		return nil, domain.Wrapf(account.ErrTransferNotAllowed, account.MsgValueNotPositive)
	}

	var record *account.TransferRecord
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var txErr error
		res, record, txErr = s.execute(ctx, r, uow, callerUserID, receiverEmail, amount)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	r.enter(StateDone)
	span.SetAttributes(attribute.String("transfer.id", record.ID.String()))
	logger.Info("Transfer successful", "transfer_id", record.ID, "sender_balance", res.SenderBalance.String())
	eventbus.EmitAll(ctx, s.eventBus, logger, account.NewTransferCompletedEvent(record))
	return res, nil
}

func (s *Service) execute(
	ctx context.Context,
	r *run,
	uow repository.UnitOfWork,
	callerUserID uuid.UUID,
	receiverEmail string,
	amount decimal.Decimal,
) (*Result, *account.TransferRecord, error) {
	repo, err := uow.AccountRepository()
	if err != nil {
		return nil, nil, err
	}
	transfers, err := uow.TransferRepository()
	if err != nil {
		return nil, nil, err
	}

	r.enter(StateResolvingAccounts)
	sender, err := repo.FindByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, account.ErrBankAccountNotFound
		}
		return nil, nil, err
	}
	receiver, err := repo.FindByEmail(ctx, receiverEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.Wrapf(account.ErrEmailNotFound, "Email: %s was not found", receiverEmail)
		}
		return nil, nil, err
	}
	if sender.ID == receiver.ID || strings.EqualFold(sender.Email, receiver.Email) {
		return nil, nil, domain.Wrapf(account.ErrTransferNotAllowed, account.MsgOwnAccountTransfer)
	}

	locked, err := repo.LockForUpdate(ctx, sender.ID, receiver.ID)
	if err != nil {
		return nil, nil, err
	}
	sender, receiver = locked[sender.ID], locked[receiver.ID]
	if sender == nil || receiver == nil {
		return nil, nil, account.ErrAccountNotFound
	}

	value := money.New(amount, sender.Currency)
	if sender.Balance.LessThan(amount) {
		return nil, nil, account.NewInsufficientFundsForTransfer(sender.Money(), value)
	}

	credited := money.New(amount, receiver.Currency)
	var converted, rate *decimal.Decimal
	if sender.Currency == receiver.Currency {
		r.enter(StateSameCurrency)
	} else {
		r.enter(StateConverting)
		c, err := s.converter.Convert(ctx, value, receiver.Currency)
		if err != nil {
			return nil, nil, err
		}
		credited = c.Value
		amt, rt := c.Value.Amount(), c.Rate
		converted, rate = &amt, &rt
	}

	r.enter(StateMutating)
	if _, err := s.engine.ApplyDelta(ctx, repo, sender, value, account.Debit); err != nil {
		return nil, nil, err
	}
	if _, err := s.engine.ApplyDelta(ctx, repo, receiver, credited, account.Credit); err != nil {
		return nil, nil, err
	}

	r.enter(StateRecording)
	record := account.NewTransferRecord(sender, receiver, amount, converted, rate)
	if err := transfers.Append(ctx, record); err != nil {
		return nil, nil, err
	}

	return &Result{
		SenderBalance:    sender.Balance,
		SenderCurrency:   sender.Currency,
		TransferredValue: amount,
		ReceiverName:     receiver.Name,
		ReceiverEmail:    receiver.Email,
		ConvertedAmount:  converted,
		ReceiverCurrency: receiver.Currency,
	}, record, nil
}

// History lists transfers sent or received by the caller's account, newest first.
func (s *Service) History(
	ctx context.Context,
	callerUserID uuid.UUID,
	limit, offset int,
) ([]*account.TransferRecord, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	acc, err := accounts.FindByUserID(ctx, callerUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, account.ErrBankAccountNotFound
		}
		return nil, err
	}
	transfers, err := s.uow.TransferRepository()
	if err != nil {
		return nil, err
	}
	return transfers.ListByAccount(ctx, acc.ID, limit, offset)
}
