// Package account provides the account operations exposed to callers:
// opening an account, deposits, withdrawals and lookups. Every balance change
// goes through the ledger engine inside a unit of work, and domain events are
// published only after that unit of work commits.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/amirasaad/bank/pkg/eventbus"
	"github.com/amirasaad/bank/pkg/lock"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/amirasaad/bank/pkg/repository"
	"github.com/amirasaad/bank/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides account creation, deposits, withdrawals and lookups.
type Service struct {
	uow      repository.UnitOfWork
	engine   *ledger.Engine
	locker   lock.Locker
	eventBus eventbus.Bus
	logger   *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	return &Service{
		uow:      deps.Uow,
		engine:   ledger.New(deps.Logger),
		locker:   deps.Locker,
		eventBus: deps.EventBus,
		logger:   deps.Logger,
	}
}

// CreateAccount opens the single account of userID in currencyCode.
//
// Checks run in this order: the user exists, the user has no account yet,
// the user is confirmed, the currency code is valid ISO 4217.
func (s *Service) CreateAccount(
	ctx context.Context,
	userID uuid.UUID,
	currencyCode string,
) (acc *account.Account, err error) {
	logger := s.logger.With("user_id", userID, "currency", currencyCode)
	logger.Info("CreateAccount started")

	if s.locker != nil {
		unlock, lerr := s.locker.Lock(ctx, lock.AccountCreationKey(userID.String()))
		if lerr != nil {
			logger.Warn("CreateAccount failed: creation lock not obtained", "error", lerr)
			if errors.Is(lerr, lock.ErrNotObtained) {
				return nil, account.ErrCreationInProgress
			}
			return nil, fmt.Errorf("account creation lock: %w", lerr)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				logger.Warn("CreateAccount: releasing creation lock failed", "error", uerr)
			}
		}()
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		userRepo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}

		u, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Wrapf(user.ErrUserNotFound, "User ID: %s not found", userID)
			}
			return err
		}
		exists, err := repo.ExistsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if exists {
			return account.ErrAccountAlreadyExists
		}
		if !u.Confirmed {
			return user.ErrUserUnconfirmed
		}
		code, err := currency.Parse(currencyCode)
		if err != nil {
			return account.ErrInvalidCurrencyCode
		}

		acc = account.New(userID, u.Email, u.Username, code)
		if err := repo.Create(ctx, acc); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return account.ErrAccountAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		logger.Error("CreateAccount failed", "error", err)
		return nil, err
	}

	logger.Info("CreateAccount successful", "account_id", acc.ID)
	eventbus.EmitAll(ctx, s.eventBus, logger, account.CreatedEvent{
		AccountID:  acc.ID,
		UserID:     acc.UserID,
		Currency:   acc.Currency,
		OccurredAt: acc.CreatedAt,
	})
	return acc, nil
}

// Deposit credits amount, in the account currency, to the caller's account.
func (s *Service) Deposit(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
) (*account.Account, error) {
	return s.mutate(ctx, "Deposit", userID, amount, account.Credit)
}

// Withdraw debits amount from the caller's account. A withdrawal larger than
// the balance fails with *account.InsufficientFundsError.
func (s *Service) Withdraw(
	ctx context.Context,
	userID uuid.UUID,
	amount decimal.Decimal,
) (*account.Account, error) {
	return s.mutate(ctx, "Withdraw", userID, amount, account.Debit)
}

func (s *Service) mutate(
	ctx context.Context,
	op string,
	userID uuid.UUID,
	amount decimal.Decimal,
	dir account.Direction,
) (acc *account.Account, err error) {
	logger := s.logger.With("user_id", userID, "amount", amount.String())
	logger.Info(op + " started")

	if !amount.IsPositive() {
		logger.Warn(op + " failed: non-positive amount")
		return nil, account.ErrAmountMustBePositive
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		found, err := findByUser(ctx, repo, userID)
		if err != nil {
			return err
		}
		locked, err := repo.LockForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		current, ok := locked[found.ID]
		if !ok {
			return account.ErrBankAccountNotFound
		}
		acc, err = s.engine.ApplyDelta(ctx, repo, current, money.New(amount, current.Currency), dir)
		return err
	})
	if err != nil {
		logger.Error(op+" failed", "error", err)
		return nil, err
	}

	logger.Info(op+" successful", "account_id", acc.ID, "balance", acc.Balance.String())
	eventbus.EmitAll(ctx, s.eventBus, logger, account.BalanceChangedEvent{
		ID:         uuid.New(),
		AccountID:  acc.ID,
		Direction:  dir.String(),
		Amount:     amount,
		Balance:    acc.Balance,
		Currency:   acc.Currency,
		OccurredAt: time.Now().UTC(),
	})
	return acc, nil
}

// GetByUser returns the caller's account, including its current balance.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return findByUser(ctx, repo, userID)
}

// FindAccountIDByEmail resolves the account id registered under email.
func (s *Service) FindAccountIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return uuid.Nil, err
	}
	acc, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, domain.Wrapf(
				account.ErrAccountEmailNotFound,
				"The bank account email: '%s' was not found", email,
			)
		}
		return uuid.Nil, err
	}
	return acc.ID, nil
}

// List returns a page of accounts ordered by creation time.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx, limit, offset)
}

func findByUser(
	ctx context.Context,
	repo repository.AccountRepository,
	userID uuid.UUID,
) (*account.Account, error) {
	acc, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, account.ErrBankAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}
