// Package ledger is the Balance Mutation Engine: the single path through
// which any account balance changes.
package ledger

import (
	"context"
	"log/slog"

	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/amirasaad/bank/pkg/repository"
)

// Engine applies credits and debits and persists the result through the
// repository of the current unit of work.
type Engine struct {
	logger *slog.Logger
}

// New creates an Engine.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// ApplyDelta credits or debits delta on acc and saves it with repo.
// On any failure acc is left exactly as it was.
func (e *Engine) ApplyDelta(
	ctx context.Context,
	repo repository.AccountRepository,
	acc *account.Account,
	delta money.Money,
	dir account.Direction,
) (*account.Account, error) {
	logger := e.logger.With(
		"account_id", acc.ID,
		"direction", dir.String(),
		"delta", delta.String(),
	)
	before := *acc
	if err := acc.ApplyDelta(delta, dir); err != nil {
		logger.Warn("Balance mutation rejected", "error", err)
		return nil, err
	}
	saved, err := repo.Save(ctx, acc)
	if err != nil {
		*acc = before
		logger.Error("Balance mutation not persisted", "error", err)
		return nil, err
	}
	logger.Debug("Balance mutated", "balance", acc.Balance.String())
	return saved, nil
}
