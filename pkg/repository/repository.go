package repository

import (
	"context"

	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/google/uuid"
)

// AccountRepository is the Account Store. Every method returns fully
// materialised accounts; missing rows map to domain.ErrNotFound.
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error)
	// ExistsByUserID reports whether the user already owns an account.
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)
	// Create inserts a new account; a second account for the same user
	// returns domain.ErrAlreadyExists.
	Create(ctx context.Context, a *account.Account) error
	// Save upserts the account inside the current unit of work.
	Save(ctx context.Context, a *account.Account) (*account.Account, error)
	// LockForUpdate row-locks the given accounts in ascending id order and
	// returns their current state keyed by id.
	LockForUpdate(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*account.Account, error)
	List(ctx context.Context, limit, offset int) ([]*account.Account, error)
}

// TransferRepository is the append-only ledger of completed transfers.
type TransferRepository interface {
	Append(ctx context.Context, r *account.TransferRecord) error
	// ListByAccount returns records where the account is sender or receiver, newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*account.TransferRecord, error)
}

// UserRepository reads users owned by the auth service.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
}
