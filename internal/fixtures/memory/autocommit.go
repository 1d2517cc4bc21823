package memory

import (
	"context"

	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/amirasaad/bank/pkg/repository"
	"github.com/google/uuid"
)

// withTx runs fn in its own transaction.
func withTx[T any](s *Store, fn func(tx *txn) (T, error)) (T, error) {
	var out T
	err := s.Do(context.Background(), func(uow repository.UnitOfWork) error {
		var err error
		out, err = fn(uow.(*txn))
		return err
	})
	return out, err
}

type autoCommitAccounts struct{ store *Store }

func (r *autoCommitAccounts) repo(tx *txn) *accounts { return &accounts{store: r.store, state: tx.state} }

func (r *autoCommitAccounts) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return withTx(r.store, func(tx *txn) (*account.Account, error) { return r.repo(tx).FindByID(ctx, id) })
}

func (r *autoCommitAccounts) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return withTx(r.store, func(tx *txn) (*account.Account, error) { return r.repo(tx).FindByEmail(ctx, email) })
}

func (r *autoCommitAccounts) FindByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return withTx(r.store, func(tx *txn) (*account.Account, error) { return r.repo(tx).FindByUserID(ctx, userID) })
}

func (r *autoCommitAccounts) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	return withTx(r.store, func(tx *txn) (bool, error) { return r.repo(tx).ExistsByUserID(ctx, userID) })
}

func (r *autoCommitAccounts) Create(ctx context.Context, a *account.Account) error {
	_, err := withTx(r.store, func(tx *txn) (struct{}, error) { return struct{}{}, r.repo(tx).Create(ctx, a) })
	return err
}

func (r *autoCommitAccounts) Save(ctx context.Context, a *account.Account) (*account.Account, error) {
	return withTx(r.store, func(tx *txn) (*account.Account, error) { return r.repo(tx).Save(ctx, a) })
}

func (r *autoCommitAccounts) LockForUpdate(
	ctx context.Context,
	ids ...uuid.UUID,
) (map[uuid.UUID]*account.Account, error) {
	return withTx(r.store, func(tx *txn) (map[uuid.UUID]*account.Account, error) {
		return r.repo(tx).LockForUpdate(ctx, ids...)
	})
}

func (r *autoCommitAccounts) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	return withTx(r.store, func(tx *txn) ([]*account.Account, error) { return r.repo(tx).List(ctx, limit, offset) })
}

type autoCommitTransfers struct{ store *Store }

func (r *autoCommitTransfers) Append(ctx context.Context, rec *account.TransferRecord) error {
	_, err := withTx(r.store, func(tx *txn) (struct{}, error) {
		return struct{}{}, (&transfers{store: r.store, state: tx.state}).Append(ctx, rec)
	})
	return err
}

func (r *autoCommitTransfers) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*account.TransferRecord, error) {
	return withTx(r.store, func(tx *txn) ([]*account.TransferRecord, error) {
		return (&transfers{store: r.store, state: tx.state}).ListByAccount(ctx, accountID, limit, offset)
	})
}

type autoCommitUsers struct{ store *Store }

func (r *autoCommitUsers) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return withTx(r.store, func(tx *txn) (*user.User, error) { return (&users{state: tx.state}).FindByID(ctx, id) })
}

func (r *autoCommitUsers) Create(ctx context.Context, u *user.User) error {
	_, err := withTx(r.store, func(tx *txn) (struct{}, error) {
		return struct{}{}, (&users{state: tx.state}).Create(ctx, u)
	})
	return err
}
