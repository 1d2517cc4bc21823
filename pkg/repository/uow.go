package repository

import "context"

// UnitOfWork defines the contract for transactional work and repository access.
//
// Do runs fn inside one database transaction. Repositories obtained from the
// UnitOfWork passed to fn share that transaction; if fn returns an error the
// transaction is rolled back and none of its writes become visible.
//
// Example usage:
//
//	err := uow.Do(ctx, func(tx UnitOfWork) error {
//		repo, err := tx.AccountRepository()
//		if err != nil {
//			return err
//		}
//		...
//	})
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransferRepository() (TransferRepository, error)
	UserRepository() (UserRepository, error)
}
