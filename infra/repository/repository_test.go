package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/domain/account"
	pkgrepo "github.com/amirasaad/bank/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

var accountColumns = []string{"id", "user_id", "email", "name", "balance", "currency", "created_at", "updated_at"}

func accountRow(rows *sqlmock.Rows, id, userID uuid.UUID, email, balance string, code currency.Code) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(id, userID, email, "Jane", balance, string(code), now, now)
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("Jane@Example.com", 1).
		WillReturnRows(accountRow(sqlmock.NewRows(accountColumns), id, userID, "jane@example.com", "25.50", currency.BRL))

	acc, err := repo.FindByEmail(context.Background(), "Jane@Example.com")
	require.NoError(t, err)
	assert.Equal(t, id, acc.ID)
	assert.Equal(t, userID, acc.UserID)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, currency.BRL, acc.Currency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE user_id = $1`)).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err := repo.FindByUserID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ExistsByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "accounts" WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.ExistsByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	acc := account.New(uuid.New(), "jane@example.com", "Jane", currency.USD)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "accounts"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(context.Background(), acc))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "accounts"`)).
		WillReturnError(gorm.ErrDuplicatedKey)
	err := repo.Create(context.Background(), acc)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	acc := account.New(uuid.New(), "jane@example.com", "Jane", currency.USD)
	acc.Balance = decimal.RequireFromString("42.10")

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := repo.Save(context.Background(), acc)
	require.NoError(t, err)
	assert.True(t, saved.Balance.Equal(acc.Balance))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_LockForUpdateInIDOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE id = $1`) + `.*FOR UPDATE`).
		WithArgs(a, 1).
		WillReturnRows(accountRow(sqlmock.NewRows(accountColumns), a, uuid.New(), "a@example.com", "10", currency.USD))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" WHERE id = $1`) + `.*FOR UPDATE`).
		WithArgs(b, 1).
		WillReturnRows(accountRow(sqlmock.NewRows(accountColumns), b, uuid.New(), "b@example.com", "20", currency.EUR))

	locked, err := repo.LockForUpdate(context.Background(), b, a)
	require.NoError(t, err)
	require.Len(t, locked, 2)
	assert.Equal(t, currency.EUR, locked[b].Currency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	rows := sqlmock.NewRows(accountColumns)
	accountRow(rows, uuid.New(), uuid.New(), "a@example.com", "1", currency.USD)
	accountRow(rows, uuid.New(), uuid.New(), "b@example.com", "2", currency.USD)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" ORDER BY created_at, id LIMIT $1`)).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTransferRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransferRepository(db)
	sender := account.New(uuid.New(), "s@example.com", "S", currency.BRL)
	receiver := account.New(uuid.New(), "r@example.com", "R", currency.USD)
	converted, rate := decimal.RequireFromString("8.00"), decimal.RequireFromString("0.16")
	rec := account.NewTransferRecord(sender, receiver, decimal.RequireFromString("50"), &converted, &rate)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "transfers"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Append(context.Background(), rec))

	cols := []string{
		"id", "sender_id", "sender_email", "sender_name", "sender_currency",
		"receiver_id", "receiver_email", "receiver_name", "receiver_currency",
		"transfer_value", "converted_amount", "exchange_rate", "created_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "transfers" WHERE sender_id = $1 OR receiver_id = $2 ORDER BY created_at DESC`)).
		WithArgs(sender.ID, sender.ID, 10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			rec.ID, sender.ID, "s@example.com", "S", "BRL",
			receiver.ID, "r@example.com", "R", "USD",
			"50", "8.00", "0.16", time.Now().UTC(),
		))

	list, err := repo.ListByAccount(context.Background(), sender.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ConvertedAmount)
	assert.True(t, list[0].ConvertedAmount.Equal(converted))
	assert.Equal(t, currency.USD, list[0].ReceiverCurrency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "confirmed", "created_at", "updated_at"}).
			AddRow(id, "jane", "jane@example.com", true, time.Now(), time.Now()))

	u, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, u.Confirmed)
	assert.Equal(t, "jane", u.Username)
}

func TestUoW_CommitAndRollback(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	acc := account.New(uuid.New(), "jane@example.com", "Jane", currency.USD)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "accounts"`)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(tx pkgrepo.UnitOfWork) error {
		repo, err := tx.AccountRepository()
		require.NoError(t, err)
		return repo.Create(context.Background(), acc)
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "accounts"`)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = uow.Do(context.Background(), func(tx pkgrepo.UnitOfWork) error {
		repo, err := tx.AccountRepository()
		require.NoError(t, err)
		if err := repo.Create(context.Background(), acc); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
