//go:build integration

package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/bank/infra/eventbus"
	infralock "github.com/amirasaad/bank/infra/lock"
	infrarepo "github.com/amirasaad/bank/infra/repository"
	"github.com/amirasaad/bank/internal/migrations"
	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/amirasaad/bank/pkg/provider"
	pkgrepo "github.com/amirasaad/bank/pkg/repository"
	accountsvc "github.com/amirasaad/bank/pkg/service/account"
	currencysvc "github.com/amirasaad/bank/pkg/service/currency"
	transfersvc "github.com/amirasaad/bank/pkg/service/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type countingRates struct {
	mu    sync.Mutex
	calls []string
	rates map[string]string
}

func (r *countingRates) Name() string { return "counting" }

func (r *countingRates) Quote(_ context.Context, symbols string) (*provider.Quote, error) {
	r.mu.Lock()
	r.calls = append(r.calls, symbols)
	r.mu.Unlock()
	price, ok := r.rates[symbols]
	if !ok {
		return nil, provider.ErrCurrencyNotFound
	}
	return &provider.Quote{Symbols: symbols, Price: decimal.RequireFromString(price), Timestamp: time.Now().UTC()}, nil
}

type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	uow       *infrarepo.UoW
	rates     *countingRates
	accounts  *accountsvc.Service
	transfers *transfersvc.Service
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	pg, err := tcpostgres.Run(
		s.ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("bank"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = pg

	dsn, err := pg.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(migrations.Up(sqlDB))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.rates = &countingRates{rates: map[string]string{"BRL_USD": "0.16"}}
	s.uow = infrarepo.NewUoW(s.db)
	deps := config.Deps{
		Uow:       s.uow,
		Converter: currencysvc.New(s.rates, log),
		Locker:    infralock.NewLocalLocker(),
		EventBus:  infraeventbus.NewWithMemory(log),
		Logger:    log,
	}
	s.accounts = accountsvc.NewService(deps)
	s.transfers = transfersvc.NewService(deps)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(s.ctx))
	}
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE transfers, accounts, users CASCADE").Error)
	s.rates.mu.Lock()
	s.rates.calls = nil
	s.rates.mu.Unlock()
}

func (s *PostgresSuite) openAccount(name, code string, balance string) *user.User {
	u := user.New(name, name+"@example.com", true)
	s.Require().NoError(s.uow.Do(s.ctx, func(uow pkgrepo.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return repo.Create(s.ctx, u)
	}))
	_, err := s.accounts.CreateAccount(s.ctx, u.ID, code)
	s.Require().NoError(err)
	if b := decimal.RequireFromString(balance); b.IsPositive() {
		_, err = s.accounts.Deposit(s.ctx, u.ID, b)
		s.Require().NoError(err)
	}
	return u
}

func (s *PostgresSuite) balanceOf(userID uuid.UUID) string {
	acc, err := s.accounts.GetByUser(s.ctx, userID)
	s.Require().NoError(err)
	return acc.Balance.StringFixed(2)
}

func (s *PostgresSuite) TestSameCurrencyTransfer() {
	sender := s.openAccount("sender", "BRL", "10")
	receiver := s.openAccount("receiver", "BRL", "0")

	_, err := s.transfers.Transfer(s.ctx, sender.ID, receiver.Email, decimal.NewFromInt(10))
	s.Require().NoError(err)

	s.Equal("0.00", s.balanceOf(sender.ID))
	s.Equal("10.00", s.balanceOf(receiver.ID))
	s.Empty(s.rates.calls)
}

func (s *PostgresSuite) TestCrossCurrencyTransfer() {
	sender := s.openAccount("sender", "BRL", "100")
	receiver := s.openAccount("receiver", "USD", "0")

	res, err := s.transfers.Transfer(s.ctx, sender.ID, receiver.Email, decimal.NewFromInt(50))
	s.Require().NoError(err)
	s.Require().NotNil(res.ConvertedAmount)
	s.Equal("8.00", res.ConvertedAmount.StringFixed(2))

	s.Equal("50.00", s.balanceOf(sender.ID))
	s.Equal("8.00", s.balanceOf(receiver.ID))
	s.Equal([]string{"BRL_USD"}, s.rates.calls)

	senderAcc, err := s.accounts.GetByUser(s.ctx, sender.ID)
	s.Require().NoError(err)
	records, err := s.transfers.History(s.ctx, sender.ID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(senderAcc.ID, records[0].SenderID)
}

func (s *PostgresSuite) TestNonPositiveTransferRejected() {
	sender := s.openAccount("sender", "BRL", "10")
	for _, v := range []string{"0", "-1", "-10.5"} {
		_, err := s.transfers.Transfer(s.ctx, sender.ID, "nobody@example.com", decimal.RequireFromString(v))
		s.ErrorIs(err, account.ErrTransferNotAllowed, v)
	}
	s.Equal("10.00", s.balanceOf(sender.ID))
}

func (s *PostgresSuite) TestOverdraftRejected() {
	u := s.openAccount("saver", "USD", "100")

	_, err := s.accounts.Withdraw(s.ctx, u.ID, decimal.NewFromInt(150))
	var insufficient *account.InsufficientFundsError
	s.Require().True(errors.As(err, &insufficient))
	s.Equal("100.00", insufficient.Current.Amount().StringFixed(2))
	s.Equal("150.00", insufficient.Attempted.Amount().StringFixed(2))
	s.Equal("100.00", s.balanceOf(u.ID))
}

func (s *PostgresSuite) TestConcurrentOpposingTransfers() {
	a := s.openAccount("alice", "BRL", "100")
	b := s.openAccount("bob", "BRL", "100")

	var wg sync.WaitGroup
	var failed atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := s.transfers.Transfer(s.ctx, a.ID, b.Email, decimal.NewFromInt(1)); err != nil {
				failed.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.transfers.Transfer(s.ctx, b.ID, a.Email, decimal.NewFromInt(1)); err != nil {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Zero(failed.Load())
	s.Equal("100.00", s.balanceOf(a.ID))
	s.Equal("100.00", s.balanceOf(b.ID))
}
