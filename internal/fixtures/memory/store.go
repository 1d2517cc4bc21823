// Package memory is an in-memory UnitOfWork used by service and handler tests.
// Transactions run one at a time against a copy of the committed state and
// are discarded when the callback fails.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/amirasaad/bank/pkg/repository"
	"github.com/google/uuid"
)

type state struct {
	accounts  map[uuid.UUID]account.Account
	users     map[uuid.UUID]user.User
	transfers []account.TransferRecord
}

func (s *state) clone() *state {
	c := &state{
		accounts:  make(map[uuid.UUID]account.Account, len(s.accounts)),
		users:     make(map[uuid.UUID]user.User, len(s.users)),
		transfers: append([]account.TransferRecord(nil), s.transfers...),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store holds committed state. Its zero value is not usable; call NewStore.
type Store struct {
	mu        sync.Mutex
	committed *state

	callsMu   sync.Mutex
	lockCalls [][]uuid.UUID
	reads     []string

	// SaveErr, when set, is returned by every AccountRepository.Save.
	SaveErr error
	// AppendErr, when set, is returned by every TransferRepository.Append.
	AppendErr error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{committed: &state{
		accounts: make(map[uuid.UUID]account.Account),
		users:    make(map[uuid.UUID]user.User),
	}}
}

// Do runs fn against a private copy of the state and commits it when fn succeeds.
func (s *Store) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	s.record("Do")
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &txn{store: s, state: s.committed.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.committed = tx.state
	return nil
}

// AccountRepository returns a repository that auto-commits each call.
func (s *Store) AccountRepository() (repository.AccountRepository, error) {
	return &autoCommitAccounts{store: s}, nil
}

// TransferRepository returns a repository that auto-commits each call.
func (s *Store) TransferRepository() (repository.TransferRepository, error) {
	return &autoCommitTransfers{store: s}, nil
}

// UserRepository returns a repository that auto-commits each call.
func (s *Store) UserRepository() (repository.UserRepository, error) {
	return &autoCommitUsers{store: s}, nil
}

// PutUser seeds a user.
func (s *Store) PutUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed.users[u.ID] = *u
}

// PutAccount seeds or replaces an account.
func (s *Store) PutAccount(a *account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed.accounts[a.ID] = *a
}

// Account returns a copy of the committed account.
func (s *Store) Account(id uuid.UUID) (*account.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.committed.accounts[id]
	if !ok {
		return nil, false
	}
	return &a, true
}

// Transfers returns the committed ledger.
func (s *Store) Transfers() []account.TransferRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]account.TransferRecord(nil), s.committed.transfers...)
}

// Accesses returns the units of work and account lookups seen, in call order.
func (s *Store) Accesses() []string {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()
	return append([]string(nil), s.reads...)
}

func (s *Store) record(op string) {
	s.callsMu.Lock()
	s.reads = append(s.reads, op)
	s.callsMu.Unlock()
}

// LockCalls returns the id lists passed to LockForUpdate, in call order.
func (s *Store) LockCalls() [][]uuid.UUID {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()
	return append([][]uuid.UUID(nil), s.lockCalls...)
}

type txn struct {
	store *Store
	state *state
}

func (t *txn) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(t)
}

func (t *txn) AccountRepository() (repository.AccountRepository, error) {
	return &accounts{store: t.store, state: t.state}, nil
}

func (t *txn) TransferRepository() (repository.TransferRepository, error) {
	return &transfers{store: t.store, state: t.state}, nil
}

func (t *txn) UserRepository() (repository.UserRepository, error) {
	return &users{state: t.state}, nil
}

type accounts struct {
	store *Store
	state *state
}

func (r *accounts) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	r.store.record("FindByID")
	a, ok := r.state.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *accounts) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	r.store.record("FindByEmail")
	for _, a := range r.state.accounts {
		if strings.EqualFold(a.Email, email) {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *accounts) FindByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	r.store.record("FindByUserID")
	for _, a := range r.state.accounts {
		if a.UserID == userID {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *accounts) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *accounts) Create(ctx context.Context, a *account.Account) error {
	for _, existing := range r.state.accounts {
		if existing.UserID == a.UserID || strings.EqualFold(existing.Email, a.Email) {
			return domain.ErrAlreadyExists
		}
	}
	r.state.accounts[a.ID] = *a
	return nil
}

func (r *accounts) Save(ctx context.Context, a *account.Account) (*account.Account, error) {
	if r.store.SaveErr != nil {
		return nil, r.store.SaveErr
	}
	r.state.accounts[a.ID] = *a
	saved := *a
	return &saved, nil
}

func (r *accounts) LockForUpdate(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*account.Account, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	r.store.callsMu.Lock()
	r.store.lockCalls = append(r.store.lockCalls, sorted)
	r.store.callsMu.Unlock()

	out := make(map[uuid.UUID]*account.Account, len(sorted))
	for _, id := range sorted {
		a, ok := r.state.accounts[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		out[id] = &a
	}
	return out, nil
}

func (r *accounts) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	all := make([]*account.Account, 0, len(r.state.accounts))
	for _, a := range r.state.accounts {
		found := a
		all = append(all, &found)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

type transfers struct {
	store *Store
	state *state
}

func (r *transfers) Append(ctx context.Context, rec *account.TransferRecord) error {
	if r.store.AppendErr != nil {
		return r.store.AppendErr
	}
	r.state.transfers = append(r.state.transfers, *rec)
	return nil
}

func (r *transfers) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*account.TransferRecord, error) {
	var out []*account.TransferRecord
	for i := len(r.state.transfers) - 1; i >= 0; i-- {
		rec := r.state.transfers[i]
		if rec.SenderID == accountID || rec.ReceiverID == accountID {
			out = append(out, &rec)
		}
	}
	return page(out, limit, offset), nil
}

type users struct {
	state *state
}

func (r *users) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.state.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *users) Create(ctx context.Context, u *user.User) error {
	if _, ok := r.state.users[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.state.users[u.ID] = *u
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var _ repository.UnitOfWork = (*Store)(nil)
