package repository

import (
	"context"
	"sort"

	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account store over db, which may be a transaction.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) first(ctx context.Context, query string, args ...any) (*account.Account, error) {
	var m Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Where(query, args...).First(&m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail matches case-insensitively.
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *accountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *accountRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Account{}).Where("user_id = ?", userID).Count(&n).Error
	})
	return n > 0, err
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(toAccountModel(a)).Error
	})
}

func (r *accountRepository) Save(ctx context.Context, a *account.Account) (*account.Account, error) {
	m := toAccountModel(a)
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Save(m).Error
	}); err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

// LockForUpdate issues one SELECT ... FOR UPDATE per id in ascending uuid
// order, so concurrent transfers between the same pair never deadlock.
func (r *accountRepository) LockForUpdate(
	ctx context.Context,
	ids ...uuid.UUID,
) (map[uuid.UUID]*account.Account, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	out := make(map[uuid.UUID]*account.Account, len(sorted))
	for _, id := range sorted {
		if _, done := out[id]; done {
			continue
		}
		var m Account
		if err := WrapError(func() error {
			return r.db.WithContext(ctx).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", id).
				First(&m).Error
		}); err != nil {
			return nil, err
		}
		out[id] = m.toDomain()
	}
	return out, nil
}

func (r *accountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	var ms []Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Order("created_at, id").Limit(limit).Offset(offset).Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*account.Account, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].toDomain())
	}
	return out, nil
}
