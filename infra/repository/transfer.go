package repository

import (
	"context"

	"github.com/amirasaad/bank/pkg/domain/account"
	"github.com/amirasaad/bank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates the transfer ledger store.
func NewTransferRepository(db *gorm.DB) repository.TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Append(ctx context.Context, rec *account.TransferRecord) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(toTransferModel(rec)).Error
	})
}

func (r *transferRepository) ListByAccount(
	ctx context.Context,
	accountID uuid.UUID,
	limit, offset int,
) ([]*account.TransferRecord, error) {
	var ms []Transfer
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	out := make([]*account.TransferRecord, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].toDomain())
	}
	return out, nil
}
