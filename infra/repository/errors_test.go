package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/bank/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()
	other := errors.New("some other error")

	tests := []struct {
		name  string
		input error
		want  error
	}{
		{"nil", nil, nil},
		{"duplicate key", gorm.ErrDuplicatedKey, domain.ErrAlreadyExists},
		{"record not found", gorm.ErrRecordNotFound, domain.ErrNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), domain.ErrNotFound},
		{"joined duplicate", errors.Join(errors.New("outer"), gorm.ErrDuplicatedKey), domain.ErrAlreadyExists},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrAlreadyExists},
		{"other postgres error", &pgconn.PgError{Code: "40001"}, nil},
		{"unmapped", other, other},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapGormErrorToDomain(tt.input)
			switch {
			case tt.input == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Equal(t, tt.input, got)
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}
