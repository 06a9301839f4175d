package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/unisphere/academics/internal/pkg/apperrors"
)

func TestRollbackError(t *testing.T) {
	business := apperrors.New(apperrors.ErrNoCapacity, "section %d", 1)

	tests := []struct {
		name         string
		rbErr        error
		wantRollback bool
	}{
		{"rollback succeeded", nil, false},
		{"transaction already closed", pgx.ErrTxClosed, false},
		{"rollback failed", errors.New("conn closed"), true},
		{"rollback timed out", fmt.Errorf("rollback: %w", errors.New("context deadline exceeded")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rollbackError(business, tt.rbErr)
			assert.ErrorIs(t, err, apperrors.ErrNoCapacity)
			assert.Equal(t, "NO_CAPACITY", apperrors.Code(err))
			if tt.wantRollback {
				assert.ErrorIs(t, err, tt.rbErr)
				assert.Contains(t, err.Error(), "rollback error")
			} else {
				assert.Equal(t, business, err)
			}
		})
	}
}

func TestTranslateAbort(t *testing.T) {
	serialization := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"})
	assert.ErrorIs(t, translateAbort(serialization), apperrors.ErrConcurrentUpdate)

	deadlock := &pgconn.PgError{Code: "40P01"}
	assert.ErrorIs(t, translateAbort(deadlock), apperrors.ErrConcurrentUpdate)

	other := &pgconn.PgError{Code: "23514"}
	assert.Equal(t, error(other), translateAbort(other))
}
