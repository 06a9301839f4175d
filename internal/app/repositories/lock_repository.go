package repositories

import (
	"context"
	"fmt"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/dberrors"
)

// LockRepository takes transaction scoped advisory locks on calendars
type LockRepository struct {
	db DBTX
}

// NewLockRepository creates a new lock repository
func NewLockRepository(db DBTX) *LockRepository {
	return &LockRepository{
		db: db,
	}
}

// LockScope blocks until the (scope, day) advisory lock is held. The lock is
// released by PostgreSQL at commit or rollback.
func (r *LockRepository) LockScope(ctx context.Context, scope models.Scope, day models.DayOfWeek) error {
	key := fmt.Sprintf("%s:%d:%d", scope.Type, scope.ID, day)
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	if err != nil {
		return dberrors.MapError(err, "locking "+key, nil)
	}
	return nil
}
