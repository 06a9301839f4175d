package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unisphere/academics/internal/db"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so a repository can run
// either on the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances bound to one DBTX.
// It satisfies Store through the embedded repositories.
type Repositories struct {
	*CourseRepository
	*SectionRepository
	*SlotRepository
	*EnrollmentRepository
	*CriterionRepository
	*DirectoryRepository
	*LockRepository
}

// NewRepositories initializes all repositories on q
func NewRepositories(q DBTX) *Repositories {
	return &Repositories{
		CourseRepository:     NewCourseRepository(q),
		SectionRepository:    NewSectionRepository(q),
		SlotRepository:       NewSlotRepository(q),
		EnrollmentRepository: NewEnrollmentRepository(q),
		CriterionRepository:  NewCriterionRepository(q),
		DirectoryRepository:  NewDirectoryRepository(q),
		LockRepository:       NewLockRepository(q),
	}
}

var _ Store = (*Repositories)(nil)

// PgTxManager runs units of work as PostgreSQL transactions.
type PgTxManager struct {
	db *db.PostgresDB
}

// NewPgTxManager creates a transaction manager over database
func NewPgTxManager(database *db.PostgresDB) *PgTxManager {
	return &PgTxManager{db: database}
}

// WithinTx implements TxManager.
func (m *PgTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	return m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// NewAuditRepository returns an AuditReader reading straight from the pool.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: pool}
}
