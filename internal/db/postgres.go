package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/unisphere/academics/internal/config"
	"github.com/unisphere/academics/internal/pkg/dberrors"
	"github.com/unisphere/academics/internal/pkg/logger"
)

// PostgresDB database connection structure
type PostgresDB struct {
	Pool *pgxpool.Pool

	isoLevel  pgx.TxIsoLevel
	txTimeout time.Duration
}

// NewPostgresDB creates a new PostgreSQL connection pool
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)

	maxLifetime, err := time.ParseDuration(cfg.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
	}
	poolConfig.MaxConnLifetime = maxLifetime

	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Unhealthy connection detected")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return NewPostgresDBFromPool(pool, cfg.TxIsoLevel(), cfg.TxTimeoutDuration()), nil
}

// NewPostgresDBFromPool wraps an existing pool. A zero txTimeout leaves
// transactions bounded only by the caller's context.
func NewPostgresDBFromPool(pool *pgxpool.Pool, isoLevel pgx.TxIsoLevel, txTimeout time.Duration) *PostgresDB {
	return &PostgresDB{
		Pool:      pool,
		isoLevel:  isoLevel,
		txTimeout: txTimeout,
	}
}

// Close closing method
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// StdDB returns a database/sql handle sharing the pool, for tools such as the
// migrator that need one. Closing it does not close the pool.
func (db *PostgresDB) StdDB() *sql.DB {
	return stdlib.OpenDBFromPool(db.Pool)
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx pgx.Tx) error

// WithTransaction runs fn in a transaction at the configured isolation level.
// Lock contention aborts surface as apperrors.ErrConcurrentUpdate.
func (db *PostgresDB) WithTransaction(ctx context.Context, fn TransactionFn) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && db.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.txTimeout)
		defer cancel()
	}

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: db.isoLevel})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback on panic
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		rbErr := tx.Rollback(ctx)
		if rbErr != nil {
			logger.FromContext(ctx).Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return rollbackError(translateAbort(err), rbErr)
	}

	if err := tx.Commit(ctx); err != nil {
		return translateAbort(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// rollbackError keeps err matchable with errors.Is even when the rollback
// itself failed.
func rollbackError(err, rbErr error) error {
	if rbErr == nil || errors.Is(rbErr, pgx.ErrTxClosed) {
		return err
	}
	return errors.Join(err, fmt.Errorf("rollback error: %w", rbErr))
}

// translateAbort maps serialization failures and deadlocks that escaped the
// repositories, typically raised at commit.
func translateAbort(err error) error {
	if dberrors.IsCode(err, dberrors.SerializationFailure) || dberrors.IsCode(err, dberrors.DeadlockDetected) {
		return dberrors.MapError(err, "transaction", nil)
	}
	return err
}
