package dberrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError

	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// PostgreSQL SQLSTATE codes the engine reacts to.
const (
	UniqueViolation      = "23505"
	ForeignKeyViolation  = "23503"
	CheckViolation       = "23514"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation && pgErr.ConstraintName == constraintName
}

// IsCode reports whether err is a PgError carrying the given SQLSTATE.
func IsCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// MapError translates driver errors into the apperrors taxonomy. notFound is
// returned for pgx.ErrNoRows; other unrecognised errors are wrapped with op.
func MapError(err error, op string, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case SerializationFailure, DeadlockDetected:
			return fmt.Errorf("%s: %w", op, apperrors.ErrConcurrentUpdate)
		case CheckViolation:
			return apperrors.New(apperrors.ErrValidationFailed, "%s violates %s", op, pgErr.ConstraintName)
		case ForeignKeyViolation:
			return apperrors.New(apperrors.ErrValidationFailed, "%s references a missing row (%s)", op, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("error %s: %w", op, err)
}
