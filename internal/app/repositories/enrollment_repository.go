package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
	"github.com/unisphere/academics/internal/pkg/dberrors"
)

// activeEnrollmentConstraint is the partial unique index allowing one
// ENROLLED row per (student, section).
const activeEnrollmentConstraint = "uq_enrollments_active_student_section"

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db DBTX
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
	}
}

const enrollmentColumns = `id, student_id, section_id, status, created_at, updated_at`

func scanEnrollment(row pgx.Row, e *models.Enrollment) error {
	return row.Scan(&e.ID, &e.StudentID, &e.SectionID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

func (r *EnrollmentRepository) list(ctx context.Context, query string, arg int64) ([]models.Enrollment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := scanEnrollment(rows, &e); err != nil {
			return nil, fmt.Errorf("error scanning enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollments: %w", err)
	}
	return enrollments, nil
}

// FindEnrollmentByID retrieves an enrollment by ID
func (r *EnrollmentRepository) FindEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`

	var enrollment models.Enrollment
	if err := scanEnrollment(r.db.QueryRow(ctx, query, id), &enrollment); err != nil {
		return nil, dberrors.MapError(err, "finding enrollment", apperrors.ErrEnrollmentNotFound)
	}
	return &enrollment, nil
}

// FindActiveEnrollment retrieves the ENROLLED row for a student and section, if any
func (r *EnrollmentRepository) FindActiveEnrollment(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1 AND section_id = $2 AND status = 'ENROLLED'`

	var enrollment models.Enrollment
	err := scanEnrollment(r.db.QueryRow(ctx, query, studentID, sectionID), &enrollment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberrors.MapError(err, "finding active enrollment", apperrors.ErrEnrollmentNotFound)
	}
	return &enrollment, nil
}

// FindActiveEnrollmentsByStudent lists a student's ENROLLED rows
func (r *EnrollmentRepository) FindActiveEnrollmentsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	return r.list(ctx, `SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE student_id = $1 AND status = 'ENROLLED'
		ORDER BY id`, studentID)
}

// FindActiveEnrollmentsBySection lists a section's ENROLLED rows
func (r *EnrollmentRepository) FindActiveEnrollmentsBySection(ctx context.Context, sectionID int64) ([]models.Enrollment, error) {
	return r.list(ctx, `SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE section_id = $1 AND status = 'ENROLLED'
		ORDER BY id`, sectionID)
}

// PersistEnrollment inserts the enrollment when it has no ID yet, otherwise updates its status
func (r *EnrollmentRepository) PersistEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	var err error
	if enrollment.ID == 0 {
		err = r.db.QueryRow(ctx, `
			INSERT INTO enrollments (student_id, section_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`,
			enrollment.StudentID, enrollment.SectionID, enrollment.Status,
		).Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt)
	} else {
		err = r.db.QueryRow(ctx, `
			UPDATE enrollments
			SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`,
			enrollment.ID, enrollment.Status,
		).Scan(&enrollment.UpdatedAt)
	}

	if dberrors.IsDuplicateConstraintError(err, activeEnrollmentConstraint) {
		return apperrors.New(apperrors.ErrDuplicateEnrollment,
			"student %d, section %d", enrollment.StudentID, enrollment.SectionID)
	}
	return dberrors.MapError(err, "persisting enrollment", apperrors.ErrEnrollmentNotFound)
}
