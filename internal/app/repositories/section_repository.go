package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
	"github.com/unisphere/academics/internal/pkg/dberrors"
)

// SectionRepository handles database operations for offered sections
type SectionRepository struct {
	db DBTX
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db DBTX) *SectionRepository {
	return &SectionRepository{
		db: db,
	}
}

const sectionColumns = `id, course_id, year, term, professor_id, capacity, seats_available, status, created_at, updated_at`

func scanSection(row pgx.Row, s *models.OfferedSection) error {
	return row.Scan(
		&s.ID,
		&s.CourseID,
		&s.Year,
		&s.Term,
		&s.ProfessorID,
		&s.Capacity,
		&s.SeatsAvailable,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// FindSectionByID retrieves a section by ID without locking it
func (r *SectionRepository) FindSectionByID(ctx context.Context, id int64) (*models.OfferedSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM offered_sections WHERE id = $1`

	var section models.OfferedSection
	if err := scanSection(r.db.QueryRow(ctx, query, id), &section); err != nil {
		return nil, dberrors.MapError(err, "finding section", apperrors.ErrSectionNotFound)
	}
	return &section, nil
}

// LockSection retrieves a section and takes its row lock for the rest of the transaction
func (r *SectionRepository) LockSection(ctx context.Context, id int64) (*models.OfferedSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM offered_sections WHERE id = $1 FOR UPDATE`

	var section models.OfferedSection
	if err := scanSection(r.db.QueryRow(ctx, query, id), &section); err != nil {
		return nil, dberrors.MapError(err, "locking section", apperrors.ErrSectionNotFound)
	}
	return &section, nil
}

// PersistSection inserts the section when it has no ID yet, otherwise updates it
func (r *SectionRepository) PersistSection(ctx context.Context, section *models.OfferedSection) error {
	if section.ID == 0 {
		query := `
			INSERT INTO offered_sections (course_id, year, term, professor_id, capacity, seats_available, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRow(ctx, query,
			section.CourseID, section.Year, section.Term, section.ProfessorID,
			section.Capacity, section.SeatsAvailable, section.Status,
		).Scan(&section.ID, &section.CreatedAt, &section.UpdatedAt)
		return dberrors.MapError(err, "creating section", apperrors.ErrSectionNotFound)
	}

	query := `
		UPDATE offered_sections
		SET professor_id = $2, capacity = $3, seats_available = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		section.ID, section.ProfessorID, section.Capacity, section.SeatsAvailable, section.Status,
	).Scan(&section.UpdatedAt)
	return dberrors.MapError(err, "updating section", apperrors.ErrSectionNotFound)
}
