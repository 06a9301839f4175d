package repositories

import (
	"context"
	"fmt"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
	"github.com/unisphere/academics/internal/pkg/dberrors"
)

// CriterionRepository handles database operations for evaluation criteria
type CriterionRepository struct {
	db DBTX
}

// NewCriterionRepository creates a new criterion repository
func NewCriterionRepository(db DBTX) *CriterionRepository {
	return &CriterionRepository{
		db: db,
	}
}

// FindCriterionByID retrieves a criterion by ID
func (r *CriterionRepository) FindCriterionByID(ctx context.Context, id int64) (*models.EvaluationCriterion, error) {
	query := `
		SELECT id, section_id, name, weight, status, created_at, updated_at
		FROM evaluation_criteria
		WHERE id = $1
	`

	var c models.EvaluationCriterion
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.SectionID, &c.Name, &c.Weight, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, dberrors.MapError(err, "finding criterion", apperrors.ErrCriterionNotFound)
	}
	return &c, nil
}

// FindActiveCriteriaBySection lists the active criteria of a section
func (r *CriterionRepository) FindActiveCriteriaBySection(ctx context.Context, sectionID int64) ([]models.EvaluationCriterion, error) {
	query := `
		SELECT id, section_id, name, weight, status, created_at, updated_at
		FROM evaluation_criteria
		WHERE section_id = $1 AND status = 'ACTIVE'
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("error querying criteria: %w", err)
	}
	defer rows.Close()

	var criteria []models.EvaluationCriterion
	for rows.Next() {
		var c models.EvaluationCriterion
		if err := rows.Scan(&c.ID, &c.SectionID, &c.Name, &c.Weight, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning criterion: %w", err)
		}
		criteria = append(criteria, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating criteria: %w", err)
	}
	return criteria, nil
}

// CountGradesByCriterion counts the grades recorded against a criterion
func (r *CriterionRepository) CountGradesByCriterion(ctx context.Context, criterionID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM grades WHERE criterion_id = $1`, criterionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting grades: %w", err)
	}
	return count, nil
}

// PersistCriterion inserts the criterion when it has no ID yet, otherwise updates it
func (r *CriterionRepository) PersistCriterion(ctx context.Context, c *models.EvaluationCriterion) error {
	if c.ID == 0 {
		err := r.db.QueryRow(ctx, `
			INSERT INTO evaluation_criteria (section_id, name, weight, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`,
			c.SectionID, c.Name, c.Weight, c.Status,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		return dberrors.MapError(err, "creating criterion", apperrors.ErrCriterionNotFound)
	}

	err := r.db.QueryRow(ctx, `
		UPDATE evaluation_criteria
		SET name = $2, weight = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Name, c.Weight, c.Status,
	).Scan(&c.UpdatedAt)
	return dberrors.MapError(err, "updating criterion", apperrors.ErrCriterionNotFound)
}
