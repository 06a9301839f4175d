package repositories

import (
	"context"
	"fmt"

	"github.com/unisphere/academics/internal/app/models"
)

// AuditRepository reads whole tables for the integrity audit
type AuditRepository struct {
	db DBTX
}

var _ AuditReader = (*AuditRepository)(nil)

// ListCurricula lists every active curriculum
func (r *AuditRepository) ListCurricula(ctx context.Context) ([]models.Curriculum, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, code, name, cycle_count, status
		FROM curricula
		WHERE status = 'ACTIVE'
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying curricula: %w", err)
	}
	defer rows.Close()

	var curricula []models.Curriculum
	for rows.Next() {
		var c models.Curriculum
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CycleCount, &c.Status); err != nil {
			return nil, fmt.Errorf("error scanning curriculum: %w", err)
		}
		curricula = append(curricula, c)
	}
	return curricula, rows.Err()
}

// ListCoursesByCurriculum lists all courses of a curriculum, deleted ones included
func (r *AuditRepository) ListCoursesByCurriculum(ctx context.Context, curriculumID int64) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, `SELECT `+courseColumns+`
		FROM courses
		WHERE curriculum_id = $1
		ORDER BY cycle, id`, curriculumID)
	if err != nil {
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// ListActiveSections lists every active section
func (r *AuditRepository) ListActiveSections(ctx context.Context) ([]models.OfferedSection, error) {
	rows, err := r.db.Query(ctx, `SELECT `+sectionColumns+`
		FROM offered_sections
		WHERE status = 'ACTIVE'
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying sections: %w", err)
	}
	defer rows.Close()

	var sections []models.OfferedSection
	for rows.Next() {
		var s models.OfferedSection
		if err := scanSection(rows, &s); err != nil {
			return nil, fmt.Errorf("error scanning section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// CountActiveEnrollmentsBySection counts ENROLLED rows per section
func (r *AuditRepository) CountActiveEnrollmentsBySection(ctx context.Context) (map[int64]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT section_id, COUNT(*)
		FROM enrollments
		WHERE status = 'ENROLLED'
		GROUP BY section_id`)
	if err != nil {
		return nil, fmt.Errorf("error counting enrollments: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var sectionID int64
		var n int
		if err := rows.Scan(&sectionID, &n); err != nil {
			return nil, fmt.Errorf("error scanning enrollment count: %w", err)
		}
		counts[sectionID] = n
	}
	return counts, rows.Err()
}

// ListActiveSlots lists the active slots of active sections
func (r *AuditRepository) ListActiveSlots(ctx context.Context) ([]models.ScheduleSlot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+slotColumns+`
		FROM schedule_slots s
		JOIN offered_sections o ON o.id = s.section_id
		WHERE s.status = 'ACTIVE' AND o.status = 'ACTIVE'
		ORDER BY s.day_of_week, s.start_time, s.id`)
	if err != nil {
		return nil, fmt.Errorf("error querying slots: %w", err)
	}
	defer rows.Close()

	return collectSlots(rows)
}

// ListActiveCriteria lists every active evaluation criterion
func (r *AuditRepository) ListActiveCriteria(ctx context.Context) ([]models.EvaluationCriterion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, section_id, name, weight, status, created_at, updated_at
		FROM evaluation_criteria
		WHERE status = 'ACTIVE'
		ORDER BY section_id, id`)
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
	return criteria, rows.Err()
}
