package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
	"github.com/unisphere/academics/internal/pkg/dberrors"
)

// CourseRepository handles database operations for curricula and courses
type CourseRepository struct {
	db DBTX
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

const courseColumns = `id, curriculum_id, code, name, cycle, credits, prerequisite_id, status, created_at, updated_at`

func scanCourse(row pgx.Row, c *models.Course) error {
	return row.Scan(
		&c.ID,
		&c.CurriculumID,
		&c.Code,
		&c.Name,
		&c.Cycle,
		&c.Credits,
		&c.PrerequisiteID,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// FindCurriculumByID retrieves a curriculum by ID
func (r *CourseRepository) FindCurriculumByID(ctx context.Context, id int64) (*models.Curriculum, error) {
	query := `
		SELECT id, code, name, cycle_count, status
		FROM curricula
		WHERE id = $1
	`

	var curriculum models.Curriculum
	err := r.db.QueryRow(ctx, query, id).Scan(
		&curriculum.ID,
		&curriculum.Code,
		&curriculum.Name,
		&curriculum.CycleCount,
		&curriculum.Status,
	)
	if err != nil {
		return nil, dberrors.MapError(err, "finding curriculum", apperrors.ErrCurriculumNotFound)
	}

	return &curriculum, nil
}

// FindCourseByID retrieves a course by ID, deleted or not
func (r *CourseRepository) FindCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	var course models.Course
	if err := scanCourse(r.db.QueryRow(ctx, query, id), &course); err != nil {
		return nil, dberrors.MapError(err, "finding course", apperrors.ErrCourseNotFound)
	}

	return &course, nil
}

// FindActiveDependents lists the active courses that require courseID
func (r *CourseRepository) FindActiveDependents(ctx context.Context, courseID int64) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + `
		FROM courses
		WHERE prerequisite_id = $1 AND status = 'ACTIVE'
		ORDER BY cycle, id
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error querying dependents: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func collectCourses(rows pgx.Rows) ([]models.Course, error) {
	var courses []models.Course
	for rows.Next() {
		var c models.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}

// PersistCourse inserts the course when it has no ID yet, otherwise updates it
func (r *CourseRepository) PersistCourse(ctx context.Context, course *models.Course) error {
	if course.ID == 0 {
		query := `
			INSERT INTO courses (curriculum_id, code, name, cycle, credits, prerequisite_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRow(ctx, query,
			course.CurriculumID, course.Code, course.Name, course.Cycle, course.Credits,
			course.PrerequisiteID, course.Status,
		).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
		if dberrors.IsCode(err, dberrors.UniqueViolation) {
			return apperrors.New(apperrors.ErrValidationFailed, "course code %q already exists in curriculum %d", course.Code, course.CurriculumID)
		}
		return dberrors.MapError(err, "creating course", apperrors.ErrCourseNotFound)
	}

	query := `
		UPDATE courses
		SET code = $2, name = $3, cycle = $4, credits = $5, prerequisite_id = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		course.ID, course.Code, course.Name, course.Cycle, course.Credits, course.PrerequisiteID, course.Status,
	).Scan(&course.UpdatedAt)
	if dberrors.IsCode(err, dberrors.UniqueViolation) {
		return apperrors.New(apperrors.ErrValidationFailed, "course code %q already exists in curriculum %d", course.Code, course.CurriculumID)
	}
	return dberrors.MapError(err, "updating course", apperrors.ErrCourseNotFound)
}
