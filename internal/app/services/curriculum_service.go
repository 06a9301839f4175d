package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/app/rules"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// CourseInput carries the editable fields of a course.
type CourseInput struct {
	Code           string
	Name           string
	Cycle          int
	Credits        int
	PrerequisiteID *int64
}

// CurriculumService defines the interface for curriculum operations
type CurriculumService interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	CreateCourse(ctx context.Context, curriculumID int64, input CourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, id int64, input CourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
	// ValidatePrerequisite checks a proposed link without changing anything.
	ValidatePrerequisite(ctx context.Context, courseID, prerequisiteID int64, cycle int) error
}

type curriculumServiceImpl struct {
	tx      repositories.TxManager
	options EngineOptions
	logger  zerolog.Logger
}

// NewCurriculumService creates a new CurriculumService
func NewCurriculumService(tx repositories.TxManager, options EngineOptions, logger zerolog.Logger) CurriculumService {
	return &curriculumServiceImpl{
		tx:      tx,
		options: options.withDefaults(),
		logger:  logger.With().Str("component", "curriculum").Logger(),
	}
}

func validateCourseInput(input CourseInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return apperrors.New(apperrors.ErrValidationFailed, "course code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.New(apperrors.ErrValidationFailed, "course name is required")
	}
	if input.Cycle < 1 {
		return apperrors.New(apperrors.ErrValidationFailed, "cycle must be at least 1, got %d", input.Cycle)
	}
	if input.Credits < 0 {
		return apperrors.New(apperrors.ErrValidationFailed, "credits cannot be negative")
	}
	return nil
}

// loadCurriculum returns the active curriculum and takes its graph lock.
func loadCurriculum(ctx context.Context, store repositories.Store, id int64) (*models.Curriculum, error) {
	curriculum, err := store.FindCurriculumByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireActive(curriculum.Status == models.StatusActive, apperrors.ErrCurriculumNotFound); err != nil {
		return nil, err
	}
	if err := store.LockScope(ctx, models.CurriculumScope(id), 0); err != nil {
		return nil, err
	}
	return curriculum, nil
}

func (s *curriculumServiceImpl) checkCycleBound(curriculum *models.Curriculum, cycle int) error {
	if curriculum.CycleCount > 0 && cycle > curriculum.CycleCount {
		return apperrors.New(apperrors.ErrValidationFailed,
			"cycle %d exceeds the %d cycles of curriculum %s", cycle, curriculum.CycleCount, curriculum.Code)
	}
	return nil
}

func (s *curriculumServiceImpl) validateLink(ctx context.Context, store repositories.Store, curriculum *models.Curriculum, courseID int64, prerequisiteID *int64, cycle int) error {
	if prerequisiteID == nil {
		return nil
	}
	return rules.ValidatePrerequisite(ctx, rules.PrerequisiteCheck{
		CourseID:       courseID,
		CurriculumID:   curriculum.ID,
		PrerequisiteID: *prerequisiteID,
		Cycle:          cycle,
		MaxDepth:       rules.MaxDepth(curriculum, s.options.DefaultMaxPrerequisiteDepth),
	}, store.FindCourseByID)
}

// GetCourse retrieves an active course
func (s *curriculumServiceImpl) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	var course *models.Course
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		c, err := store.FindCourseByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(c.IsActive(), apperrors.ErrCourseNotFound); err != nil {
			return err
		}
		course = c
		return nil
	})
	return course, err
}

// CreateCourse adds a course to a curriculum
func (s *curriculumServiceImpl) CreateCourse(ctx context.Context, curriculumID int64, input CourseInput) (*models.Course, error) {
	if err := validateCourseInput(input); err != nil {
		return nil, err
	}

	course := &models.Course{
		CurriculumID:   curriculumID,
		Code:           strings.TrimSpace(input.Code),
		Name:           strings.TrimSpace(input.Name),
		Cycle:          input.Cycle,
		Credits:        input.Credits,
		PrerequisiteID: input.PrerequisiteID,
		Status:         models.StatusActive,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		curriculum, err := loadCurriculum(ctx, store, curriculumID)
		if err != nil {
			return err
		}
		if err := s.checkCycleBound(curriculum, input.Cycle); err != nil {
			return err
		}
		if err := s.validateLink(ctx, store, curriculum, 0, input.PrerequisiteID, input.Cycle); err != nil {
			return err
		}
		return store.PersistCourse(ctx, course)
	})
	logOutcome(s.logger, "create_course", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseId", course.ID).Str("code", course.Code).Msg("Course created")
	return course, nil
}

// UpdateCourse edits a course, revalidating its prerequisite link and the
// cycle order of the courses that depend on it
func (s *curriculumServiceImpl) UpdateCourse(ctx context.Context, id int64, input CourseInput) (*models.Course, error) {
	if err := validateCourseInput(input); err != nil {
		return nil, err
	}

	var course *models.Course
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		existing, err := store.FindCourseByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(existing.IsActive(), apperrors.ErrCourseNotFound); err != nil {
			return err
		}
		curriculum, err := loadCurriculum(ctx, store, existing.CurriculumID)
		if err != nil {
			return err
		}
		if err := s.checkCycleBound(curriculum, input.Cycle); err != nil {
			return err
		}
		if err := s.validateLink(ctx, store, curriculum, id, input.PrerequisiteID, input.Cycle); err != nil {
			return err
		}

		dependents, err := store.FindActiveDependents(ctx, id)
		if err != nil {
			return err
		}
		if err := rules.CheckDependents(existing, input.Cycle, dependents); err != nil {
			return err
		}

		existing.Code = strings.TrimSpace(input.Code)
		existing.Name = strings.TrimSpace(input.Name)
		existing.Cycle = input.Cycle
		existing.Credits = input.Credits
		existing.PrerequisiteID = input.PrerequisiteID
		if err := store.PersistCourse(ctx, existing); err != nil {
			return err
		}
		course = existing
		return nil
	})
	logOutcome(s.logger, "update_course", err)
	if err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse soft-deletes a course that no active course requires
func (s *curriculumServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		course, err := store.FindCourseByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(course.IsActive(), apperrors.ErrCourseNotFound); err != nil {
			return err
		}
		if _, err := loadCurriculum(ctx, store, course.CurriculumID); err != nil {
			return err
		}

		dependents, err := store.FindActiveDependents(ctx, id)
		if err != nil {
			return err
		}
		if len(dependents) > 0 {
			return apperrors.New(apperrors.ErrInUse, "course %s is the prerequisite of %s", course.Code, dependents[0].Code)
		}

		course.Status = models.StatusDeleted
		return store.PersistCourse(ctx, course)
	})
	logOutcome(s.logger, "delete_course", err)
	return err
}

// ValidatePrerequisite checks whether prerequisiteID may become the
// prerequisite of courseID at the given cycle
func (s *curriculumServiceImpl) ValidatePrerequisite(ctx context.Context, courseID, prerequisiteID int64, cycle int) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		if courseID == prerequisiteID {
			return apperrors.New(apperrors.ErrSelfReference, "course %d", courseID)
		}
		course, err := store.FindCourseByID(ctx, courseID)
		if err != nil {
			return err
		}
		if err := requireActive(course.IsActive(), apperrors.ErrCourseNotFound); err != nil {
			return err
		}
		curriculum, err := store.FindCurriculumByID(ctx, course.CurriculumID)
		if err != nil {
			return err
		}
		return s.validateLink(ctx, store, curriculum, courseID, &prerequisiteID, cycle)
	})
}
