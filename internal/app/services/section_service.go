package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/app/rules"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// SectionInput describes a new offered section.
type SectionInput struct {
	CourseID    int64
	Year        int
	Term        models.Term
	ProfessorID *int64
	Capacity    int
	// SeatsAvailable overrides the initial availability; nil means Capacity.
	SeatsAvailable *int
}

// SectionService defines the interface for offered section operations
type SectionService interface {
	GetSection(ctx context.Context, id int64) (*models.OfferedSection, error)
	CreateSection(ctx context.Context, input SectionInput) (*models.OfferedSection, error)
	UpdateCapacity(ctx context.Context, id int64, capacity int) (*models.OfferedSection, error)
	AssignProfessor(ctx context.Context, id int64, professorID *int64) (*models.OfferedSection, error)
	DeleteSection(ctx context.Context, id int64) error
}

type sectionServiceImpl struct {
	tx     repositories.TxManager
	logger zerolog.Logger
}

// NewSectionService creates a new SectionService
func NewSectionService(tx repositories.TxManager, logger zerolog.Logger) SectionService {
	return &sectionServiceImpl{
		tx:     tx,
		logger: logger.With().Str("component", "section").Logger(),
	}
}

// lockActiveSection locks a section row and rejects soft-deleted sections.
func lockActiveSection(ctx context.Context, store repositories.Store, id int64) (*models.OfferedSection, error) {
	section, err := store.LockSection(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireActive(section.IsActive(), apperrors.ErrSectionNotFound); err != nil {
		return nil, err
	}
	return section, nil
}

func requireProfessor(ctx context.Context, store repositories.Store, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := store.ProfessorExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.New(apperrors.ErrProfessorNotFound, "id %d", *id)
	}
	return nil
}

func validTerm(t models.Term) bool {
	switch t {
	case models.TermFall, models.TermSpring, models.TermSummer:
		return true
	}
	return false
}

// GetSection retrieves an active section
func (s *sectionServiceImpl) GetSection(ctx context.Context, id int64) (*models.OfferedSection, error) {
	var section *models.OfferedSection
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		sec, err := store.FindSectionByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(sec.IsActive(), apperrors.ErrSectionNotFound); err != nil {
			return err
		}
		section = sec
		return nil
	})
	return section, err
}

// CreateSection offers a course for an academic period
func (s *sectionServiceImpl) CreateSection(ctx context.Context, input SectionInput) (*models.OfferedSection, error) {
	if !validTerm(input.Term) {
		return nil, apperrors.New(apperrors.ErrValidationFailed, "unknown term %q", input.Term)
	}
	section, err := models.NewOfferedSection(input.CourseID, input.Year, input.Term, input.ProfessorID, input.Capacity, input.SeatsAvailable)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		course, err := store.FindCourseByID(ctx, input.CourseID)
		if err != nil {
			return err
		}
		if err := requireActive(course.IsActive(), apperrors.ErrCourseNotFound); err != nil {
			return err
		}
		if err := requireProfessor(ctx, store, input.ProfessorID); err != nil {
			return err
		}
		return store.PersistSection(ctx, section)
	})
	logOutcome(s.logger, "create_section", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sectionId", section.ID).Int("capacity", section.Capacity).Msg("Section created")
	return section, nil
}

// UpdateCapacity resizes the seat ledger without evicting anyone
func (s *sectionServiceImpl) UpdateCapacity(ctx context.Context, id int64, capacity int) (*models.OfferedSection, error) {
	var section *models.OfferedSection
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		sec, err := lockActiveSection(ctx, store, id)
		if err != nil {
			return err
		}
		if err := sec.SetCapacity(capacity); err != nil {
			return err
		}
		if err := store.PersistSection(ctx, sec); err != nil {
			return err
		}
		section = sec
		return nil
	})
	logOutcome(s.logger, "update_capacity", err)
	return section, err
}

// AssignProfessor sets or clears the section's professor. Every active slot of
// the section must fit the new professor's calendar.
func (s *sectionServiceImpl) AssignProfessor(ctx context.Context, id int64, professorID *int64) (*models.OfferedSection, error) {
	var section *models.OfferedSection
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		sec, err := lockActiveSection(ctx, store, id)
		if err != nil {
			return err
		}
		if err := requireProfessor(ctx, store, professorID); err != nil {
			return err
		}

		if professorID != nil {
			slots, err := store.FindActiveSlotsBySection(ctx, id)
			if err != nil {
				return err
			}
			scope := models.ProfessorScope(*professorID)
			var collisions []models.ScheduleSlot
			for _, day := range distinctDays(slots) {
				if err := store.LockScope(ctx, scope, day); err != nil {
					return err
				}
				taught, err := store.FindActiveSlotsByScope(ctx, scope, day)
				if err != nil {
					return err
				}
				taught = withSectionSlots(taught, id, slots)
				for _, slot := range slots {
					if slot.Day == day {
						collisions = appendUnique(collisions, rules.FindOverlaps(slot.Interval(), taught, slot.ID)...)
					}
				}
			}
			if len(collisions) > 0 {
				return rules.NewConflictError(apperrors.ErrProfessorConflict, scope, collisions)
			}
		}

		sec.ProfessorID = professorID
		if err := store.PersistSection(ctx, sec); err != nil {
			return err
		}
		section = sec
		return nil
	})
	logOutcome(s.logger, "assign_professor", err)
	return section, err
}

// DeleteSection soft-deletes a section with no active enrollments, along with its slots
func (s *sectionServiceImpl) DeleteSection(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		sec, err := lockActiveSection(ctx, store, id)
		if err != nil {
			return err
		}
		enrollments, err := store.FindActiveEnrollmentsBySection(ctx, id)
		if err != nil {
			return err
		}
		if len(enrollments) > 0 {
			return apperrors.New(apperrors.ErrInUse, "section %d has %d active enrollments", id, len(enrollments))
		}

		slots, err := store.FindActiveSlotsBySection(ctx, id)
		if err != nil {
			return err
		}
		for i := range slots {
			slots[i].Status = models.StatusDeleted
			if err := store.PersistSlot(ctx, &slots[i]); err != nil {
				return err
			}
		}

		sec.Status = models.StatusDeleted
		return store.PersistSection(ctx, sec)
	})
	logOutcome(s.logger, "delete_section", err)
	return err
}
