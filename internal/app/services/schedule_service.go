package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/app/rules"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// SlotInput describes a slot to create, or the new state of an existing one
// when SlotID is set.
type SlotInput struct {
	SlotID    int64
	SectionID int64
	Day       models.DayOfWeek
	Start     models.TimeOfDay
	End       models.TimeOfDay
	RoomID    *int64
}

// Interval returns the weekly interval described by the input.
func (in SlotInput) Interval() models.Interval {
	return models.Interval{Day: in.Day, Start: in.Start, End: in.End}
}

// ScheduleService defines the interface for schedule slot operations
type ScheduleService interface {
	// CreateOrUpdateSlot persists a slot once the professor, room and enrolled
	// student calendars have been checked for overlaps.
	CreateOrUpdateSlot(ctx context.Context, input SlotInput) (*models.ScheduleSlot, error)
	DeleteSlot(ctx context.Context, id int64) error
	ListSectionSlots(ctx context.Context, sectionID int64) ([]models.ScheduleSlot, error)
	// FindConflicts lists the stored slots of scope overlapping candidate.
	FindConflicts(ctx context.Context, scope models.Scope, candidate models.Interval, excludeSlotID int64) ([]models.ScheduleSlot, error)
}

type scheduleServiceImpl struct {
	tx     repositories.TxManager
	logger zerolog.Logger
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(tx repositories.TxManager, logger zerolog.Logger) ScheduleService {
	return &scheduleServiceImpl{
		tx:     tx,
		logger: logger.With().Str("component", "schedule").Logger(),
	}
}

func validateInterval(iv models.Interval) error {
	if !iv.Day.Valid() {
		return apperrors.New(apperrors.ErrInvalidInterval, "day of week must be within 1..7, got %d", int(iv.Day))
	}
	if !iv.Start.Valid() || !iv.End.Valid() {
		return apperrors.New(apperrors.ErrInvalidInterval, "times must lie within the day")
	}
	if iv.Start >= iv.End {
		return apperrors.New(apperrors.ErrInvalidInterval, "start %s is not before end %s", iv.Start, iv.End)
	}
	return nil
}

// checkScope locks (scope, day) and fails with kind when candidate overlaps the
// scope's calendar. The slot being edited is excluded by excludeSlotID.
func checkScope(ctx context.Context, store repositories.Store, kind error, scope models.Scope, candidate models.Interval, excludeSlotID int64) error {
	if err := store.LockScope(ctx, scope, candidate.Day); err != nil {
		return err
	}
	existing, err := store.FindActiveSlotsByScope(ctx, scope, candidate.Day)
	if err != nil {
		return err
	}
	if overlaps := rules.FindOverlaps(candidate, existing, excludeSlotID); len(overlaps) > 0 {
		return rules.NewConflictError(kind, scope, overlaps)
	}
	return nil
}

// CreateOrUpdateSlot creates a slot, or moves an existing one when input.SlotID is set
func (s *scheduleServiceImpl) CreateOrUpdateSlot(ctx context.Context, input SlotInput) (*models.ScheduleSlot, error) {
	candidate := input.Interval()
	if err := validateInterval(candidate); err != nil {
		return nil, err
	}

	var slot *models.ScheduleSlot
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		sectionID := input.SectionID
		current := &models.ScheduleSlot{Status: models.StatusActive}
		if input.SlotID != 0 {
			existing, err := store.FindSlotByID(ctx, input.SlotID)
			if err != nil {
				return err
			}
			if err := requireActive(existing.IsActive(), apperrors.ErrSlotNotFound); err != nil {
				return err
			}
			if sectionID != 0 && sectionID != existing.SectionID {
				return apperrors.New(apperrors.ErrValidationFailed, "slot %d belongs to section %d", existing.ID, existing.SectionID)
			}
			sectionID = existing.SectionID
			current = existing
		}

		// The section row lock keeps enrollments from changing while its
		// students' calendars are checked.
		section, err := lockActiveSection(ctx, store, sectionID)
		if err != nil {
			return err
		}

		if input.RoomID != nil {
			ok, err := store.RoomExists(ctx, *input.RoomID)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.New(apperrors.ErrRoomNotFound, "id %d", *input.RoomID)
			}
		}

		if section.ProfessorID != nil {
			if err := checkScope(ctx, store, apperrors.ErrProfessorConflict,
				models.ProfessorScope(*section.ProfessorID), candidate, input.SlotID); err != nil {
				return err
			}
		}

		if input.RoomID != nil {
			if err := checkScope(ctx, store, apperrors.ErrRoomConflict,
				models.RoomScope(*input.RoomID), candidate, input.SlotID); err != nil {
				return err
			}
		}

		enrollments, err := store.FindActiveEnrollmentsBySection(ctx, sectionID)
		if err != nil {
			return err
		}
		sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].StudentID < enrollments[j].StudentID })
		for _, e := range enrollments {
			// The student's calendar includes this section's other slots.
			if err := checkScope(ctx, store, apperrors.ErrStudentConflict,
				models.StudentScope(e.StudentID), candidate, input.SlotID); err != nil {
				return err
			}
		}

		current.SectionID = sectionID
		current.Day = input.Day
		current.Start = input.Start
		current.End = input.End
		current.RoomID = input.RoomID
		if err := store.PersistSlot(ctx, current); err != nil {
			return err
		}
		slot = current
		return nil
	})
	logOutcome(s.logger, "save_slot", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("slotId", slot.ID).Int64("sectionId", slot.SectionID).
		Str("interval", slot.Interval().String()).Msg("Schedule slot saved")
	return slot, nil
}

// DeleteSlot soft-deletes a slot
func (s *scheduleServiceImpl) DeleteSlot(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		slot, err := store.FindSlotByID(ctx, id)
		if err != nil {
			return err
		}
		if err := requireActive(slot.IsActive(), apperrors.ErrSlotNotFound); err != nil {
			return err
		}
		slot.Status = models.StatusDeleted
		return store.PersistSlot(ctx, slot)
	})
	logOutcome(s.logger, "delete_slot", err)
	return err
}

// ListSectionSlots lists the active slots of an active section
func (s *scheduleServiceImpl) ListSectionSlots(ctx context.Context, sectionID int64) ([]models.ScheduleSlot, error) {
	var slots []models.ScheduleSlot
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		section, err := store.FindSectionByID(ctx, sectionID)
		if err != nil {
			return err
		}
		if err := requireActive(section.IsActive(), apperrors.ErrSectionNotFound); err != nil {
			return err
		}
		slots, err = store.FindActiveSlotsBySection(ctx, sectionID)
		return err
	})
	return slots, err
}

// FindConflicts runs the overlap detector against the stored calendar of scope
func (s *scheduleServiceImpl) FindConflicts(ctx context.Context, scope models.Scope, candidate models.Interval, excludeSlotID int64) ([]models.ScheduleSlot, error) {
	if err := validateInterval(candidate); err != nil {
		return nil, err
	}
	var overlaps []models.ScheduleSlot
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		existing, err := store.FindActiveSlotsByScope(ctx, scope, candidate.Day)
		if err != nil {
			return err
		}
		overlaps = rules.FindOverlaps(candidate, existing, excludeSlotID)
		return nil
	})
	return overlaps, err
}
