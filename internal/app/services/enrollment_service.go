package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/app/rules"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// EnrollmentService defines the interface for enrollment operations
type EnrollmentService interface {
	GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error)
	Enroll(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error)
	Withdraw(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	Cancel(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	// Transfer moves an active enrollment to another section. It returns the
	// new enrollment; the old one ends WITHDRAWN.
	Transfer(ctx context.Context, enrollmentID, newSectionID int64) (*models.Enrollment, error)
	ListStudentSchedule(ctx context.Context, studentID int64) ([]models.ScheduleSlot, error)
}

type enrollmentServiceImpl struct {
	tx     repositories.TxManager
	logger zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(tx repositories.TxManager, logger zerolog.Logger) EnrollmentService {
	return &enrollmentServiceImpl{
		tx:     tx,
		logger: logger.With().Str("component", "enrollment").Logger(),
	}
}

func requireStudent(ctx context.Context, store repositories.Store, id int64) error {
	ok, err := store.StudentExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.New(apperrors.ErrStudentNotFound, "id %d", id)
	}
	return nil
}

func checkNotEnrolled(ctx context.Context, store repositories.Store, studentID, sectionID int64) error {
	existing, err := store.FindActiveEnrollment(ctx, studentID, sectionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.New(apperrors.ErrDuplicateEnrollment, "student %d, section %d (enrollment %d)", studentID, sectionID, existing.ID)
	}
	return nil
}

// admit runs the schedule and capacity checks for placing a student in a
// locked section and reserves the seat. The section's slots must fit the
// student's calendar and each other. Slots of the sections in leaving are
// ignored, which lets a transfer replace its old section.
func admit(ctx context.Context, store repositories.Store, studentID int64, section *models.OfferedSection, leaving ...int64) error {
	target, err := store.FindActiveSlotsBySection(ctx, section.ID)
	if err != nil {
		return err
	}

	scope := models.StudentScope(studentID)
	var collisions []models.ScheduleSlot
	for _, day := range distinctDays(target) {
		if err := store.LockScope(ctx, scope, day); err != nil {
			return err
		}
		booked, err := store.FindActiveSlotsByScope(ctx, scope, day)
		if err != nil {
			return err
		}
		booked = withSectionSlots(rules.ExcludeSections(booked, leaving...), section.ID, target)
		for _, slot := range target {
			if slot.Day == day {
				collisions = appendUnique(collisions, rules.FindOverlaps(slot.Interval(), booked, slot.ID)...)
			}
		}
	}
	if len(collisions) > 0 {
		return rules.NewConflictError(apperrors.ErrScheduleConflict, scope, collisions)
	}

	return section.TryReserveSeat()
}

// GetEnrollment retrieves an enrollment in any status
func (s *enrollmentServiceImpl) GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		e, err := store.FindEnrollmentByID(ctx, id)
		enrollment = e
		return err
	})
	return enrollment, err
}

// Enroll places a student in a section, consuming one seat
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		StudentID: studentID,
		SectionID: sectionID,
		Status:    models.EnrollmentEnrolled,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		if err := checkNotEnrolled(ctx, store, studentID, sectionID); err != nil {
			return err
		}
		section, err := lockActiveSection(ctx, store, sectionID)
		if err != nil {
			return err
		}
		if err := requireStudent(ctx, store, studentID); err != nil {
			return err
		}
		if err := admit(ctx, store, studentID, section); err != nil {
			return err
		}
		if err := store.PersistEnrollment(ctx, enrollment); err != nil {
			return err
		}
		return store.PersistSection(ctx, section)
	})
	logOutcome(s.logger, "enroll", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("enrollmentId", enrollment.ID).Int64("studentId", studentID).
		Int64("sectionId", sectionID).Msg("Student enrolled")
	return enrollment, nil
}

// Withdraw ends an active enrollment as WITHDRAWN and frees its seat
func (s *enrollmentServiceImpl) Withdraw(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	return s.release(ctx, "withdraw", enrollmentID, models.EnrollmentWithdrawn)
}

// Cancel ends an active enrollment as CANCELLED and frees its seat
func (s *enrollmentServiceImpl) Cancel(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	return s.release(ctx, "cancel", enrollmentID, models.EnrollmentCancelled)
}

// lockEnrollment locks the enrollment's section, then rereads the enrollment
// so its status cannot change underneath the caller.
func lockEnrollment(ctx context.Context, store repositories.Store, enrollmentID int64) (*models.Enrollment, *models.OfferedSection, error) {
	e, err := store.FindEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, nil, err
	}
	section, err := store.LockSection(ctx, e.SectionID)
	if err != nil {
		return nil, nil, err
	}
	if e, err = store.FindEnrollmentByID(ctx, enrollmentID); err != nil {
		return nil, nil, err
	}
	if !e.IsActive() {
		return nil, nil, apperrors.New(apperrors.ErrInvalidTransition, "enrollment %d is %s", e.ID, e.Status)
	}
	return e, section, nil
}

func (s *enrollmentServiceImpl) releaseSeat(section *models.OfferedSection, enrollmentID int64) {
	if !section.ReleaseSeat() {
		s.logger.Warn().Int64("sectionId", section.ID).Int64("enrollmentId", enrollmentID).
			Int("capacity", section.Capacity).Msg("Seat release absorbed at capacity, ledger out of step with enrollments")
	}
}

func (s *enrollmentServiceImpl) release(ctx context.Context, op string, enrollmentID int64, status models.EnrollmentStatus) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		e, section, err := lockEnrollment(ctx, store, enrollmentID)
		if err != nil {
			return err
		}
		e.Status = status
		s.releaseSeat(section, e.ID)
		if err := store.PersistEnrollment(ctx, e); err != nil {
			return err
		}
		if err := store.PersistSection(ctx, section); err != nil {
			return err
		}
		enrollment = e
		return nil
	})
	logOutcome(s.logger, op, err)
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Transfer moves an enrollment to newSectionID. Every check on the new section
// runs before either ledger changes, and both changes commit together.
func (s *enrollmentServiceImpl) Transfer(ctx context.Context, enrollmentID, newSectionID int64) (*models.Enrollment, error) {
	var moved *models.Enrollment
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		old, err := store.FindEnrollmentByID(ctx, enrollmentID)
		if err != nil {
			return err
		}
		if old.SectionID == newSectionID {
			return apperrors.New(apperrors.ErrDuplicateEnrollment, "enrollment %d is already in section %d", old.ID, newSectionID)
		}

		// Lock both sections in ascending id order.
		var oldSection, newSection *models.OfferedSection
		if old.SectionID < newSectionID {
			if oldSection, err = store.LockSection(ctx, old.SectionID); err != nil {
				return err
			}
			if newSection, err = store.LockSection(ctx, newSectionID); err != nil {
				return err
			}
		} else {
			if newSection, err = store.LockSection(ctx, newSectionID); err != nil {
				return err
			}
			if oldSection, err = store.LockSection(ctx, old.SectionID); err != nil {
				return err
			}
		}
		if err := requireActive(newSection.IsActive(), apperrors.ErrSectionNotFound); err != nil {
			return err
		}

		if old, err = store.FindEnrollmentByID(ctx, enrollmentID); err != nil {
			return err
		}
		if !old.IsActive() {
			return apperrors.New(apperrors.ErrInvalidTransition, "enrollment %d is %s", old.ID, old.Status)
		}

		if err := checkNotEnrolled(ctx, store, old.StudentID, newSectionID); err != nil {
			return err
		}
		if err := admit(ctx, store, old.StudentID, newSection, oldSection.ID); err != nil {
			return err
		}

		// All checks passed: apply both sides.
		old.Status = models.EnrollmentWithdrawn
		s.releaseSeat(oldSection, old.ID)
		if err := store.PersistEnrollment(ctx, old); err != nil {
			return err
		}
		if err := store.PersistSection(ctx, oldSection); err != nil {
			return err
		}

		next := &models.Enrollment{
			StudentID: old.StudentID,
			SectionID: newSectionID,
			Status:    models.EnrollmentEnrolled,
		}
		if err := store.PersistEnrollment(ctx, next); err != nil {
			return err
		}
		if err := store.PersistSection(ctx, newSection); err != nil {
			return err
		}
		moved = next
		return nil
	})
	logOutcome(s.logger, "transfer", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("fromEnrollmentId", enrollmentID).Int64("toEnrollmentId", moved.ID).
		Int64("sectionId", newSectionID).Msg("Enrollment transferred")
	return moved, nil
}

// ListStudentSchedule lists the active slots of every section the student is enrolled in
func (s *enrollmentServiceImpl) ListStudentSchedule(ctx context.Context, studentID int64) ([]models.ScheduleSlot, error) {
	var schedule []models.ScheduleSlot
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repositories.Store) error {
		if err := requireStudent(ctx, store, studentID); err != nil {
			return err
		}
		enrollments, err := store.FindActiveEnrollmentsByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		for _, e := range enrollments {
			slots, err := store.FindActiveSlotsBySection(ctx, e.SectionID)
			if err != nil {
				return err
			}
			schedule = append(schedule, slots...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSchedule(schedule)
	return schedule, nil
}
