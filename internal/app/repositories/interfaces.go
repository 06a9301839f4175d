package repositories

import (
	"context"

	"github.com/unisphere/academics/internal/app/models"
)

// Lookups return an error wrapping apperrors.ErrNotFound when the row does not
// exist. Soft-deleted rows are still returned by FindXByID so callers can tell
// "deleted" from "never existed"; every FindActive* query filters on status.

// CurriculumStore reads curricula and persists courses.
type CurriculumStore interface {
	FindCurriculumByID(ctx context.Context, id int64) (*models.Curriculum, error)
	FindCourseByID(ctx context.Context, id int64) (*models.Course, error)
	// FindActiveDependents returns active courses whose prerequisite is courseID.
	FindActiveDependents(ctx context.Context, courseID int64) ([]models.Course, error)
	PersistCourse(ctx context.Context, course *models.Course) error
}

// SectionStore reads and persists offered sections.
type SectionStore interface {
	FindSectionByID(ctx context.Context, id int64) (*models.OfferedSection, error)
	// LockSection loads the section and holds a row lock on it until the
	// surrounding transaction ends. Every seat ledger mutation goes through it.
	LockSection(ctx context.Context, id int64) (*models.OfferedSection, error)
	PersistSection(ctx context.Context, section *models.OfferedSection) error
}

// SlotStore reads and persists schedule slots.
type SlotStore interface {
	FindSlotByID(ctx context.Context, id int64) (*models.ScheduleSlot, error)
	// FindActiveSlotsByScope returns the active slots on day belonging to the
	// scope's calendar: the sections a professor teaches, the slots booked in a
	// room, or the sections a student is actively enrolled in.
	FindActiveSlotsByScope(ctx context.Context, scope models.Scope, day models.DayOfWeek) ([]models.ScheduleSlot, error)
	FindActiveSlotsBySection(ctx context.Context, sectionID int64) ([]models.ScheduleSlot, error)
	PersistSlot(ctx context.Context, slot *models.ScheduleSlot) error
}

// EnrollmentStore reads and persists enrollments.
type EnrollmentStore interface {
	FindEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error)
	// FindActiveEnrollment returns nil, nil when the pair has no active enrollment.
	FindActiveEnrollment(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error)
	FindActiveEnrollmentsByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	FindActiveEnrollmentsBySection(ctx context.Context, sectionID int64) ([]models.Enrollment, error)
	PersistEnrollment(ctx context.Context, enrollment *models.Enrollment) error
}

// CriterionStore reads and persists evaluation criteria.
type CriterionStore interface {
	FindCriterionByID(ctx context.Context, id int64) (*models.EvaluationCriterion, error)
	FindActiveCriteriaBySection(ctx context.Context, sectionID int64) ([]models.EvaluationCriterion, error)
	CountGradesByCriterion(ctx context.Context, criterionID int64) (int, error)
	PersistCriterion(ctx context.Context, criterion *models.EvaluationCriterion) error
}

// DirectoryStore answers existence questions about people and rooms owned by
// other modules.
type DirectoryStore interface {
	StudentExists(ctx context.Context, id int64) (bool, error)
	ProfessorExists(ctx context.Context, id int64) (bool, error)
	RoomExists(ctx context.Context, id int64) (bool, error)
}

// Locker serializes check-then-write sequences on a calendar.
type Locker interface {
	// LockScope holds an exclusive lock on (scope, day) until the surrounding
	// transaction ends.
	LockScope(ctx context.Context, scope models.Scope, day models.DayOfWeek) error
}

// Store is the full set of collaborators the coordinators need inside one unit of work.
type Store interface {
	CurriculumStore
	SectionStore
	SlotStore
	EnrollmentStore
	CriterionStore
	DirectoryStore
	Locker
}

// TxManager runs fn inside a single atomic unit of work. The Store handed to fn
// is bound to that unit; fn's error rolls every write back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// AuditReader lists stored data for the offline integrity audit.
type AuditReader interface {
	ListCurricula(ctx context.Context) ([]models.Curriculum, error)
	ListCoursesByCurriculum(ctx context.Context, curriculumID int64) ([]models.Course, error)
	ListActiveSections(ctx context.Context) ([]models.OfferedSection, error)
	CountActiveEnrollmentsBySection(ctx context.Context) (map[int64]int, error)
	ListActiveSlots(ctx context.Context) ([]models.ScheduleSlot, error)
	ListActiveCriteria(ctx context.Context) ([]models.EvaluationCriterion, error)
}
