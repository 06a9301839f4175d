package services

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
)

// fixture wires every service to one in-memory store.
type fixture struct {
	store       *repositories.MemoryStore
	curriculum  CurriculumService
	sections    SectionService
	schedule    ScheduleService
	enrollments EnrollmentService
	evaluation  EvaluationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	log := zerolog.Nop()
	opts := DefaultEngineOptions()
	return &fixture{
		store:       store,
		curriculum:  NewCurriculumService(store, opts, log),
		sections:    NewSectionService(store, log),
		schedule:    NewScheduleService(store, log),
		enrollments: NewEnrollmentService(store, log),
		evaluation:  NewEvaluationService(store, opts, log),
	}
}

func ptr[T any](v T) *T { return &v }

func hm(h, m int) models.TimeOfDay { return models.NewTimeOfDay(h, m) }

// section seeds a course and an active section with the given capacity.
func (f *fixture) section(professorID *int64, capacity int) int64 {
	curriculumID := f.store.AddCurriculum(models.Curriculum{Code: "CS", Name: "Computer Science", CycleCount: 10})
	courseID := f.store.AddCourse(models.Course{CurriculumID: curriculumID, Code: "C", Name: "Course", Cycle: 1})
	return f.store.AddSection(models.OfferedSection{
		CourseID:       courseID,
		Year:           2026,
		Term:           models.TermFall,
		ProfessorID:    professorID,
		Capacity:       capacity,
		SeatsAvailable: capacity,
	})
}

// slot seeds an active slot.
func (f *fixture) slot(sectionID int64, day models.DayOfWeek, start, end models.TimeOfDay, roomID *int64) int64 {
	return f.store.AddSlot(models.ScheduleSlot{
		SectionID: sectionID,
		Day:       day,
		Start:     start,
		End:       end,
		RoomID:    roomID,
	})
}
