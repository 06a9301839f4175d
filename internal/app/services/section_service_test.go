package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

func TestSectionService_CreateSection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	curriculum := f.store.AddCurriculum(models.Curriculum{Code: "CS", CycleCount: 4})
	course := f.store.AddCourse(models.Course{CurriculumID: curriculum, Code: "CS101", Cycle: 1})
	prof := int64(7)
	f.store.AddProfessor(prof)

	tests := []struct {
		name    string
		input   SectionInput
		seats   int
		wantErr error
	}{
		{"defaults seats to capacity", SectionInput{CourseID: course, Year: 2026, Term: models.TermFall, ProfessorID: &prof, Capacity: 30}, 30, nil},
		{"explicit seats", SectionInput{CourseID: course, Year: 2026, Term: models.TermSpring, Capacity: 30, SeatsAvailable: ptr(12)}, 12, nil},
		{"zero capacity", SectionInput{CourseID: course, Year: 2026, Term: models.TermFall, Capacity: 0}, 0, apperrors.ErrInvalidCapacity},
		{"seats above capacity", SectionInput{CourseID: course, Year: 2026, Term: models.TermFall, Capacity: 5, SeatsAvailable: ptr(6)}, 0, apperrors.ErrInvalidCapacity},
		{"unknown term", SectionInput{CourseID: course, Year: 2026, Term: models.Term("WINTER"), Capacity: 5}, 0, apperrors.ErrValidationFailed},
		{"unknown course", SectionInput{CourseID: 999, Year: 2026, Term: models.TermFall, Capacity: 5}, 0, apperrors.ErrCourseNotFound},
		{"unknown professor", SectionInput{CourseID: course, Year: 2026, Term: models.TermFall, ProfessorID: ptr(int64(8)), Capacity: 5}, 0, apperrors.ErrProfessorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section, err := f.sections.CreateSection(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, section.ID)
			assert.Equal(t, tt.seats, section.SeatsAvailable)
		})
	}
}

func TestSectionService_UpdateCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.section(nil, 10)
	for _, student := range []int64{1, 2, 3} {
		f.store.AddStudent(student)
		_, err := f.enrollments.Enroll(ctx, student, id)
		require.NoError(t, err)
	}

	_, err := f.sections.UpdateCapacity(ctx, id, 2)
	assert.ErrorIs(t, err, apperrors.ErrBelowSeatsTaken)

	section, err := f.sections.UpdateCapacity(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, section.SeatsAvailable)

	section, err = f.sections.UpdateCapacity(ctx, id, 25)
	require.NoError(t, err)
	assert.Equal(t, 22, section.SeatsAvailable)
	assert.Equal(t, 3, section.SeatsTaken())

	_, err = f.sections.UpdateCapacity(ctx, id, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCapacity)
}

func TestSectionService_AssignProfessor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	busy, free := int64(7), int64(8)
	f.store.AddProfessor(busy)
	f.store.AddProfessor(free)
	taught := f.section(&busy, 10)
	f.slot(taught, models.Tuesday, hm(10, 0), hm(12, 0), nil)

	open := f.section(nil, 10)
	f.slot(open, models.Tuesday, hm(11, 0), hm(13, 0), nil)

	_, err := f.sections.AssignProfessor(ctx, open, &busy)
	assert.ErrorIs(t, err, apperrors.ErrProfessorConflict)

	section, err := f.sections.AssignProfessor(ctx, open, &free)
	require.NoError(t, err)
	assert.Equal(t, free, *section.ProfessorID)

	// Reassigning the same professor compares against the section's own slots only.
	_, err = f.sections.AssignProfessor(ctx, open, &free)
	assert.NoError(t, err)

	section, err = f.sections.AssignProfessor(ctx, open, nil)
	require.NoError(t, err)
	assert.Nil(t, section.ProfessorID)

	_, err = f.sections.AssignProfessor(ctx, open, ptr(int64(99)))
	assert.ErrorIs(t, err, apperrors.ErrProfessorNotFound)
}

func TestSectionService_DeleteSection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	id := f.section(nil, 10)
	slot := f.slot(id, models.Monday, hm(8, 0), hm(9, 0), nil)
	enrollment, err := f.enrollments.Enroll(ctx, 1, id)
	require.NoError(t, err)

	assert.ErrorIs(t, f.sections.DeleteSection(ctx, id), apperrors.ErrInUse)

	_, err = f.enrollments.Withdraw(ctx, enrollment.ID)
	require.NoError(t, err)
	require.NoError(t, f.sections.DeleteSection(ctx, id))

	_, err = f.sections.GetSection(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)
	stored, err := f.store.FindSlotByID(ctx, slot)
	require.NoError(t, err)
	assert.False(t, stored.IsActive(), "slots go with their section")

	_, err = f.enrollments.Enroll(ctx, 1, id)
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)
}

func TestSectionService_AssignProfessorChecksOwnSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	prof := int64(7)
	f.store.AddProfessor(prof)

	// Overlapping slots can exist while nobody teaches or attends the section.
	section := f.section(nil, 10)
	f.slot(section, models.Monday, hm(8, 0), hm(10, 0), nil)
	f.slot(section, models.Monday, hm(9, 0), hm(11, 0), nil)

	_, err := f.sections.AssignProfessor(ctx, section, &prof)
	assert.ErrorIs(t, err, apperrors.ErrProfessorConflict)

	tidy := f.section(nil, 10)
	f.slot(tidy, models.Monday, hm(8, 0), hm(10, 0), nil)
	f.slot(tidy, models.Monday, hm(10, 0), hm(12, 0), nil)
	_, err = f.sections.AssignProfessor(ctx, tidy, &prof)
	assert.NoError(t, err)
}
