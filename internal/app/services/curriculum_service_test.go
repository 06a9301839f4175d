package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

func TestCurriculumService_CreateCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cs := f.store.AddCurriculum(models.Curriculum{Code: "CS", Name: "Computer Science", CycleCount: 4})
	other := f.store.AddCurriculum(models.Curriculum{Code: "EE", Name: "Electrical", CycleCount: 4})
	foreign := f.store.AddCourse(models.Course{CurriculumID: other, Code: "EE101", Name: "Circuits", Cycle: 1})

	intro, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "CS101", Name: "Intro", Cycle: 1, Credits: 4})
	require.NoError(t, err)
	assert.NotZero(t, intro.ID)

	tests := []struct {
		name    string
		input   CourseInput
		wantErr error
	}{
		{"valid prerequisite", CourseInput{Code: "CS201", Name: "Data Structures", Cycle: 2, PrerequisiteID: &intro.ID}, nil},
		{"same cycle", CourseInput{Code: "CS102", Name: "Same", Cycle: 1, PrerequisiteID: &intro.ID}, apperrors.ErrCycleOrderViolation},
		{"other curriculum", CourseInput{Code: "CS202", Name: "Mixed", Cycle: 2, PrerequisiteID: &foreign}, apperrors.ErrInvalidRelation},
		{"missing prerequisite", CourseInput{Code: "CS203", Name: "Ghost", Cycle: 2, PrerequisiteID: ptr(int64(999))}, apperrors.ErrNotFound},
		{"cycle beyond curriculum", CourseInput{Code: "CS901", Name: "Late", Cycle: 5}, apperrors.ErrValidationFailed},
		{"missing code", CourseInput{Name: "Nameless", Cycle: 1}, apperrors.ErrValidationFailed},
		{"duplicate code", CourseInput{Code: "CS101", Name: "Again", Cycle: 1}, apperrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.curriculum.CreateCourse(ctx, cs, tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = f.curriculum.CreateCourse(ctx, 12345, CourseInput{Code: "X", Name: "X", Cycle: 1})
	assert.ErrorIs(t, err, apperrors.ErrCurriculumNotFound)
}

func TestCurriculumService_CircularDependency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cs := f.store.AddCurriculum(models.Curriculum{Code: "CS", Name: "Computer Science", CycleCount: 4})

	a, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "A", Name: "A", Cycle: 1})
	require.NoError(t, err)
	b, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "B", Name: "B", Cycle: 2, PrerequisiteID: &a.ID})
	require.NoError(t, err)

	_, err = f.curriculum.UpdateCourse(ctx, a.ID, CourseInput{Code: "A", Name: "A", Cycle: 1, PrerequisiteID: &b.ID})
	assert.ErrorIs(t, err, apperrors.ErrCircularDependency)

	err = f.curriculum.ValidatePrerequisite(ctx, a.ID, b.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrCircularDependency)

	stored, err := f.curriculum.GetCourse(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PrerequisiteID, "failed update must not be applied")
}

func TestCurriculumService_UpdateCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cs := f.store.AddCurriculum(models.Curriculum{Code: "CS", Name: "Computer Science", CycleCount: 6})

	a, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "A", Name: "A", Cycle: 1})
	require.NoError(t, err)
	b, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "B", Name: "B", Cycle: 3, PrerequisiteID: &a.ID})
	require.NoError(t, err)

	t.Run("self reference", func(t *testing.T) {
		_, err := f.curriculum.UpdateCourse(ctx, a.ID, CourseInput{Code: "A", Name: "A", Cycle: 1, PrerequisiteID: &a.ID})
		assert.ErrorIs(t, err, apperrors.ErrSelfReference)
	})

	t.Run("raising a prerequisite above its dependent", func(t *testing.T) {
		_, err := f.curriculum.UpdateCourse(ctx, a.ID, CourseInput{Code: "A", Name: "A", Cycle: 3})
		assert.ErrorIs(t, err, apperrors.ErrCycleOrderViolation)
	})

	t.Run("raising within bounds", func(t *testing.T) {
		updated, err := f.curriculum.UpdateCourse(ctx, a.ID, CourseInput{Code: "A", Name: "A renamed", Cycle: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Cycle)
		assert.Equal(t, "A renamed", updated.Name)
	})

	t.Run("dropping the prerequisite", func(t *testing.T) {
		updated, err := f.curriculum.UpdateCourse(ctx, b.ID, CourseInput{Code: "B", Name: "B", Cycle: 3})
		require.NoError(t, err)
		assert.Nil(t, updated.PrerequisiteID)
	})
}

func TestCurriculumService_CorruptChainTerminates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cs := f.store.AddCurriculum(models.Curriculum{Code: "CS", Name: "Computer Science", CycleCount: 5})

	// X and Y already require each other in storage.
	x := f.store.AddCourse(models.Course{ID: 100, CurriculumID: cs, Code: "X", Name: "X", Cycle: 1, PrerequisiteID: ptr(int64(101))})
	f.store.AddCourse(models.Course{ID: 101, CurriculumID: cs, Code: "Y", Name: "Y", Cycle: 2, PrerequisiteID: ptr(x)})

	_, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "Z", Name: "Z", Cycle: 3, PrerequisiteID: ptr(int64(101))})
	assert.ErrorIs(t, err, apperrors.ErrCircularDependency)
}

func TestCurriculumService_DeleteCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cs := f.store.AddCurriculum(models.Curriculum{Code: "CS", Name: "Computer Science", CycleCount: 4})

	a, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "A", Name: "A", Cycle: 1})
	require.NoError(t, err)
	b, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "B", Name: "B", Cycle: 2, PrerequisiteID: &a.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.curriculum.DeleteCourse(ctx, a.ID), apperrors.ErrInUse)

	require.NoError(t, f.curriculum.DeleteCourse(ctx, b.ID))
	require.NoError(t, f.curriculum.DeleteCourse(ctx, a.ID))

	_, err = f.curriculum.GetCourse(ctx, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.ErrorIs(t, f.curriculum.DeleteCourse(ctx, a.ID), apperrors.ErrCourseNotFound)
}

func TestCurriculumService_ValidatePrerequisiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cs := f.store.AddCurriculum(models.Curriculum{Code: "CS", Name: "Computer Science", CycleCount: 4})
	a, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "A", Name: "A", Cycle: 2})
	require.NoError(t, err)
	b, err := f.curriculum.CreateCourse(ctx, cs, CourseInput{Code: "B", Name: "B", Cycle: 2})
	require.NoError(t, err)

	first := f.curriculum.ValidatePrerequisite(ctx, b.ID, a.ID, 2)
	second := f.curriculum.ValidatePrerequisite(ctx, b.ID, a.ID, 2)
	assert.ErrorIs(t, first, apperrors.ErrCycleOrderViolation)
	assert.Equal(t, apperrors.Code(first), apperrors.Code(second))

	assert.NoError(t, f.curriculum.ValidatePrerequisite(ctx, b.ID, a.ID, 3))
	assert.ErrorIs(t, f.curriculum.ValidatePrerequisite(ctx, b.ID, b.ID, 3), apperrors.ErrSelfReference)
}
