package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/academics/internal/pkg/apperrors"
)

func TestEvaluationService_WeightBudget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	section := f.section(nil, 10)

	_, err := f.evaluation.CreateCriterion(ctx, section, "Midterm", 40)
	require.NoError(t, err)
	_, err = f.evaluation.CreateCriterion(ctx, section, "Final", 30)
	require.NoError(t, err)

	_, err = f.evaluation.CreateCriterion(ctx, section, "Project", 35)
	assert.ErrorIs(t, err, apperrors.ErrWeightExceeded)
	assert.ErrorIs(t, f.evaluation.ValidateWeight(ctx, section, 35, 0), apperrors.ErrWeightExceeded)

	project, err := f.evaluation.CreateCriterion(ctx, section, "Project", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, project.Weight)

	criteria, err := f.evaluation.ListCriteria(ctx, section)
	require.NoError(t, err)
	assert.Len(t, criteria, 3)

	_, err = f.evaluation.CreateCriterion(ctx, section, "Quiz", 1)
	assert.ErrorIs(t, err, apperrors.ErrWeightExceeded)
	_, err = f.evaluation.CreateCriterion(ctx, section, "Attendance", 0)
	assert.NoError(t, err, "a zero weight fits a full budget")
}

func TestEvaluationService_UpdateExcludesItself(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	section := f.section(nil, 10)
	midterm, err := f.evaluation.CreateCriterion(ctx, section, "Midterm", 60)
	require.NoError(t, err)
	_, err = f.evaluation.CreateCriterion(ctx, section, "Final", 40)
	require.NoError(t, err)

	updated, err := f.evaluation.UpdateCriterion(ctx, midterm.ID, " Midterm exam ", 60)
	require.NoError(t, err)
	assert.Equal(t, "Midterm exam", updated.Name)

	_, err = f.evaluation.UpdateCriterion(ctx, midterm.ID, "Midterm", 61)
	assert.ErrorIs(t, err, apperrors.ErrWeightExceeded)
	assert.NoError(t, f.evaluation.ValidateWeight(ctx, section, 60, midterm.ID))

	_, err = f.evaluation.UpdateCriterion(ctx, midterm.ID, "  ", 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestEvaluationService_InvalidWeights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	section := f.section(nil, 10)

	for _, weight := range []int{-1, 101} {
		_, err := f.evaluation.CreateCriterion(ctx, section, "Bad", weight)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "weight %d", weight)
	}
	_, err := f.evaluation.CreateCriterion(ctx, 999, "Orphan", 10)
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)
}

func TestEvaluationService_DeleteCriterion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	section := f.section(nil, 10)
	graded, err := f.evaluation.CreateCriterion(ctx, section, "Midterm", 50)
	require.NoError(t, err)
	ungraded, err := f.evaluation.CreateCriterion(ctx, section, "Final", 50)
	require.NoError(t, err)
	f.store.AddGrade(graded.ID)

	assert.ErrorIs(t, f.evaluation.DeleteCriterion(ctx, graded.ID), apperrors.ErrInUse)
	require.NoError(t, f.evaluation.DeleteCriterion(ctx, ungraded.ID))
	assert.ErrorIs(t, f.evaluation.DeleteCriterion(ctx, ungraded.ID), apperrors.ErrCriterionNotFound)

	// The freed weight is available again.
	_, err = f.evaluation.CreateCriterion(ctx, section, "Project", 50)
	assert.NoError(t, err)
}
