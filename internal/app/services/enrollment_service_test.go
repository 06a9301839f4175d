package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

func seats(t *testing.T, f *fixture, sectionID int64) int {
	t.Helper()
	section, err := f.sections.GetSection(context.Background(), sectionID)
	require.NoError(t, err)
	return section.SeatsAvailable
}

func TestEnrollmentService_Enroll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	id := f.section(nil, 2)

	enrollment, err := f.enrollments.Enroll(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentEnrolled, enrollment.Status)
	assert.Equal(t, 1, seats(t, f, id))

	_, err = f.enrollments.Enroll(ctx, 1, id)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)
	assert.Equal(t, 1, seats(t, f, id), "a rejected enrollment keeps the ledger")

	_, err = f.enrollments.Enroll(ctx, 404, id)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = f.enrollments.Enroll(ctx, 1, 999)
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)
}

func TestEnrollmentService_NoCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	f.store.AddStudent(2)
	id := f.section(nil, 1)

	_, err := f.enrollments.Enroll(ctx, 1, id)
	require.NoError(t, err)
	_, err = f.enrollments.Enroll(ctx, 2, id)
	assert.ErrorIs(t, err, apperrors.ErrNoCapacity)
	assert.Equal(t, 0, seats(t, f, id))
}

func TestEnrollmentService_ConcurrentLastSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const contenders = 8
	for i := int64(1); i <= contenders; i++ {
		f.store.AddStudent(i)
	}
	id := f.section(nil, 1)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.enrollments.Enroll(ctx, int64(i+1), id)
		}(i)
	}
	wg.Wait()

	var admitted, full int
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, apperrors.ErrNoCapacity):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, contenders-1, full)
	assert.Equal(t, 0, seats(t, f, id))
}

func TestEnrollmentService_ScheduleConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	x := f.section(nil, 10)
	y := f.section(nil, 10)
	z := f.section(nil, 10)
	f.slot(x, models.Monday, hm(8, 0), hm(10, 0), nil)
	f.slot(y, models.Monday, hm(9, 0), hm(11, 0), nil)
	f.slot(z, models.Monday, hm(10, 0), hm(11, 0), nil)

	_, err := f.enrollments.Enroll(ctx, 1, x)
	require.NoError(t, err)

	_, err = f.enrollments.Enroll(ctx, 1, y)
	require.ErrorIs(t, err, apperrors.ErrScheduleConflict)
	var conflict *apperrors.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, x, conflict.Conflicts[0].SectionID)
	assert.Equal(t, 10, seats(t, f, y))

	_, err = f.enrollments.Enroll(ctx, 1, z)
	assert.NoError(t, err, "back-to-back sections fit")

	schedule, err := f.enrollments.ListStudentSchedule(ctx, 1)
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, x, schedule[0].SectionID)
	assert.Equal(t, z, schedule[1].SectionID)
}

func TestEnrollmentService_WithdrawAndCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	f.store.AddStudent(2)
	id := f.section(nil, 5)

	first, err := f.enrollments.Enroll(ctx, 1, id)
	require.NoError(t, err)
	second, err := f.enrollments.Enroll(ctx, 2, id)
	require.NoError(t, err)
	assert.Equal(t, 3, seats(t, f, id))

	withdrawn, err := f.enrollments.Withdraw(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentWithdrawn, withdrawn.Status)
	assert.Equal(t, 4, seats(t, f, id))

	cancelled, err := f.enrollments.Cancel(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCancelled, cancelled.Status)
	assert.Equal(t, 5, seats(t, f, id))

	_, err = f.enrollments.Withdraw(ctx, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	_, err = f.enrollments.Cancel(ctx, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 5, seats(t, f, id), "a second release must not free another seat")

	_, err = f.enrollments.Withdraw(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)

	again, err := f.enrollments.Enroll(ctx, 1, id)
	require.NoError(t, err, "withdrawn students may enroll again")
	assert.NotEqual(t, first.ID, again.ID)
}

func TestEnrollmentService_ConcurrentWithdrawReleasesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	id := f.section(nil, 3)
	enrollment, err := f.enrollments.Enroll(ctx, 1, id)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.enrollments.Withdraw(ctx, enrollment.ID)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 3, seats(t, f, id))
}

func TestEnrollmentService_Transfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	from := f.section(nil, 5)
	to := f.section(nil, 5)
	other := f.section(nil, 5)
	// Overlaps only the section being left.
	f.slot(from, models.Monday, hm(8, 0), hm(10, 0), nil)
	f.slot(to, models.Monday, hm(9, 0), hm(11, 0), nil)

	old, err := f.enrollments.Enroll(ctx, 1, from)
	require.NoError(t, err)

	moved, err := f.enrollments.Transfer(ctx, old.ID, to)
	require.NoError(t, err)
	assert.Equal(t, to, moved.SectionID)
	assert.Equal(t, models.EnrollmentEnrolled, moved.Status)

	previous, err := f.enrollments.GetEnrollment(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentWithdrawn, previous.Status)
	assert.Equal(t, 5, seats(t, f, from))
	assert.Equal(t, 4, seats(t, f, to))

	_, err = f.enrollments.Transfer(ctx, old.ID, other)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 5, seats(t, f, other))
}

func TestEnrollmentService_TransferFailureKeepsOldSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	f.store.AddStudent(2)
	from := f.section(nil, 5)
	full := f.section(nil, 1)
	busy := f.section(nil, 5)
	clash := f.section(nil, 5)
	f.slot(busy, models.Friday, hm(13, 0), hm(15, 0), nil)
	f.slot(clash, models.Friday, hm(14, 0), hm(16, 0), nil)

	_, err := f.enrollments.Enroll(ctx, 2, full)
	require.NoError(t, err)
	old, err := f.enrollments.Enroll(ctx, 1, from)
	require.NoError(t, err)
	_, err = f.enrollments.Enroll(ctx, 1, busy)
	require.NoError(t, err)

	tests := []struct {
		name    string
		target  int64
		wantErr error
	}{
		{"target full", full, apperrors.ErrNoCapacity},
		{"target clashes with another enrollment", clash, apperrors.ErrScheduleConflict},
		{"target already enrolled", busy, apperrors.ErrDuplicateEnrollment},
		{"same section", from, apperrors.ErrDuplicateEnrollment},
		{"target missing", 999, apperrors.ErrSectionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.enrollments.Transfer(ctx, old.ID, tt.target)
			require.ErrorIs(t, err, tt.wantErr)

			kept, err := f.enrollments.GetEnrollment(ctx, old.ID)
			require.NoError(t, err)
			assert.Equal(t, models.EnrollmentEnrolled, kept.Status)
			assert.Equal(t, 4, seats(t, f, from))
		})
	}
	assert.Equal(t, 0, seats(t, f, full))
	assert.Equal(t, 5, seats(t, f, clash))
}

func TestEnrollmentService_ListStudentSchedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)

	schedule, err := f.enrollments.ListStudentSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, schedule)

	_, err = f.enrollments.ListStudentSchedule(ctx, 2)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestEnrollmentService_SectionWithOverlappingSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := int64(42)
	f.store.AddStudent(student)
	section := f.section(nil, 10)
	f.slot(section, models.Wednesday, hm(8, 0), hm(10, 0), nil)
	f.slot(section, models.Wednesday, hm(9, 0), hm(11, 0), nil)

	_, err := f.enrollments.Enroll(ctx, student, section)
	assert.ErrorIs(t, err, apperrors.ErrScheduleConflict)
	assert.Equal(t, 10, seats(t, f, section))
}
