package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

func slot(id, section int64, day models.DayOfWeek, start, end string) models.ScheduleSlot {
	s, _ := models.ParseTimeOfDay(start)
	e, _ := models.ParseTimeOfDay(end)
	return models.ScheduleSlot{ID: id, SectionID: section, Day: day, Start: s, End: e, Status: models.StatusActive}
}

func TestFindOverlaps(t *testing.T) {
	existing := []models.ScheduleSlot{
		slot(3, 1, models.Monday, "11:00", "12:00"),
		slot(1, 1, models.Monday, "08:00", "10:00"),
		slot(2, 2, models.Monday, "10:00", "11:00"),
		slot(4, 2, models.Tuesday, "08:00", "18:00"),
	}
	deleted := slot(5, 3, models.Monday, "09:00", "12:00")
	deleted.Status = models.StatusDeleted
	existing = append(existing, deleted)

	candidate := models.Interval{Day: models.Monday, Start: models.NewTimeOfDay(9, 0), End: models.NewTimeOfDay(11, 30)}

	got := FindOverlaps(candidate, existing, 0)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID}, "ordered by start")

	assert.Len(t, FindOverlaps(candidate, existing, 2), 2)

	backToBack := models.Interval{Day: models.Monday, Start: models.NewTimeOfDay(12, 0), End: models.NewTimeOfDay(13, 0)}
	assert.Empty(t, FindOverlaps(backToBack, existing, 0))
}

func TestExcludeSections(t *testing.T) {
	slots := []models.ScheduleSlot{slot(1, 1, models.Monday, "08:00", "09:00"), slot(2, 2, models.Monday, "08:00", "09:00")}
	assert.Len(t, ExcludeSections(slots), 2)
	kept := ExcludeSections(slots, 1)
	require.Len(t, kept, 1)
	assert.Equal(t, int64(2), kept[0].ID)
}

func TestNewConflictError(t *testing.T) {
	err := NewConflictError(apperrors.ErrRoomConflict, models.RoomScope(9), []models.ScheduleSlot{slot(1, 4, models.Friday, "08:00", "09:30")})
	assert.ErrorIs(t, err, apperrors.ErrRoomConflict)
	require.Len(t, err.Conflicts, 1)
	assert.Equal(t, apperrors.SlotConflict{
		SlotID: 1, SectionID: 4, Day: 5, Start: "08:00", End: "09:30", Scope: "ROOM", ScopeID: 9,
	}, err.Conflicts[0])
	assert.Equal(t, "ROOM_CONFLICT", apperrors.Code(err))
}
