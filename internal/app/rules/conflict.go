package rules

import (
	"sort"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// FindOverlaps returns the active slots of existing that fall on the
// candidate's day and overlap it. Slot excludeSlotID (zero for none) is skipped
// so an edit is not compared against its own stored version. The result is
// ordered by start time then id.
func FindOverlaps(candidate models.Interval, existing []models.ScheduleSlot, excludeSlotID int64) []models.ScheduleSlot {
	var overlaps []models.ScheduleSlot
	for _, slot := range existing {
		if !slot.IsActive() {
			continue
		}
		if excludeSlotID != 0 && slot.ID == excludeSlotID {
			continue
		}
		if candidate.Overlaps(slot.Interval()) {
			overlaps = append(overlaps, slot)
		}
	}
	sort.Slice(overlaps, func(i, j int) bool {
		if overlaps[i].Start != overlaps[j].Start {
			return overlaps[i].Start < overlaps[j].Start
		}
		return overlaps[i].ID < overlaps[j].ID
	})
	return overlaps
}

// ExcludeSections drops the slots belonging to any of sectionIDs.
func ExcludeSections(slots []models.ScheduleSlot, sectionIDs ...int64) []models.ScheduleSlot {
	if len(sectionIDs) == 0 {
		return slots
	}
	skip := make(map[int64]struct{}, len(sectionIDs))
	for _, id := range sectionIDs {
		skip[id] = struct{}{}
	}
	kept := make([]models.ScheduleSlot, 0, len(slots))
	for _, s := range slots {
		if _, ok := skip[s.SectionID]; !ok {
			kept = append(kept, s)
		}
	}
	return kept
}

// NewConflictError builds the typed error for overlapping slots found in scope.
// kind is one of the schedule conflict sentinels of apperrors.
func NewConflictError(kind error, scope models.Scope, slots []models.ScheduleSlot) *apperrors.ConflictError {
	conflicts := make([]apperrors.SlotConflict, 0, len(slots))
	for _, s := range slots {
		conflicts = append(conflicts, apperrors.SlotConflict{
			SlotID:    s.ID,
			SectionID: s.SectionID,
			Day:       int(s.Day),
			Start:     s.Start.String(),
			End:       s.End.String(),
			Scope:     string(scope.Type),
			ScopeID:   scope.ID,
		})
	}
	return &apperrors.ConflictError{Kind: kind, Conflicts: conflicts}
}
