package apperrors

import (
	"fmt"
	"strings"
)

// SlotConflict identifies one existing slot that collides with a candidate interval.
type SlotConflict struct {
	SlotID    int64  `json:"slotId"`
	SectionID int64  `json:"sectionId"`
	Day       int    `json:"dayOfWeek"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Scope     string `json:"scope"`
	ScopeID   int64  `json:"scopeId"`
}

// ConflictError is returned by schedule and enrollment checks. Kind is one of
// ErrProfessorConflict, ErrRoomConflict, ErrStudentConflict or ErrScheduleConflict.
type ConflictError struct {
	Kind      error
	Conflicts []SlotConflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("slot %d (section %d, day %d %s-%s)", c.SlotID, c.SectionID, c.Day, c.Start, c.End))
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), strings.Join(parts, ", "))
}

func (e *ConflictError) Unwrap() error {
	return e.Kind
}
