package models

import "time"

// ScheduleSlot is a recurring weekly meeting of a section, optionally in a room.
type ScheduleSlot struct {
	ID        int64        `json:"id" db:"id"`
	SectionID int64        `json:"sectionId" db:"section_id"`
	Day       DayOfWeek    `json:"dayOfWeek" db:"day_of_week"`
	Start     TimeOfDay    `json:"start" db:"start_time"`
	End       TimeOfDay    `json:"end" db:"end_time"`
	RoomID    *int64       `json:"roomId,omitempty" db:"room_id"`
	Status    RecordStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// Interval returns the slot's weekly interval.
func (s *ScheduleSlot) Interval() Interval {
	return Interval{Day: s.Day, Start: s.Start, End: s.End}
}

// IsActive reports whether the slot has not been soft-deleted.
func (s *ScheduleSlot) IsActive() bool {
	return s.Status == StatusActive
}

// ScopeType names the calendar a slot is checked against.
type ScopeType string

const (
	ScopeProfessor  ScopeType = "PROFESSOR"
	ScopeRoom       ScopeType = "ROOM"
	ScopeStudent    ScopeType = "STUDENT"
	// ScopeCurriculum has no calendar. It only serializes prerequisite graph edits.
	ScopeCurriculum ScopeType = "CURRICULUM"
)

// Scope is a calendar owner: a professor, a room or a student.
type Scope struct {
	Type ScopeType
	ID   int64
}

// ProfessorScope returns the calendar of professor id.
func ProfessorScope(id int64) Scope { return Scope{Type: ScopeProfessor, ID: id} }

// RoomScope returns the calendar of room id.
func RoomScope(id int64) Scope { return Scope{Type: ScopeRoom, ID: id} }

// StudentScope returns the calendar of student id.
func StudentScope(id int64) Scope { return Scope{Type: ScopeStudent, ID: id} }

// CurriculumScope returns the lock scope of curriculum id.
func CurriculumScope(id int64) Scope { return Scope{Type: ScopeCurriculum, ID: id} }
