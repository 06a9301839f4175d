package dto

import "github.com/unisphere/academics/internal/app/models"

// CreateSectionRequest represents section creation data
type CreateSectionRequest struct {
	CourseID       int64       `json:"courseId" binding:"required,gt=0"`
	Year           int         `json:"year" binding:"required,gte=2000,lte=2100"`
	Term           models.Term `json:"term" binding:"required"`
	ProfessorID    *int64      `json:"professorId" binding:"omitempty,gt=0"`
	Capacity       int         `json:"capacity"`
	SeatsAvailable *int        `json:"seatsAvailable"`
}

// UpdateCapacityRequest resizes a section.
type UpdateCapacityRequest struct {
	Capacity int `json:"capacity"`
}

// AssignProfessorRequest sets the section professor; null clears it.
type AssignProfessorRequest struct {
	ProfessorID *int64 `json:"professorId" binding:"omitempty,gt=0"`
}

// SlotRequest describes a weekly meeting. Interval bounds are checked by the
// schedule service so that every malformed interval reports INVALID_INTERVAL.
type SlotRequest struct {
	Day    models.DayOfWeek `json:"dayOfWeek"`
	Start  models.TimeOfDay `json:"start"`
	End    models.TimeOfDay `json:"end"`
	RoomID *int64           `json:"roomId" binding:"omitempty,gt=0"`
}

// ConflictQuery asks which stored slots of one calendar overlap an interval.
// Start and End use the "HH:MM" format.
type ConflictQuery struct {
	Scope         models.ScopeType `form:"scope" binding:"required,oneof=PROFESSOR ROOM STUDENT"`
	ScopeID       int64            `form:"scopeId" binding:"required,gt=0"`
	Day           models.DayOfWeek `form:"day"`
	Start         string           `form:"start" binding:"required"`
	End           string           `form:"end" binding:"required"`
	ExcludeSlotID int64            `form:"excludeSlotId" binding:"omitempty,gt=0"`
}

// CriterionRequest is the body of criterion create and update calls.
type CriterionRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Weight int    `json:"weight"`
}
