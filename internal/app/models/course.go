package models

import "time"

// Curriculum is a study plan grouping courses by cycle.
type Curriculum struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
	// CycleCount is the number of cycles in the plan. It bounds the depth of any
	// prerequisite chain, since each link must lower the cycle by at least one.
	CycleCount int          `json:"cycleCount" db:"cycle_count"`
	Status     RecordStatus `json:"status" db:"status"`
}

// Course is a curriculum course with an optional single prerequisite.
type Course struct {
	ID             int64        `json:"id" db:"id"`
	CurriculumID   int64        `json:"curriculumId" db:"curriculum_id"`
	Code           string       `json:"code" db:"code"`
	Name           string       `json:"name" db:"name"`
	Cycle          int          `json:"cycle" db:"cycle"`
	Credits        int          `json:"credits" db:"credits"`
	PrerequisiteID *int64       `json:"prerequisiteId,omitempty" db:"prerequisite_id"`
	Status         RecordStatus `json:"status" db:"status"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the course has not been soft-deleted.
func (c *Course) IsActive() bool {
	return c.Status == StatusActive
}
