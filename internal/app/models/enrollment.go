package models

import "time"

// EnrollmentStatus is the lifecycle of an enrollment. Grade outcomes recorded
// after the term closes are owned by the grading module.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "ENROLLED"
	EnrollmentWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment binds a student to a section.
type Enrollment struct {
	ID        int64            `json:"id" db:"id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	SectionID int64            `json:"sectionId" db:"section_id"`
	Status    EnrollmentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the enrollment currently holds a seat.
func (e *Enrollment) IsActive() bool {
	return e.Status == EnrollmentEnrolled
}

// EvaluationCriterion is a weighted grading component of a section.
type EvaluationCriterion struct {
	ID        int64        `json:"id" db:"id"`
	SectionID int64        `json:"sectionId" db:"section_id"`
	Name      string       `json:"name" db:"name"`
	Weight    int          `json:"weight" db:"weight"`
	Status    RecordStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the criterion has not been soft-deleted.
func (c *EvaluationCriterion) IsActive() bool {
	return c.Status == StatusActive
}
