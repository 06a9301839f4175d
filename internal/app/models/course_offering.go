package models

import (
	"time"

	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// OfferedSection is a course offered for an academic period. It owns the seat
// ledger: Capacity and SeatsAvailable are only changed through the ledger methods.
type OfferedSection struct {
	ID             int64        `json:"id" db:"id"`
	CourseID       int64        `json:"courseId" db:"course_id"`
	Year           int          `json:"year" db:"year"`
	Term           Term         `json:"term" db:"term"`
	ProfessorID    *int64       `json:"professorId,omitempty" db:"professor_id"`
	Capacity       int          `json:"capacity" db:"capacity"`
	SeatsAvailable int          `json:"seatsAvailable" db:"seats_available"`
	Status         RecordStatus `json:"status" db:"status"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

// NewOfferedSection builds a section with its ledger initialised. seats overrides
// the initial availability and must lie in [0, capacity]; nil means capacity.
func NewOfferedSection(courseID int64, year int, term Term, professorID *int64, capacity int, seats *int) (*OfferedSection, error) {
	if capacity < 1 {
		return nil, apperrors.New(apperrors.ErrInvalidCapacity, "capacity must be at least 1, got %d", capacity)
	}
	available := capacity
	if seats != nil {
		if *seats < 0 || *seats > capacity {
			return nil, apperrors.New(apperrors.ErrInvalidCapacity, "seats available %d outside [0, %d]", *seats, capacity)
		}
		available = *seats
	}
	return &OfferedSection{
		CourseID:       courseID,
		Year:           year,
		Term:           term,
		ProfessorID:    professorID,
		Capacity:       capacity,
		SeatsAvailable: available,
		Status:         StatusActive,
	}, nil
}

// IsActive reports whether the section has not been soft-deleted.
func (s *OfferedSection) IsActive() bool {
	return s.Status == StatusActive
}

// SeatsTaken is the number of reserved seats.
func (s *OfferedSection) SeatsTaken() int {
	return s.Capacity - s.SeatsAvailable
}

// TryReserveSeat takes one seat. It is the only path that decrements SeatsAvailable.
func (s *OfferedSection) TryReserveSeat() error {
	if s.SeatsAvailable <= 0 {
		return apperrors.New(apperrors.ErrNoCapacity, "section %d is full (capacity %d)", s.ID, s.Capacity)
	}
	s.SeatsAvailable--
	return nil
}

// ReleaseSeat returns one seat, saturating at Capacity. It reports false when
// the release was absorbed by saturation, which means reserve/release pairing
// was broken somewhere upstream.
func (s *OfferedSection) ReleaseSeat() bool {
	if s.SeatsAvailable >= s.Capacity {
		s.SeatsAvailable = s.Capacity
		return false
	}
	s.SeatsAvailable++
	return true
}

// SetCapacity changes the capacity while keeping the number of taken seats.
// Students are never evicted: shrinking below the seats taken is rejected.
func (s *OfferedSection) SetCapacity(newCapacity int) error {
	if newCapacity < 1 {
		return apperrors.New(apperrors.ErrInvalidCapacity, "capacity must be at least 1, got %d", newCapacity)
	}
	taken := s.SeatsTaken()
	if taken > newCapacity {
		return apperrors.New(apperrors.ErrBelowSeatsTaken, "%d seats taken, requested capacity %d", taken, newCapacity)
	}
	s.Capacity = newCapacity
	s.SeatsAvailable = newCapacity - taken
	return nil
}
