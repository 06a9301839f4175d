package apperrors

import (
	"errors"
	"fmt"
)

// Resource errors
var (
	ErrNotFound = errors.New("resource not found")

	ErrCurriculumNotFound = fmt.Errorf("%w: curriculum", ErrNotFound)
	ErrCourseNotFound     = fmt.Errorf("%w: course", ErrNotFound)
	ErrSectionNotFound    = fmt.Errorf("%w: section", ErrNotFound)
	ErrSlotNotFound       = fmt.Errorf("%w: schedule slot", ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("%w: enrollment", ErrNotFound)
	ErrCriterionNotFound  = fmt.Errorf("%w: evaluation criterion", ErrNotFound)
	ErrStudentNotFound    = fmt.Errorf("%w: student", ErrNotFound)
	ErrProfessorNotFound  = fmt.Errorf("%w: professor", ErrNotFound)
	ErrRoomNotFound       = fmt.Errorf("%w: room", ErrNotFound)

	// ErrInUse blocks a soft delete while other records still reference the entity.
	ErrInUse = errors.New("resource is still referenced")
)

// Curriculum graph errors
var (
	ErrInvalidRelation     = errors.New("prerequisite belongs to a different curriculum")
	ErrSelfReference       = errors.New("course cannot be its own prerequisite")
	ErrCycleOrderViolation = errors.New("prerequisite cycle must be lower than the course cycle")
	ErrCircularDependency  = errors.New("circular prerequisite dependency")
)

// Seat ledger errors
var (
	ErrNoCapacity      = errors.New("no seats available")
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrBelowSeatsTaken = errors.New("capacity is below the number of seats taken")
)

// Scheduling errors
var (
	ErrInvalidInterval   = errors.New("invalid time interval")
	ErrProfessorConflict = errors.New("professor schedule conflict")
	ErrRoomConflict      = errors.New("room schedule conflict")
	ErrStudentConflict   = errors.New("enrolled student schedule conflict")
)

// Enrollment errors
var (
	ErrDuplicateEnrollment = errors.New("student is already enrolled in this section")
	ErrScheduleConflict    = errors.New("section schedule conflicts with the student's enrollments")
	ErrInvalidTransition   = errors.New("enrollment is not in a state that allows this operation")
)

// Evaluation errors
var (
	ErrWeightExceeded = errors.New("evaluation weights exceed 100")
)

// Generic errors
var (
	ErrValidationFailed = errors.New("validation failed")
	// ErrConcurrentUpdate is returned when the store aborts a transaction because of
	// lock contention (serialization failure or deadlock). Callers may retry.
	ErrConcurrentUpdate = errors.New("concurrent update, retry the operation")
	ErrPermissionDenied = errors.New("permission denied")
)

// codes maps each sentinel to the stable code exposed to API clients.
var codes = []struct {
	err  error
	code string
}{
	{ErrInUse, "IN_USE"},
	{ErrInvalidRelation, "INVALID_RELATION"},
	{ErrSelfReference, "SELF_REFERENCE"},
	{ErrCycleOrderViolation, "CYCLE_ORDER_VIOLATION"},
	{ErrCircularDependency, "CIRCULAR_DEPENDENCY"},
	{ErrNoCapacity, "NO_CAPACITY"},
	{ErrInvalidCapacity, "INVALID_CAPACITY"},
	{ErrBelowSeatsTaken, "BELOW_SEATS_TAKEN"},
	{ErrInvalidInterval, "INVALID_INTERVAL"},
	{ErrProfessorConflict, "PROFESSOR_CONFLICT"},
	{ErrRoomConflict, "ROOM_CONFLICT"},
	{ErrStudentConflict, "STUDENT_CONFLICT"},
	{ErrDuplicateEnrollment, "DUPLICATE_ENROLLMENT"},
	{ErrScheduleConflict, "SCHEDULE_CONFLICT"},
	{ErrInvalidTransition, "INVALID_TRANSITION"},
	{ErrWeightExceeded, "WEIGHT_EXCEEDED"},
	{ErrValidationFailed, "VALIDATION_FAILED"},
	{ErrConcurrentUpdate, "CONCURRENT_UPDATE"},
	{ErrPermissionDenied, "PERMISSION_DENIED"},
	// Generic not found last so entity-specific wrappers still resolve to it.
	{ErrNotFound, "NOT_FOUND"},
}

// Code returns the stable business code for err, or "INTERNAL" when err is not
// part of the taxonomy.
func Code(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Code != "" {
		return ce.Code
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}

// IsBusinessRule reports whether err is an expected, recoverable rule failure
// rather than an infrastructure fault.
func IsBusinessRule(err error) bool {
	return Code(err) != "INTERNAL"
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// New wraps a taxonomy sentinel with a formatted message.
func New(kind error, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Err:     kind,
		Message: fmt.Sprintf("%s: %s", kind.Error(), fmt.Sprintf(format, args...)),
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
