// Package rules holds the side-effect free integrity checks of the academic
// records engine: prerequisite graph validation, schedule overlap detection and
// evaluation weight bounds. Every function here reads its inputs and returns a
// typed error from apperrors; persistence and locking belong to the services.
package rules

import (
	"context"
	"errors"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// CourseLookup resolves a course by id. It returns an error wrapping
// apperrors.ErrNotFound when the course does not exist.
type CourseLookup func(ctx context.Context, id int64) (*models.Course, error)

// PrerequisiteCheck describes a proposed prerequisite link.
type PrerequisiteCheck struct {
	// CourseID is the dependent course, zero when the course is being created.
	CourseID       int64
	CurriculumID   int64
	PrerequisiteID int64
	// Cycle is the dependent course's proposed cycle number.
	Cycle int
	// MaxDepth bounds the chain walk. Chains longer than this are treated as
	// circular, which guarantees termination over corrupt stored data.
	MaxDepth int
}

// ValidatePrerequisite checks that PrerequisiteID may become the prerequisite of
// the course described by check. Checks run in this order: SelfReference,
// NotFound, InvalidRelation, CircularDependency, CycleOrderViolation.
func ValidatePrerequisite(ctx context.Context, check PrerequisiteCheck, lookup CourseLookup) error {
	if check.CourseID != 0 && check.CourseID == check.PrerequisiteID {
		return apperrors.New(apperrors.ErrSelfReference, "course %d", check.CourseID)
	}

	prereq, err := lookup(ctx, check.PrerequisiteID)
	if err != nil {
		return err
	}
	if !prereq.IsActive() {
		return apperrors.ErrCourseNotFound
	}
	if prereq.CurriculumID != check.CurriculumID {
		return apperrors.New(apperrors.ErrInvalidRelation,
			"course %d belongs to curriculum %d, expected %d", prereq.ID, prereq.CurriculumID, check.CurriculumID)
	}

	if err := walkChain(ctx, prereq, check.CourseID, check.MaxDepth, lookup); err != nil {
		return err
	}

	if prereq.Cycle >= check.Cycle {
		return apperrors.New(apperrors.ErrCycleOrderViolation,
			"prerequisite %s is in cycle %d, course is in cycle %d", prereq.Code, prereq.Cycle, check.Cycle)
	}
	return nil
}

// walkChain follows prerequisite links from start. It fails when it reaches
// target or when more than maxDepth links have been followed. A link to a
// missing course ends the chain.
func walkChain(ctx context.Context, start *models.Course, target int64, maxDepth int, lookup CourseLookup) error {
	if maxDepth < 1 {
		maxDepth = 1
	}
	current := start
	for steps := 0; ; steps++ {
		if target != 0 && current.ID == target {
			return apperrors.New(apperrors.ErrCircularDependency,
				"course %d is reachable from its proposed prerequisite %d", target, start.ID)
		}
		if current.PrerequisiteID == nil {
			return nil
		}
		if steps >= maxDepth {
			return apperrors.New(apperrors.ErrCircularDependency,
				"prerequisite chain from course %d exceeds %d links", start.ID, maxDepth)
		}
		next, err := lookup(ctx, *current.PrerequisiteID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		current = next
	}
}

// CheckDependents verifies that lowering or raising a course's cycle keeps every
// active dependent strictly above it.
func CheckDependents(course *models.Course, newCycle int, dependents []models.Course) error {
	for _, d := range dependents {
		if !d.IsActive() {
			continue
		}
		if d.Cycle <= newCycle {
			return apperrors.New(apperrors.ErrCycleOrderViolation,
				"dependent course %s is in cycle %d, %s cannot move to cycle %d", d.Code, d.Cycle, course.Code, newCycle)
		}
	}
	return nil
}

// MaxDepth returns the chain walk bound for a curriculum, falling back to def
// when the curriculum does not declare a cycle count.
func MaxDepth(curriculum *models.Curriculum, def int) int {
	if curriculum != nil && curriculum.CycleCount > 0 {
		return curriculum.CycleCount
	}
	return def
}
