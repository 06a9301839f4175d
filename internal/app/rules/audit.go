package rules

import (
	"context"
	"fmt"
	"sort"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// Severity ranks audit findings.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Finding is one invariant violation detected in stored data.
type Finding struct {
	Code     string
	Severity Severity
	Subject  string
	Detail   string
}

// AuditCurriculum revalidates every active prerequisite link of a curriculum.
// The walk reuses ValidatePrerequisite against an in-memory index, so a cycle
// already present in storage is reported instead of looping.
func AuditCurriculum(curriculum *models.Curriculum, courses []models.Course, defaultDepth int) []Finding {
	index := make(map[int64]*models.Course, len(courses))
	for i := range courses {
		index[courses[i].ID] = &courses[i]
	}
	lookup := func(_ context.Context, id int64) (*models.Course, error) {
		if c, ok := index[id]; ok {
			return c, nil
		}
		return nil, apperrors.ErrCourseNotFound
	}

	depth := MaxDepth(curriculum, defaultDepth)
	var findings []Finding
	for i := range courses {
		c := &courses[i]
		if !c.IsActive() || c.PrerequisiteID == nil {
			continue
		}
		err := ValidatePrerequisite(context.Background(), PrerequisiteCheck{
			CourseID:       c.ID,
			CurriculumID:   c.CurriculumID,
			PrerequisiteID: *c.PrerequisiteID,
			Cycle:          c.Cycle,
			MaxDepth:       depth,
		}, lookup)
		if err != nil {
			findings = append(findings, Finding{
				Code:     apperrors.Code(err),
				Severity: SeverityError,
				Subject:  fmt.Sprintf("course %d (%s)", c.ID, c.Code),
				Detail:   err.Error(),
			})
		}
	}
	return findings
}

// AuditLedger compares a section's seat ledger with its active enrollment count.
func AuditLedger(section *models.OfferedSection, activeEnrollments int) []Finding {
	subject := fmt.Sprintf("section %d", section.ID)
	var findings []Finding
	if section.SeatsAvailable < 0 || section.SeatsAvailable > section.Capacity {
		findings = append(findings, Finding{
			Code:     "LEDGER_OUT_OF_BOUNDS",
			Severity: SeverityError,
			Subject:  subject,
			Detail:   fmt.Sprintf("seats available %d outside [0, %d]", section.SeatsAvailable, section.Capacity),
		})
	}
	if section.SeatsTaken() != activeEnrollments {
		findings = append(findings, Finding{
			Code:     "LEDGER_DRIFT",
			Severity: SeverityWarning,
			Subject:  subject,
			Detail:   fmt.Sprintf("%d seats taken, %d active enrollments", section.SeatsTaken(), activeEnrollments),
		})
	}
	return findings
}

// AuditOverlaps reports every pair of overlapping active slots sharing a scope.
// slotsByScope maps a scope to all of its slots across the week.
func AuditOverlaps(slotsByScope map[models.Scope][]models.ScheduleSlot) []Finding {
	scopes := make([]models.Scope, 0, len(slotsByScope))
	for s := range slotsByScope {
		scopes = append(scopes, s)
	}
	sort.Slice(scopes, func(i, j int) bool {
		if scopes[i].Type != scopes[j].Type {
			return scopes[i].Type < scopes[j].Type
		}
		return scopes[i].ID < scopes[j].ID
	})

	var findings []Finding
	for _, scope := range scopes {
		slots := slotsByScope[scope]
		for i := range slots {
			// Compare only against later slots so each pair is reported once.
			for _, other := range FindOverlaps(slots[i].Interval(), slots[i+1:], 0) {
				findings = append(findings, Finding{
					Code:     string(scope.Type) + "_OVERLAP",
					Severity: SeverityError,
					Subject:  fmt.Sprintf("%s %d", scope.Type, scope.ID),
					Detail: fmt.Sprintf("slot %d (%s) overlaps slot %d (%s)",
						slots[i].ID, slots[i].Interval(), other.ID, other.Interval()),
				})
			}
		}
	}
	return findings
}

// AuditWeights reports sections whose active criteria weigh more than limit.
func AuditWeights(sectionID int64, criteria []models.EvaluationCriterion, limit int) []Finding {
	if sum := ActiveWeight(criteria, 0); sum > limit {
		return []Finding{{
			Code:     apperrors.Code(apperrors.ErrWeightExceeded),
			Severity: SeverityError,
			Subject:  fmt.Sprintf("section %d", sectionID),
			Detail:   fmt.Sprintf("active criteria weigh %d", sum),
		}}
	}
	return nil
}
