// Package services holds the coordinators of the academic records engine.
// Each operation loads what it needs through a repositories.Store, runs the
// pure checks of package rules, and writes only when every check passed, all
// inside one repositories.TxManager unit of work.
//
// Services defined in this package:
//   - CurriculumService: course create/update/delete guarded by the prerequisite graph checks
//   - SectionService: offered sections and their seat ledger
//   - ScheduleService: schedule slots guarded by professor, room and student calendars
//   - EnrollmentService: enroll, withdraw, cancel and transfer
//   - EvaluationService: evaluation criteria and their weight ceiling
package services

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/rules"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// EngineOptions tunes the integrity checks.
type EngineOptions struct {
	// DefaultMaxPrerequisiteDepth bounds prerequisite chain walks in curricula
	// without a cycle count.
	DefaultMaxPrerequisiteDepth int
	// MaxCriteriaWeight is the ceiling for a section's active criteria weights.
	MaxCriteriaWeight int
}

// DefaultEngineOptions returns the options used when none are configured.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		DefaultMaxPrerequisiteDepth: 32,
		MaxCriteriaWeight:           rules.MaxTotalWeight,
	}
}

func (o EngineOptions) withDefaults() EngineOptions {
	d := DefaultEngineOptions()
	if o.DefaultMaxPrerequisiteDepth <= 0 {
		o.DefaultMaxPrerequisiteDepth = d.DefaultMaxPrerequisiteDepth
	}
	if o.MaxCriteriaWeight <= 0 {
		o.MaxCriteriaWeight = d.MaxCriteriaWeight
	}
	return o
}

// logOutcome records the result of a coordinator operation. Rule failures are
// expected and logged at warn level; anything else is an infrastructure fault.
func logOutcome(log zerolog.Logger, op string, err error) {
	if err == nil {
		return
	}
	if apperrors.IsBusinessRule(err) {
		log.Warn().Str("op", op).Str("code", apperrors.Code(err)).Msg(err.Error())
		return
	}
	log.Error().Err(err).Str("op", op).Msg("Operation failed")
}

// requireActive turns a soft-deleted record into the not-found error of its kind.
func requireActive(active bool, notFound error) error {
	if !active {
		return notFound
	}
	return nil
}

// distinctDays returns the days of slots in ascending order. Scope locks are
// always taken in this order.
func distinctDays(slots []models.ScheduleSlot) []models.DayOfWeek {
	seen := make(map[models.DayOfWeek]struct{})
	var days []models.DayOfWeek
	for _, s := range slots {
		if _, ok := seen[s.Day]; ok {
			continue
		}
		seen[s.Day] = struct{}{}
		days = append(days, s.Day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// withSectionSlots returns the calendar a section's slots are checked against:
// booked without the section's stored slots, plus own. Compare each own slot
// with its id excluded so it does not collide with itself.
func withSectionSlots(booked []models.ScheduleSlot, sectionID int64, own []models.ScheduleSlot) []models.ScheduleSlot {
	calendar := rules.ExcludeSections(booked, sectionID)
	return append(calendar, own...)
}

// appendUnique adds slots to dst, skipping ids already present.
func appendUnique(dst []models.ScheduleSlot, slots ...models.ScheduleSlot) []models.ScheduleSlot {
	for _, s := range slots {
		dup := false
		for _, d := range dst {
			if d.ID == s.ID {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}

// sortSchedule orders slots by day, start time and id.
func sortSchedule(slots []models.ScheduleSlot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
}
