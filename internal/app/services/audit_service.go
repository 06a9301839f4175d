package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/app/rules"
)

// AuditService scans stored data for violations of the engine invariants.
// Violations can only appear through writes that bypassed the coordinators.
type AuditService interface {
	Run(ctx context.Context) ([]rules.Finding, error)
}

type auditServiceImpl struct {
	reader  repositories.AuditReader
	options EngineOptions
	logger  zerolog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(reader repositories.AuditReader, options EngineOptions, logger zerolog.Logger) AuditService {
	return &auditServiceImpl{
		reader:  reader,
		options: options.withDefaults(),
		logger:  logger.With().Str("component", "audit").Logger(),
	}
}

// Run audits curricula, seat ledgers, calendars and criteria weights in that order
func (s *auditServiceImpl) Run(ctx context.Context) ([]rules.Finding, error) {
	var findings []rules.Finding

	curricula, err := s.reader.ListCurricula(ctx)
	if err != nil {
		return nil, err
	}
	for i := range curricula {
		courses, err := s.reader.ListCoursesByCurriculum(ctx, curricula[i].ID)
		if err != nil {
			return nil, err
		}
		findings = append(findings, rules.AuditCurriculum(&curricula[i], courses, s.options.DefaultMaxPrerequisiteDepth)...)
	}

	sections, err := s.reader.ListActiveSections(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.reader.CountActiveEnrollmentsBySection(ctx)
	if err != nil {
		return nil, err
	}
	professorOf := make(map[int64]*int64, len(sections))
	for i := range sections {
		professorOf[sections[i].ID] = sections[i].ProfessorID
		findings = append(findings, rules.AuditLedger(&sections[i], counts[sections[i].ID])...)
	}

	slots, err := s.reader.ListActiveSlots(ctx)
	if err != nil {
		return nil, err
	}
	byScope := make(map[models.Scope][]models.ScheduleSlot)
	for _, slot := range slots {
		if prof := professorOf[slot.SectionID]; prof != nil {
			scope := models.ProfessorScope(*prof)
			byScope[scope] = append(byScope[scope], slot)
		}
		if slot.RoomID != nil {
			scope := models.RoomScope(*slot.RoomID)
			byScope[scope] = append(byScope[scope], slot)
		}
	}
	findings = append(findings, rules.AuditOverlaps(byScope)...)

	criteria, err := s.reader.ListActiveCriteria(ctx)
	if err != nil {
		return nil, err
	}
	bySection := make(map[int64][]models.EvaluationCriterion)
	var order []int64
	for _, c := range criteria {
		if _, seen := bySection[c.SectionID]; !seen {
			order = append(order, c.SectionID)
		}
		bySection[c.SectionID] = append(bySection[c.SectionID], c)
	}
	for _, sectionID := range order {
		findings = append(findings, rules.AuditWeights(sectionID, bySection[sectionID], s.options.MaxCriteriaWeight)...)
	}

	s.logger.Info().
		Int("curricula", len(curricula)).
		Int("sections", len(sections)).
		Int("slots", len(slots)).
		Int("findings", len(findings)).
		Msg("Integrity audit finished")
	return findings, nil
}
