package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/rules"
)

func findingCodes(findings []rules.Finding) []string {
	codes := make([]string, 0, len(findings))
	for _, f := range findings {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestAuditService_CleanStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddStudent(1)
	prof := int64(7)
	f.store.AddProfessor(prof)
	section := f.section(&prof, 10)
	f.slot(section, models.Monday, hm(8, 0), hm(10, 0), nil)
	_, err := f.enrollments.Enroll(ctx, 1, section)
	require.NoError(t, err)
	_, err = f.evaluation.CreateCriterion(ctx, section, "Final", 100)
	require.NoError(t, err)

	findings, err := NewAuditService(f.store, DefaultEngineOptions(), zerolog.Nop()).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAuditService_ReportsCorruptData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	curriculum := f.store.AddCurriculum(models.Curriculum{Code: "CS", CycleCount: 4})
	f.store.AddCourse(models.Course{ID: 100, CurriculumID: curriculum, Code: "X", Cycle: 2, PrerequisiteID: ptr(int64(101))})
	f.store.AddCourse(models.Course{ID: 101, CurriculumID: curriculum, Code: "Y", Cycle: 1, PrerequisiteID: ptr(int64(100))})

	prof := int64(7)
	drifted := f.section(&prof, 10)
	f.store.AddEnrollment(models.Enrollment{StudentID: 1, SectionID: drifted})
	clashing := f.section(&prof, 10)
	f.slot(drifted, models.Monday, hm(8, 0), hm(10, 0), nil)
	f.slot(clashing, models.Monday, hm(9, 0), hm(11, 0), nil)

	f.store.AddCriterion(models.EvaluationCriterion{SectionID: clashing, Name: "Midterm", Weight: 60})
	f.store.AddCriterion(models.EvaluationCriterion{SectionID: clashing, Name: "Final", Weight: 50})

	findings, err := NewAuditService(f.store, DefaultEngineOptions(), zerolog.Nop()).Run(ctx)
	require.NoError(t, err)

	codes := findingCodes(findings)
	assert.Contains(t, codes, "CIRCULAR_DEPENDENCY")
	assert.Contains(t, codes, "LEDGER_DRIFT")
	assert.Contains(t, codes, "PROFESSOR_OVERLAP")
	assert.Contains(t, codes, "WEIGHT_EXCEEDED")
	assert.NotContains(t, codes, "LEDGER_OUT_OF_BOUNDS")
}
