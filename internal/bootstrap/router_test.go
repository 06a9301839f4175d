package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/config"
)

type apiEnv struct {
	t      *testing.T
	store  *repositories.MemoryStore
	deps   *Dependencies
	router *gin.Engine
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.JWT.Secret = "0123456789abcdef0123"
	cfg.JWT.Issuer = "unisphere"
	cfg.Engine.DefaultMaxPrerequisiteDepth = 32
	cfg.Engine.MaxCriteriaWeight = 100

	store := repositories.NewMemoryStore()
	deps := BuildDependencies(cfg, store, zerolog.Nop())
	return &apiEnv{t: t, store: store, deps: deps, router: SetupRouter(cfg, deps, zerolog.Nop())}
}

func (e *apiEnv) token(role models.RoleType) string {
	signed, err := e.deps.JWTService.IssueToken(1, role, time.Hour)
	require.NoError(e.t, err)
	return signed
}

// do sends body as JSON and decodes the response envelope's data or error.
func (e *apiEnv) do(method, path string, role models.RoleType, body interface{}) (int, map[string]json.RawMessage) {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(role))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	envelope := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w.Code, envelope
}

func errorCode(t *testing.T, envelope map[string]json.RawMessage) string {
	t.Helper()
	var detail struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(envelope["error"], &detail))
	return detail.Code
}

func TestRouter_Health(t *testing.T) {
	env := newAPIEnv(t)
	status, _ := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	env.deps.HealthCheck = func(context.Context) error { return errors.New("down") }
	status, _ = env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestRouter_EnrollmentFlow(t *testing.T) {
	env := newAPIEnv(t)
	curriculum := env.store.AddCurriculum(models.Curriculum{Code: "CS", CycleCount: 8})
	env.store.AddStudent(42)
	env.store.AddStudent(43)
	env.store.AddProfessor(7)

	status, body := env.do(http.MethodPost, fmt.Sprintf("/api/v1/curricula/%d/courses", curriculum), models.RoleStudent,
		map[string]interface{}{"code": "CS101", "name": "Intro", "cycle": 1, "credits": 6})
	require.Equal(t, http.StatusForbidden, status)

	status, body = env.do(http.MethodPost, fmt.Sprintf("/api/v1/curricula/%d/courses", curriculum), models.RoleAdmin,
		map[string]interface{}{"code": "CS101", "name": "Intro", "cycle": 1, "credits": 6})
	require.Equal(t, http.StatusCreated, status)
	var course models.Course
	require.NoError(t, json.Unmarshal(body["data"], &course))

	status, body = env.do(http.MethodPost, "/api/v1/sections", models.RoleAdmin,
		map[string]interface{}{"courseId": course.ID, "year": 2026, "term": "FALL", "professorId": 7, "capacity": 1})
	require.Equal(t, http.StatusCreated, status)
	var section models.OfferedSection
	require.NoError(t, json.Unmarshal(body["data"], &section))
	assert.Equal(t, 1, section.SeatsAvailable)

	status, body = env.do(http.MethodPost, fmt.Sprintf("/api/v1/sections/%d/slots", section.ID), models.RoleAdmin,
		map[string]interface{}{"dayOfWeek": 1, "start": "08:00", "end": "10:00"})
	require.Equal(t, http.StatusCreated, status)

	status, body = env.do(http.MethodPost, fmt.Sprintf("/api/v1/sections/%d/slots", section.ID), models.RoleAdmin,
		map[string]interface{}{"dayOfWeek": 8, "start": "08:00", "end": "10:00"})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_INTERVAL", errorCode(t, body))

	status, _ = env.do(http.MethodPost, "/api/v1/enrollments", "", map[string]interface{}{"studentId": 42, "sectionId": section.ID})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = env.do(http.MethodPost, "/api/v1/enrollments", models.RoleStudent,
		map[string]interface{}{"studentId": 42, "sectionId": section.ID})
	require.Equal(t, http.StatusCreated, status)
	var enrollment models.Enrollment
	require.NoError(t, json.Unmarshal(body["data"], &enrollment))

	status, body = env.do(http.MethodPost, "/api/v1/enrollments", models.RoleStudent,
		map[string]interface{}{"studentId": 43, "sectionId": section.ID})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NO_CAPACITY", errorCode(t, body))

	status, body = env.do(http.MethodGet, "/api/v1/students/42/schedule", models.RoleStudent, nil)
	require.Equal(t, http.StatusOK, status)
	var schedule []models.ScheduleSlot
	require.NoError(t, json.Unmarshal(body["data"], &schedule))
	require.Len(t, schedule, 1)
	assert.Equal(t, models.NewTimeOfDay(8, 0), schedule[0].Start)

	status, _ = env.do(http.MethodPost, fmt.Sprintf("/api/v1/enrollments/%d/withdraw", enrollment.ID), models.RoleStudent, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = env.do(http.MethodPost, fmt.Sprintf("/api/v1/enrollments/%d/withdraw", enrollment.ID), models.RoleStudent, nil)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, body))

	status, _ = env.do(http.MethodGet, fmt.Sprintf("/api/v1/sections/%d", section.ID), "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_CriteriaAndValidation(t *testing.T) {
	env := newAPIEnv(t)
	curriculum := env.store.AddCurriculum(models.Curriculum{Code: "CS", CycleCount: 8})
	course := env.store.AddCourse(models.Course{CurriculumID: curriculum, Code: "CS101", Cycle: 1})
	section := env.store.AddSection(models.OfferedSection{CourseID: course, Year: 2026, Term: models.TermFall, Capacity: 10, SeatsAvailable: 10})
	path := fmt.Sprintf("/api/v1/sections/%d/criteria", section)

	status, _ := env.do(http.MethodPost, path, models.RoleInstructor, map[string]interface{}{"name": "Midterm", "weight": 70})
	require.Equal(t, http.StatusCreated, status)

	status, body := env.do(http.MethodPost, path, models.RoleInstructor, map[string]interface{}{"name": "Final", "weight": 40})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "WEIGHT_EXCEEDED", errorCode(t, body))

	status, body = env.do(http.MethodPost, path, models.RoleInstructor, map[string]interface{}{"weight": 10})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	status, _ = env.do(http.MethodPost, "/api/v1/sections/abc/criteria", models.RoleInstructor, map[string]interface{}{"name": "x", "weight": 1})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/prerequisite-check", course), models.RoleInstructor,
		map[string]interface{}{"prerequisiteId": course, "cycle": 2})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/prerequisite-check", course), models.RoleAdmin,
		map[string]interface{}{"prerequisiteId": course, "cycle": 2})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "SELF_REFERENCE", errorCode(t, body))
}

func TestRouter_FindConflicts(t *testing.T) {
	env := newAPIEnv(t)
	professor := int64(7)
	curriculum := env.store.AddCurriculum(models.Curriculum{Code: "CS", CycleCount: 8})
	course := env.store.AddCourse(models.Course{CurriculumID: curriculum, Code: "CS101", Cycle: 1})
	section := env.store.AddSection(models.OfferedSection{CourseID: course, Year: 2026, Term: models.TermFall,
		ProfessorID: &professor, Capacity: 10, SeatsAvailable: 10})
	slot := env.store.AddSlot(models.ScheduleSlot{SectionID: section, Day: models.Monday,
		Start: models.NewTimeOfDay(8, 0), End: models.NewTimeOfDay(10, 0)})

	const path = "/api/v1/conflicts?scope=PROFESSOR&scopeId=7&day=1&start=09:00&end=11:00"

	status, _ := env.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := env.do(http.MethodGet, path, models.RoleStudent, nil)
	require.Equal(t, http.StatusOK, status)
	var conflicts []models.ScheduleSlot
	require.NoError(t, json.Unmarshal(body["data"], &conflicts))
	require.Len(t, conflicts, 1)
	assert.Equal(t, slot, conflicts[0].ID)

	status, body = env.do(http.MethodGet, fmt.Sprintf("%s&excludeSlotId=%d", path, slot), models.RoleStudent, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body["data"], &conflicts))
	assert.Empty(t, conflicts)

	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"unknown scope", "scope=BUILDING&scopeId=7&day=1&start=09:00&end=11:00", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing scope id", "scope=ROOM&day=1&start=09:00&end=11:00", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"malformed time", "scope=ROOM&scopeId=3&day=1&start=9am&end=11:00", http.StatusBadRequest, "BAD_REQUEST"},
		{"day out of range", "scope=ROOM&scopeId=3&day=9&start=09:00&end=11:00", http.StatusUnprocessableEntity, "INVALID_INTERVAL"},
		{"empty interval", "scope=ROOM&scopeId=3&day=1&start=11:00&end=11:00", http.StatusUnprocessableEntity, "INVALID_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(http.MethodGet, "/api/v1/conflicts?"+tt.query, models.RoleStudent, nil)
			require.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errorCode(t, body))
		})
	}
}
