package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// MemoryStore is an in-process Store used as a test double by the service,
// router and audit tests. Units of work run one at a time and are rolled back
// from a snapshot when they fail. The store-wide lock is coarser than the
// PostgreSQL row and advisory locks, so lock ordering is only exercised by the
// database tests.
type MemoryStore struct {
	txMu sync.Mutex // serializes units of work
	mu   sync.Mutex // guards the maps below

	nextID int64

	curricula   map[int64]models.Curriculum
	courses     map[int64]models.Course
	sections    map[int64]models.OfferedSection
	slots       map[int64]models.ScheduleSlot
	enrollments map[int64]models.Enrollment
	criteria    map[int64]models.EvaluationCriterion
	grades      map[int64]int // criterion id -> grade count
	students    map[int64]bool
	professors  map[int64]bool
	rooms       map[int64]bool
}

var (
	_ Store       = (*MemoryStore)(nil)
	_ TxManager   = (*MemoryStore)(nil)
	_ AuditReader = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		curricula:   make(map[int64]models.Curriculum),
		courses:     make(map[int64]models.Course),
		sections:    make(map[int64]models.OfferedSection),
		slots:       make(map[int64]models.ScheduleSlot),
		enrollments: make(map[int64]models.Enrollment),
		criteria:    make(map[int64]models.EvaluationCriterion),
		grades:      make(map[int64]int),
		students:    make(map[int64]bool),
		professors:  make(map[int64]bool),
		rooms:       make(map[int64]bool),
	}
}

type memorySnapshot struct {
	nextID      int64
	curricula   map[int64]models.Curriculum
	courses     map[int64]models.Course
	sections    map[int64]models.OfferedSection
	slots       map[int64]models.ScheduleSlot
	enrollments map[int64]models.Enrollment
	criteria    map[int64]models.EvaluationCriterion
	grades      map[int64]int
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) snapshot() memorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memorySnapshot{
		nextID:      m.nextID,
		curricula:   cloneMap(m.curricula),
		courses:     cloneMap(m.courses),
		sections:    cloneMap(m.sections),
		slots:       cloneMap(m.slots),
		enrollments: cloneMap(m.enrollments),
		criteria:    cloneMap(m.criteria),
		grades:      cloneMap(m.grades),
	}
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = s.nextID
	m.curricula = s.curricula
	m.courses = s.courses
	m.sections = s.sections
	m.slots = s.slots
	m.enrollments = s.enrollments
	m.criteria = s.criteria
	m.grades = s.grades
}

// WithinTx implements TxManager. A panic inside fn also rolls back.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, store Store) error) (err error) {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	defer func() {
		if r := recover(); r != nil {
			m.restore(snap)
			panic(r)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	if err = fn(ctx, m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *MemoryStore) newID() int64 {
	m.nextID++
	return m.nextID
}

// seedID returns id, or a fresh one when id is zero, keeping nextID ahead of
// explicitly chosen ids.
func (m *MemoryStore) seedID(id int64) int64 {
	if id == 0 {
		return m.newID()
	}
	if id > m.nextID {
		m.nextID = id
	}
	return id
}

// Seeding helpers. They assign an ID when the record has none and return it.

// AddCurriculum stores a curriculum
func (m *MemoryStore) AddCurriculum(c models.Curriculum) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.seedID(c.ID)
	if c.Status == "" {
		c.Status = models.StatusActive
	}
	m.curricula[c.ID] = c
	return c.ID
}

// AddCourse stores a course as is, without validating its prerequisite
func (m *MemoryStore) AddCourse(c models.Course) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.seedID(c.ID)
	if c.Status == "" {
		c.Status = models.StatusActive
	}
	m.courses[c.ID] = c
	return c.ID
}

// AddSection stores a section as is
func (m *MemoryStore) AddSection(s models.OfferedSection) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.seedID(s.ID)
	if s.Status == "" {
		s.Status = models.StatusActive
	}
	m.sections[s.ID] = s
	return s.ID
}

// AddSlot stores a slot as is
func (m *MemoryStore) AddSlot(s models.ScheduleSlot) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.seedID(s.ID)
	if s.Status == "" {
		s.Status = models.StatusActive
	}
	m.slots[s.ID] = s
	return s.ID
}

// AddEnrollment stores an enrollment without touching the seat ledger
func (m *MemoryStore) AddEnrollment(e models.Enrollment) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.seedID(e.ID)
	if e.Status == "" {
		e.Status = models.EnrollmentEnrolled
	}
	m.enrollments[e.ID] = e
	return e.ID
}

// AddCriterion stores a criterion as is
func (m *MemoryStore) AddCriterion(c models.EvaluationCriterion) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.seedID(c.ID)
	if c.Status == "" {
		c.Status = models.StatusActive
	}
	m.criteria[c.ID] = c
	return c.ID
}

// AddGrade records one grade against a criterion
func (m *MemoryStore) AddGrade(criterionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grades[criterionID]++
}

// AddStudent registers a student id
func (m *MemoryStore) AddStudent(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[id] = true
}

// AddProfessor registers a professor id
func (m *MemoryStore) AddProfessor(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.professors[id] = true
}

// AddRoom registers a room id
func (m *MemoryStore) AddRoom(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[id] = true
}

// CurriculumStore

func (m *MemoryStore) FindCurriculumByID(_ context.Context, id int64) (*models.Curriculum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.curricula[id]
	if !ok {
		return nil, apperrors.ErrCurriculumNotFound
	}
	return &c, nil
}

func (m *MemoryStore) FindCourseByID(_ context.Context, id int64) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return &c, nil
}

func (m *MemoryStore) FindActiveDependents(_ context.Context, courseID int64) ([]models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Course
	for _, c := range m.courses {
		if c.IsActive() && c.PrerequisiteID != nil && *c.PrerequisiteID == courseID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) PersistCourse(_ context.Context, course *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if course.ID == 0 {
		course.ID = m.newID()
		course.CreatedAt = now
	} else if _, ok := m.courses[course.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	for _, other := range m.courses {
		if other.ID != course.ID && other.IsActive() && course.IsActive() &&
			other.CurriculumID == course.CurriculumID && other.Code == course.Code {
			return apperrors.New(apperrors.ErrValidationFailed, "course code %q already exists in curriculum %d", course.Code, course.CurriculumID)
		}
	}
	course.UpdatedAt = now
	m.courses[course.ID] = *course
	return nil
}

// SectionStore

func (m *MemoryStore) FindSectionByID(_ context.Context, id int64) (*models.OfferedSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sections[id]
	if !ok {
		return nil, apperrors.ErrSectionNotFound
	}
	return &s, nil
}

// LockSection is a plain read: units of work already run one at a time.
func (m *MemoryStore) LockSection(ctx context.Context, id int64) (*models.OfferedSection, error) {
	return m.FindSectionByID(ctx, id)
}

func (m *MemoryStore) PersistSection(_ context.Context, section *models.OfferedSection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if section.SeatsAvailable < 0 || section.SeatsAvailable > section.Capacity {
		return apperrors.New(apperrors.ErrValidationFailed, "section %d seats available %d outside [0, %d]",
			section.ID, section.SeatsAvailable, section.Capacity)
	}
	now := time.Now()
	if section.ID == 0 {
		section.ID = m.newID()
		section.CreatedAt = now
	} else if _, ok := m.sections[section.ID]; !ok {
		return apperrors.ErrSectionNotFound
	}
	section.UpdatedAt = now
	m.sections[section.ID] = *section
	return nil
}

// SlotStore

func (m *MemoryStore) FindSlotByID(_ context.Context, id int64) (*models.ScheduleSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, apperrors.ErrSlotNotFound
	}
	return &s, nil
}

func (m *MemoryStore) FindActiveSlotsByScope(_ context.Context, scope models.Scope, day models.DayOfWeek) ([]models.ScheduleSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inScope := func(s models.ScheduleSlot) bool {
		section, ok := m.sections[s.SectionID]
		if !ok {
			return false
		}
		switch scope.Type {
		case models.ScopeProfessor:
			return section.IsActive() && section.ProfessorID != nil && *section.ProfessorID == scope.ID
		case models.ScopeRoom:
			return s.RoomID != nil && *s.RoomID == scope.ID
		case models.ScopeStudent:
			for _, e := range m.enrollments {
				if e.IsActive() && e.StudentID == scope.ID && e.SectionID == s.SectionID {
					return true
				}
			}
		}
		return false
	}

	var out []models.ScheduleSlot
	for _, s := range m.slots {
		if s.IsActive() && s.Day == day && inScope(s) {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out, nil
}

func (m *MemoryStore) FindActiveSlotsBySection(_ context.Context, sectionID int64) ([]models.ScheduleSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduleSlot
	for _, s := range m.slots {
		if s.IsActive() && s.SectionID == sectionID {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out, nil
}

func sortSlots(slots []models.ScheduleSlot) {
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

func (m *MemoryStore) PersistSlot(_ context.Context, slot *models.ScheduleSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slot.Interval().Valid() {
		return apperrors.New(apperrors.ErrValidationFailed, "slot %s", slot.Interval())
	}
	now := time.Now()
	if slot.ID == 0 {
		slot.ID = m.newID()
		slot.CreatedAt = now
	} else if _, ok := m.slots[slot.ID]; !ok {
		return apperrors.ErrSlotNotFound
	}
	slot.UpdatedAt = now
	m.slots[slot.ID] = *slot
	return nil
}

// EnrollmentStore

func (m *MemoryStore) FindEnrollmentByID(_ context.Context, id int64) (*models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	return &e, nil
}

func (m *MemoryStore) FindActiveEnrollment(_ context.Context, studentID, sectionID int64) (*models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.IsActive() && e.StudentID == studentID && e.SectionID == sectionID {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) filterEnrollments(keep func(models.Enrollment) bool) []models.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) FindActiveEnrollmentsByStudent(_ context.Context, studentID int64) ([]models.Enrollment, error) {
	return m.filterEnrollments(func(e models.Enrollment) bool {
		return e.IsActive() && e.StudentID == studentID
	}), nil
}

func (m *MemoryStore) FindActiveEnrollmentsBySection(_ context.Context, sectionID int64) ([]models.Enrollment, error) {
	return m.filterEnrollments(func(e models.Enrollment) bool {
		return e.IsActive() && e.SectionID == sectionID
	}), nil
}

func (m *MemoryStore) PersistEnrollment(_ context.Context, enrollment *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if enrollment.IsActive() {
		for _, e := range m.enrollments {
			if e.ID != enrollment.ID && e.IsActive() &&
				e.StudentID == enrollment.StudentID && e.SectionID == enrollment.SectionID {
				return apperrors.New(apperrors.ErrDuplicateEnrollment,
					"student %d, section %d", enrollment.StudentID, enrollment.SectionID)
			}
		}
	}
	now := time.Now()
	if enrollment.ID == 0 {
		enrollment.ID = m.newID()
		enrollment.CreatedAt = now
	} else if _, ok := m.enrollments[enrollment.ID]; !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	enrollment.UpdatedAt = now
	m.enrollments[enrollment.ID] = *enrollment
	return nil
}

// CriterionStore

func (m *MemoryStore) FindCriterionByID(_ context.Context, id int64) (*models.EvaluationCriterion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.criteria[id]
	if !ok {
		return nil, apperrors.ErrCriterionNotFound
	}
	return &c, nil
}

func (m *MemoryStore) FindActiveCriteriaBySection(_ context.Context, sectionID int64) ([]models.EvaluationCriterion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EvaluationCriterion
	for _, c := range m.criteria {
		if c.IsActive() && c.SectionID == sectionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CountGradesByCriterion(_ context.Context, criterionID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grades[criterionID], nil
}

func (m *MemoryStore) PersistCriterion(_ context.Context, c *models.EvaluationCriterion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Weight < 0 || c.Weight > 100 {
		return apperrors.New(apperrors.ErrValidationFailed, "criterion weight %d outside [0, 100]", c.Weight)
	}
	now := time.Now()
	if c.ID == 0 {
		c.ID = m.newID()
		c.CreatedAt = now
	} else if _, ok := m.criteria[c.ID]; !ok {
		return apperrors.ErrCriterionNotFound
	}
	c.UpdatedAt = now
	m.criteria[c.ID] = *c
	return nil
}

// DirectoryStore

func (m *MemoryStore) StudentExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.students[id], nil
}

func (m *MemoryStore) ProfessorExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.professors[id], nil
}

func (m *MemoryStore) RoomExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[id], nil
}

// LockScope is a no-op: units of work already run one at a time.
func (m *MemoryStore) LockScope(_ context.Context, _ models.Scope, _ models.DayOfWeek) error {
	return nil
}

// AuditReader

func (m *MemoryStore) ListCurricula(_ context.Context) ([]models.Curriculum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Curriculum
	for _, c := range m.curricula {
		if c.Status == models.StatusActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListCoursesByCurriculum(_ context.Context, curriculumID int64) ([]models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Course
	for _, c := range m.courses {
		if c.CurriculumID == curriculumID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListActiveSections(_ context.Context) ([]models.OfferedSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OfferedSection
	for _, s := range m.sections {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CountActiveEnrollmentsBySection(_ context.Context) (map[int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int64]int)
	for _, e := range m.enrollments {
		if e.IsActive() {
			counts[e.SectionID]++
		}
	}
	return counts, nil
}

func (m *MemoryStore) ListActiveSlots(_ context.Context) ([]models.ScheduleSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduleSlot
	for _, s := range m.slots {
		if section, ok := m.sections[s.SectionID]; ok && section.IsActive() && s.IsActive() {
			out = append(out, s)
		}
	}
	sortSlots(out)
	return out, nil
}

func (m *MemoryStore) ListActiveCriteria(_ context.Context) ([]models.EvaluationCriterion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EvaluationCriterion
	for _, c := range m.criteria {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SectionID != out[j].SectionID {
			return out[i].SectionID < out[j].SectionID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
