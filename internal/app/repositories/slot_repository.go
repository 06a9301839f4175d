package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
	"github.com/unisphere/academics/internal/pkg/dberrors"
	"github.com/unisphere/academics/internal/pkg/helpers"
)

// SlotRepository handles database operations for schedule slots
type SlotRepository struct {
	db DBTX
}

// NewSlotRepository creates a new slot repository
func NewSlotRepository(db DBTX) *SlotRepository {
	return &SlotRepository{
		db: db,
	}
}

const slotColumns = `s.id, s.section_id, s.day_of_week, s.start_time, s.end_time, s.room_id, s.status, s.created_at, s.updated_at`

func toPgTime(t models.TimeOfDay) pgtype.Time {
	return helpers.MinutesToPgTime(int(t))
}

func fromPgTime(t pgtype.Time) models.TimeOfDay {
	return models.TimeOfDay(helpers.PgTimeToMinutes(t))
}

func scanSlot(row pgx.Row, s *models.ScheduleSlot) error {
	var start, end pgtype.Time
	if err := row.Scan(
		&s.ID,
		&s.SectionID,
		&s.Day,
		&start,
		&end,
		&s.RoomID,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return err
	}
	s.Start = fromPgTime(start)
	s.End = fromPgTime(end)
	return nil
}

func collectSlots(rows pgx.Rows) ([]models.ScheduleSlot, error) {
	var slots []models.ScheduleSlot
	for rows.Next() {
		var s models.ScheduleSlot
		if err := scanSlot(rows, &s); err != nil {
			return nil, fmt.Errorf("error scanning slot: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}
	return slots, nil
}

// FindSlotByID retrieves a slot by ID
func (r *SlotRepository) FindSlotByID(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots s WHERE s.id = $1`

	var slot models.ScheduleSlot
	if err := scanSlot(r.db.QueryRow(ctx, query, id), &slot); err != nil {
		return nil, dberrors.MapError(err, "finding slot", apperrors.ErrSlotNotFound)
	}
	return &slot, nil
}

// FindActiveSlotsByScope lists the active slots on day in the scope's calendar
func (r *SlotRepository) FindActiveSlotsByScope(ctx context.Context, scope models.Scope, day models.DayOfWeek) ([]models.ScheduleSlot, error) {
	var query string
	switch scope.Type {
	case models.ScopeProfessor:
		query = `SELECT ` + slotColumns + `
			FROM schedule_slots s
			JOIN offered_sections o ON o.id = s.section_id
			WHERE o.professor_id = $1 AND o.status = 'ACTIVE'
			  AND s.day_of_week = $2 AND s.status = 'ACTIVE'
			ORDER BY s.start_time, s.id`
	case models.ScopeRoom:
		query = `SELECT ` + slotColumns + `
			FROM schedule_slots s
			WHERE s.room_id = $1 AND s.day_of_week = $2 AND s.status = 'ACTIVE'
			ORDER BY s.start_time, s.id`
	case models.ScopeStudent:
		query = `SELECT ` + slotColumns + `
			FROM schedule_slots s
			JOIN enrollments e ON e.section_id = s.section_id
			WHERE e.student_id = $1 AND e.status = 'ENROLLED'
			  AND s.day_of_week = $2 AND s.status = 'ACTIVE'
			ORDER BY s.start_time, s.id`
	default:
		return nil, fmt.Errorf("unknown scope type %q", scope.Type)
	}

	rows, err := r.db.Query(ctx, query, scope.ID, day)
	if err != nil {
		return nil, fmt.Errorf("error querying %s slots: %w", scope.Type, err)
	}
	defer rows.Close()

	return collectSlots(rows)
}

// FindActiveSlotsBySection lists the active slots of a section
func (r *SlotRepository) FindActiveSlotsBySection(ctx context.Context, sectionID int64) ([]models.ScheduleSlot, error) {
	query := `SELECT ` + slotColumns + `
		FROM schedule_slots s
		WHERE s.section_id = $1 AND s.status = 'ACTIVE'
		ORDER BY s.day_of_week, s.start_time, s.id`

	rows, err := r.db.Query(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("error querying section slots: %w", err)
	}
	defer rows.Close()

	return collectSlots(rows)
}

// PersistSlot inserts the slot when it has no ID yet, otherwise updates it
func (r *SlotRepository) PersistSlot(ctx context.Context, slot *models.ScheduleSlot) error {
	if slot.ID == 0 {
		query := `
			INSERT INTO schedule_slots (section_id, day_of_week, start_time, end_time, room_id, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRow(ctx, query,
			slot.SectionID, slot.Day, toPgTime(slot.Start), toPgTime(slot.End), slot.RoomID, slot.Status,
		).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
		return dberrors.MapError(err, "creating slot", apperrors.ErrSlotNotFound)
	}

	query := `
		UPDATE schedule_slots
		SET day_of_week = $2, start_time = $3, end_time = $4, room_id = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		slot.ID, slot.Day, toPgTime(slot.Start), toPgTime(slot.End), slot.RoomID, slot.Status,
	).Scan(&slot.UpdatedAt)
	return dberrors.MapError(err, "updating slot", apperrors.ErrSlotNotFound)
}
