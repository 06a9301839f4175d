package helpers

import "github.com/jackc/pgx/v5/pgtype"

const microsPerMinute = 60 * 1000 * 1000

// MinutesToPgTime converts minutes since midnight to a TIME column value.
// 1440 is stored as 24:00:00, which PostgreSQL accepts as end of day.
func MinutesToPgTime(minutes int) pgtype.Time {
	return pgtype.Time{Microseconds: int64(minutes) * microsPerMinute, Valid: true}
}

// PgTimeToMinutes converts a TIME column value to minutes since midnight.
// Seconds are truncated; a NULL value yields 0.
func PgTimeToMinutes(t pgtype.Time) int {
	if !t.Valid {
		return 0
	}
	return int(t.Microseconds / microsPerMinute)
}
