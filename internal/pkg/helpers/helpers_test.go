package helpers

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestPgTimeRoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 1, 8 * 60, 23*60 + 59, 24 * 60} {
		assert.Equal(t, minutes, PgTimeToMinutes(MinutesToPgTime(minutes)))
	}
	assert.Equal(t, int64(9*3600*1000*1000), MinutesToPgTime(9*60).Microseconds)
	assert.Equal(t, 0, PgTimeToMinutes(pgtype.Time{}))
	// Seconds are dropped.
	assert.Equal(t, 61, PgTimeToMinutes(pgtype.Time{Microseconds: (61*60 + 30) * 1000 * 1000, Valid: true}))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
}
