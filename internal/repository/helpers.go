package repository

import (
	"database/sql"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so that stored
// timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// parseTime parses an RFC3339 column, returning the zero time on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullableClock converts a sql.NullFloat64 into a *calendar.Clock.
// Returns nil if the value is NULL.
func nullableClock(f sql.NullFloat64) *calendar.Clock {
	if !f.Valid {
		return nil
	}
	c := calendar.Clock(f.Float64)
	return &c
}

// nullableClockToValue converts a *calendar.Clock to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableClockToValue(c *calendar.Clock) interface{} {
	if c == nil {
		return nil
	}
	return float64(*c)
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// nowUTC returns the current UTC time.
func nowUTC() time.Time {
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = nowUTC()
	}
	return t.UTC().Format(timeLayout)
}
