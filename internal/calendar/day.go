package calendar

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Day is a calendar date with no time-of-day and no zone. Which zone a Day
// belongs to is decided by the Calendar that produced it.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

// NewDay normalizes y/m/d (e.g. Jan 32 becomes Feb 1).
func NewDay(y int, m time.Month, d int) Day {
	return dayFromTime(time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return dayFromTime(t), nil
}

func dayFromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

// noon anchors arithmetic at UTC noon so DST never shifts the date.
func (d Day) noon() time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 12, 0, 0, 0, time.UTC)
}

func (d Day) IsZero() bool { return d == Day{} }

func (d Day) String() string { return d.noon().Format(dateLayout) }

func (d Day) AddDays(n int) Day { return dayFromTime(d.noon().AddDate(0, 0, n)) }

func (d Day) Weekday() time.Weekday { return d.noon().Weekday() }

// IsBusinessDay reports whether d falls Monday through Friday.
func (d Day) IsBusinessDay() bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func (d Day) Before(o Day) bool { return d.noon().Before(o.noon()) }

func (d Day) After(o Day) bool { return d.noon().After(o.noon()) }

// DaysUntil returns the number of calendar days from d to o (negative if o is earlier).
func (d Day) DaysUntil(o Day) int {
	return int(o.noon().Sub(d.noon()).Hours() / 24)
}

// At returns the instant at clock c on day d in loc.
func (d Day) At(c Clock, loc *time.Location) time.Time {
	minutes := c.Minutes()
	return time.Date(d.Year, d.Month, d.Dom, minutes/60, minutes%60, 0, 0, loc)
}

func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BusinessDaysBetween returns every Monday–Friday from a to b inclusive, in
// ascending order. It returns nil when b is before a.
func BusinessDaysBetween(a, b Day) []Day {
	if b.Before(a) {
		return nil
	}
	var days []Day
	for d := a; !d.After(b); d = d.AddDays(1) {
		if d.IsBusinessDay() {
			days = append(days, d)
		}
	}
	return days
}
