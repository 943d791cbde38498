package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "time/tzdata"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidClock    = errors.New("invalid time of day")
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrInvalidDeadline = errors.New("invalid deadline")
)

// DefaultTimezone is the organization-wide calendar ("Ottawa").
const DefaultTimezone = "America/Toronto"

// Calendar turns instants into Days and back in one fixed zone. Every
// day/time computation in the engine goes through a Calendar value rather
// than time.Local.
type Calendar struct {
	loc *time.Location
}

// New loads the named IANA zone.
func New(tzName string) (*Calendar, error) {
	if tzName == "" {
		tzName = DefaultTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", tzName, err)
	}
	return &Calendar{loc: loc}, nil
}

// MustNew is New for package-level defaults and tests.
func MustNew(tzName string) *Calendar {
	c, err := New(tzName)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calendar) Location() *time.Location { return c.loc }

// DayOf returns the organization-calendar day that contains t.
func (c *Calendar) DayOf(t time.Time) Day { return dayFromTime(t.In(c.loc)) }

// ClockOf returns the hour-of-day of t in the organization calendar.
func (c *Calendar) ClockOf(t time.Time) Clock {
	lt := t.In(c.loc)
	return Clock(float64(lt.Hour()) + float64(lt.Minute())/60 + float64(lt.Second())/3600)
}

// Deadline is a due date with an optional time-of-day. A nil Time is the
// legacy date-only form: the work is due by the end of that day's window.
type Deadline struct {
	Day  Day
	Time *Clock
}

func (d Deadline) HasTime() bool { return d.Time != nil }

func (d Deadline) String() string {
	if d.Time == nil {
		return d.Day.String()
	}
	return d.Day.String() + " " + d.Time.String()
}

// DateOnly drops the time-of-day.
func (d Deadline) DateOnly() Deadline { return Deadline{Day: d.Day} }

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDeadline accepts a bare YYYY-MM-DD date or an ISO timestamp.
// Timestamps carrying a zone are converted into the organization calendar;
// zoneless timestamps are read as organization-local.
func (c *Calendar) ParseDeadline(input string) (Deadline, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Deadline{}, fmt.Errorf("%w: empty", ErrInvalidDeadline)
	}
	if len(s) == len(dateLayout) {
		day, err := ParseDay(s)
		if err != nil {
			return Deadline{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, input)
		}
		return Deadline{Day: day}, nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, c.loc)
		if err != nil {
			continue
		}
		return c.DeadlineAt(t), nil
	}
	return Deadline{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, input)
}

// DeadlineAt converts an instant into a timed Deadline.
func (c *Calendar) DeadlineAt(t time.Time) Deadline {
	clock := c.ClockOf(t)
	return Deadline{Day: c.DayOf(t), Time: &clock}
}

// Instant returns the moment a deadline falls due. Date-only deadlines fall
// due at the end of the day.
func (c *Calendar) Instant(d Deadline) time.Time {
	if d.Time == nil {
		return d.Day.At(NewClock(24, 0), c.loc)
	}
	return d.Day.At(*d.Time, c.loc)
}
