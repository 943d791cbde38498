package calendar

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Clock is an hour-of-day expressed in decimal hours (7.25 is 07:15).
type Clock float64

// NewClock builds a Clock from hours and minutes.
func NewClock(h, m int) Clock { return Clock(float64(h) + float64(m)/60) }

// Minutes rounds c to the nearest whole minute since midnight.
func (c Clock) Minutes() int { return int(math.Round(float64(c) * 60)) }

// String renders c the way schedules are written: "7h30", "9h".
func (c Clock) String() string {
	m := c.Minutes()
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02d", m/60, m%60)
}

func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

const clockExpr = `(\d{1,2})\s*(?:[hH:]\s*(\d{1,2})?)?`

var (
	clockPattern    = regexp.MustCompile(`^\s*` + clockExpr + `\s*$`)
	schedulePattern = regexp.MustCompile(`(?i)^\s*` + clockExpr + `\s*(?:-|–|—|à|a|to)\s*` + clockExpr + `\s*$`)
)

// ParseClock accepts "7h30", "7h", "07:30" and "7".
func ParseClock(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	c, ok := clockFromParts(m[1], m[2])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return c, nil
}

func clockFromParts(hours, minutes string) (Clock, bool) {
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	mm := 0
	if minutes != "" {
		mm, err = strconv.Atoi(minutes)
		if err != nil || mm < 0 || mm > 59 {
			return 0, false
		}
	}
	if h == 24 && mm > 0 {
		return 0, false
	}
	return NewClock(h, mm), true
}

// Window is a half-open interval of the day [Start, End).
type Window struct {
	Start Clock
	End   Clock
}

var (
	DefaultSchedule = Window{Start: NewClock(9, 0), End: NewClock(17, 0)}
	DefaultLunch    = Window{Start: NewClock(12, 0), End: NewClock(13, 0)}
)

// Hours returns the window length, zero for an empty or inverted window.
func (w Window) Hours() float64 { return math.Max(0, float64(w.End-w.Start)) }

func (w Window) Valid() bool { return w.Start < w.End }

// Contains reports whether c lies inside the closed window [Start, End].
func (w Window) Contains(c Clock) bool { return c >= w.Start && c <= w.End }

// Intersect returns the overlap of w and o; ok is false when they do not overlap.
func (w Window) Intersect(o Window) (Window, bool) {
	out := Window{Start: max(w.Start, o.Start), End: min(w.End, o.End)}
	return out, out.Valid()
}

// Overlap returns the number of hours w and o share.
func (w Window) Overlap(o Window) float64 {
	in, ok := w.Intersect(o)
	if !ok {
		return 0
	}
	return in.Hours()
}

// NetHours is the window length minus whatever part of it falls in lunch.
func (w Window) NetHours(lunch Window) float64 {
	return w.Hours() - w.Overlap(lunch)
}

func (w Window) String() string { return w.Start.String() + "-" + w.End.String() }

// ParseSchedule parses free-text working hours such as "9h-17h",
// "08:00-16:00", "7h15-15h15" or "9h 30 - 17h 30".
func ParseSchedule(text string) (Window, error) {
	m := schedulePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, text)
	}
	start, ok := clockFromParts(m[1], m[2])
	if !ok {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, text)
	}
	end, ok := clockFromParts(m[3], m[4])
	if !ok {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, text)
	}
	w := Window{Start: start, End: end}
	if !w.Valid() {
		return Window{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidSchedule, text)
	}
	return w, nil
}

// ScheduleOrDefault parses text and falls back to DefaultSchedule. The
// returned error is non-nil only to let callers log the fallback.
func ScheduleOrDefault(text string) (Window, error) {
	if strings.TrimSpace(text) == "" {
		return DefaultSchedule, nil
	}
	w, err := ParseSchedule(text)
	if err != nil {
		return DefaultSchedule, err
	}
	return w, nil
}
