package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
)

// Worker carries the capacity configuration the allocation engine reads.
// Schedule is free text as typed into the worker record ("9h-17h").
type Worker struct {
	ID                 string
	Name               string
	DailyCapacityHours float64
	Schedule           string
	LunchStart         *calendar.Clock
	LunchEnd           *calendar.Clock
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Lunch returns the worker's configured lunch window, or fallback when the
// record has none (or an unusable one).
func (w *Worker) Lunch(fallback calendar.Window) calendar.Window {
	if w.LunchStart == nil || w.LunchEnd == nil {
		return fallback
	}
	lunch := calendar.Window{Start: *w.LunchStart, End: *w.LunchEnd}
	if !lunch.Valid() {
		return fallback
	}
	return lunch
}

// Validate checks the fields a worker record cannot do without. The schedule
// is deliberately not checked: an unparsable one falls back to the default.
func (w *Worker) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("worker name is required")
	}
	if w.DailyCapacityHours < 0 || w.DailyCapacityHours > 24 {
		return fmt.Errorf("daily capacity %.2fh must be between 0 and 24", w.DailyCapacityHours)
	}
	if (w.LunchStart == nil) != (w.LunchEnd == nil) {
		return fmt.Errorf("lunch start and end must be set together")
	}
	if w.LunchStart != nil && *w.LunchStart >= *w.LunchEnd {
		return fmt.Errorf("lunch start %s must be before lunch end %s", w.LunchStart, w.LunchEnd)
	}
	return nil
}
