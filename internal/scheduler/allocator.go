package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
)

const (
	// MaxBackwardDays bounds the JAT walk from the deadline.
	MaxBackwardDays = 90

	// MaxCorrectionPasses bounds the EQUILIBRE residual redistribution.
	MaxCorrectionPasses = 100

	// DefaultMorningDeliveryCap is the deadline-day ceiling in morning-delivery mode.
	DefaultMorningDeliveryCap = 2.0

	capacityTolerance = 1e-6
	totalTolerance    = 1e-4
	residualTolerance = 1e-3
)

// Options tune a request.
type Options struct {
	// TimestampAware makes the deadline's time-of-day count: past-deadline
	// checks become instant-granular and the deadline day is cut off at that time.
	TimestampAware bool `json:"timestampAware"`

	// MorningDelivery caps the deadline day so the bulk of the work lands on
	// the days before it.
	MorningDelivery    bool    `json:"morningDelivery"`
	MorningDeliveryCap float64 `json:"morningDeliveryCap,omitempty"`
}

func (o Options) morningCap() float64 {
	if o.MorningDeliveryCap > 0 {
		return o.MorningDeliveryCap
	}
	return DefaultMorningDeliveryCap
}

// Entry is one day of an allocation. Start and end are filled in whenever a
// window was computed or supplied.
type Entry struct {
	Date      calendar.Day    `json:"date"`
	Hours     float64         `json:"hours"`
	StartTime *calendar.Clock `json:"startTime,omitempty"`
	EndTime   *calendar.Clock `json:"endTime,omitempty"`
}

// Window returns the entry's time window when both ends are set.
func (e Entry) Window() (calendar.Window, bool) {
	if e.StartTime == nil || e.EndTime == nil {
		return calendar.Window{}, false
	}
	return calendar.Window{Start: *e.StartTime, End: *e.EndTime}, true
}

// Request is an ephemeral allocation request.
type Request struct {
	WorkerID   string
	TotalHours float64
	Deadline   calendar.Deadline
	StartDate  *calendar.Day
	Now        time.Time
	Options    Options

	// Entries are the caller's per-day hours in MANUAL mode.
	Entries []Entry
}

// cutoff returns the deadline time when it must shrink day's capacity.
func (r Request) cutoff(day calendar.Day) *calendar.Clock {
	if r.Options.TimestampAware && r.Deadline.Time != nil && day == r.Deadline.Day {
		return r.Deadline.Time
	}
	return nil
}

// Span returns the range of days whose commitments a strategy may consult.
func Span(r Request, today calendar.Day) (from, to calendar.Day) {
	from, to = today, r.Deadline.Day
	if r.StartDate != nil && r.StartDate.Before(from) {
		from = *r.StartDate
	}
	for _, e := range r.Entries {
		if e.Date.Before(from) {
			from = e.Date
		}
		if to.IsZero() || e.Date.After(to) {
			to = e.Date
		}
	}
	if to.Before(from) {
		to = from
	}
	return from, to
}

// Result is an ordered allocation.
type Result struct {
	Strategy domain.Strategy `json:"strategy"`
	Entries  []Entry         `json:"entries"`
}

// Total sums the allocated hours.
func (r Result) Total() float64 {
	var sum float64
	for _, e := range r.Entries {
		sum += e.Hours
	}
	return sum
}

// Strategy decides which days and windows a request occupies. Implementations
// are pure: everything they know about existing commitments comes from the
// ledger, which they must not mutate.
type Strategy interface {
	Name() domain.Strategy
	Allocate(req Request, ledger *capacity.Ledger) (Result, error)
}

// For returns the implementation of the named strategy.
func For(name domain.Strategy, cal *calendar.Calendar) (Strategy, error) {
	switch name {
	case domain.StrategyJAT:
		return &JAT{cal: cal}, nil
	case domain.StrategyPEPS:
		return &PEPS{cal: cal}, nil
	case domain.StrategyEquilibre:
		return &Equilibre{cal: cal}, nil
	case domain.StrategyManual:
		return &Manual{cal: cal}, nil
	default:
		return nil, invalid("strategy", "unknown strategy %q", name)
	}
}

// checkRequest runs the validation shared by the fill strategies and returns
// today's date in the organization calendar.
func checkRequest(cal *calendar.Calendar, req Request) (calendar.Day, error) {
	if math.IsNaN(req.TotalHours) || math.IsInf(req.TotalHours, 0) || req.TotalHours <= 0 {
		return calendar.Day{}, invalid("totalHours", "must be positive, got %v", req.TotalHours)
	}
	if req.Deadline.Day.IsZero() {
		return calendar.Day{}, invalid("deadline", "is required")
	}
	today := cal.DayOf(req.Now)
	if req.Options.TimestampAware && req.Deadline.HasTime() {
		if cal.Instant(req.Deadline).Before(req.Now) {
			return calendar.Day{}, invalid("deadline", "%s is already past", req.Deadline)
		}
	} else if req.Deadline.Day.Before(today) {
		return calendar.Day{}, invalid("deadline", "%s is already past", req.Deadline.Day)
	}
	if req.StartDate != nil && req.StartDate.After(req.Deadline.Day) {
		return calendar.Day{}, invalid("startDate", "%s is after the deadline %s", req.StartDate, req.Deadline.Day)
	}
	return today, nil
}

// startDay is the first day a forward fill may use: the requested start,
// never earlier than today.
func startDay(req Request, today calendar.Day) calendar.Day {
	if req.StartDate != nil && req.StartDate.After(today) {
		return *req.StartDate
	}
	return today
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

func clockPtr(c calendar.Clock) *calendar.Clock { return &c }

func describeRange(from, to calendar.Day) string {
	if from == to {
		return from.String()
	}
	return fmt.Sprintf("%s..%s", from, to)
}
