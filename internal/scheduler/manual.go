package scheduler

import (
	"errors"
	"fmt"
	"math"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
)

// IssueKind classifies a validation issue.
type IssueKind string

const (
	IssueTotal       IssueKind = "TOTAL"
	IssueCapacity    IssueKind = "CAPACITY"
	IssueIncoherence IssueKind = "INCOHERENCE"
	IssueInput       IssueKind = "INPUT"
)

// Issue is one problem found in a manual allocation.
type Issue struct {
	Kind      IssueKind     `json:"kind"`
	Date      *calendar.Day `json:"date,omitempty"`
	Message   string        `json:"message"`
	Requested float64       `json:"requested,omitempty"`
	Available float64       `json:"available,omitempty"`
	Err       error         `json:"-"`
}

// ValidationReport collects every issue in a manual allocation.
type ValidationReport struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

func (r *ValidationReport) add(kind IssueKind, day *calendar.Day, err error) {
	is := Issue{Kind: kind, Date: day, Message: err.Error(), Err: err}
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		is.Requested, is.Available = capErr.Requested, capErr.Available
	}
	r.Issues = append(r.Issues, is)
}

// Manual takes the caller's per-day hours, fills in missing windows and
// rejects the whole allocation if any entry is invalid.
type Manual struct {
	cal *calendar.Calendar
}

func NewManual(cal *calendar.Calendar) *Manual { return &Manual{cal: cal} }

func (s *Manual) Name() domain.Strategy { return domain.StrategyManual }

func (s *Manual) Allocate(req Request, ledger *capacity.Ledger) (Result, error) {
	if len(req.Entries) == 0 {
		return Result{}, invalid("entries", "manual allocation needs at least one entry")
	}
	var deadline *calendar.Deadline
	if !req.Deadline.Day.IsZero() {
		d := req.Deadline
		if !req.Options.TimestampAware {
			d = d.DateOnly()
		}
		deadline = &d
	}
	entries := SuggestWindows(ledger, req.Entries)
	report := Validate(ledger, entries, req.TotalHours, deadline)
	if !report.Valid {
		return Result{}, &ReportError{Report: report}
	}
	sortEntries(entries)
	return Result{Strategy: domain.StrategyManual, Entries: entries}, nil
}

// SuggestWindows fills in start and end for entries that lack them. Each
// window begins at the earliest point of the day left after the hours already
// committed and after earlier entries on the same day. Entries that carry
// both times are returned unchanged, and so are entries whose window would
// run past the end of the working day.
func SuggestWindows(ledger *capacity.Ledger, entries []Entry) []Entry {
	scratch := ledger.Clone()
	profile := ledger.Profile()
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.StartTime != nil && e.EndTime != nil {
			scratch.Reserve(e.Date, e.Hours)
			continue
		}
		if e.Hours <= 0 {
			continue
		}
		w := placeForward(profile, scratch.Committed(e.Date), e.Hours)
		if float64(w.End) <= float64(profile.Schedule.End)+capacityTolerance {
			out[i] = entryFor(e.Date, e.Hours, w)
		}
		scratch.Reserve(e.Date, e.Hours)
	}
	return out
}

// Validate checks a (possibly hand-edited) manual allocation and collects
// every violation. deadline, when it carries a time, shrinks the deadline
// day's capacity.
func Validate(ledger *capacity.Ledger, entries []Entry, expectedTotal float64, deadline *calendar.Deadline) ValidationReport {
	var report ValidationReport
	profile := ledger.Profile()

	var sum float64
	for _, e := range entries {
		sum += e.Hours
	}
	if math.Abs(sum-expectedTotal) > totalTolerance {
		report.add(IssueTotal, nil, invalid("hours",
			"entries sum to %.2fh but the task needs %.2fh", sum, expectedTotal))
	}

	running := make(map[calendar.Day]float64)
	for _, e := range entries {
		day := e.Date
		if math.IsNaN(e.Hours) || e.Hours < 0 {
			report.add(IssueInput, &day, invalid("hours", "%s: hours must not be negative", day))
			continue
		}
		if deadline != nil && day.After(deadline.Day) {
			report.add(IssueInput, &day, invalid("date", "%s is after the deadline %s", day, deadline.Day))
		}

		var cutoff *calendar.Clock
		if deadline != nil && deadline.Time != nil && day == deadline.Day {
			cutoff = deadline.Time
		}
		if over := ledger.Overflow(day, running[day]+e.Hours, cutoff); over > capacityTolerance {
			reason := fmt.Sprintf("over by %.2fh", over)
			if !day.IsBusinessDay() {
				reason = "weekend"
			}
			report.add(IssueCapacity, &day, &CapacityError{
				Day:       &day,
				Requested: e.Hours,
				Available: e.Hours - over,
				Reason:    reason,
			})
		}
		running[day] += e.Hours

		switch {
		case e.StartTime == nil && e.EndTime == nil:
		case e.StartTime == nil || e.EndTime == nil:
			report.add(IssueIncoherence, &day, &InconsistencyError{Day: day, Message: "start and end must be given together"})
		default:
			validateWindow(&report, profile, day, e)
		}
	}

	report.Valid = len(report.Issues) == 0
	return report
}

func validateWindow(report *ValidationReport, p capacity.Profile, day calendar.Day, e Entry) {
	w, _ := e.Window()
	if !w.Valid() {
		report.add(IssueInput, &day, invalid("window", "%s: start %s is not before end %s", day, w.Start, w.End))
		return
	}
	if float64(w.Start) < float64(p.Schedule.Start)-capacityTolerance || float64(w.End) > float64(p.Schedule.End)+capacityTolerance {
		report.add(IssueIncoherence, &day, &InconsistencyError{
			Day:     day,
			Message: fmt.Sprintf("window %s is outside the working hours %s", w, p.Schedule),
		})
	}
	if net := w.NetHours(p.Lunch); math.Abs(net-e.Hours) > totalTolerance {
		report.add(IssueIncoherence, &day, &InconsistencyError{
			Day:     day,
			Message: fmt.Sprintf("window %s holds %.2fh of work but %.2fh were declared", w, net, e.Hours),
		})
	}
}
