package scheduler

import (
	"math"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
)

// Revalidate re-checks an allocation computed earlier (a preview) against
// the ledger as it stands now. It accepts the entries unchanged or returns
// a *ReportError listing everything that no longer fits.
func Revalidate(cal *calendar.Calendar, strategy domain.Strategy, req Request, ledger *capacity.Ledger, accepted []Entry) (Result, error) {
	var deadline *calendar.Deadline
	if req.Deadline.Day.IsZero() {
		if math.IsNaN(req.TotalHours) || req.TotalHours <= 0 {
			return Result{}, invalid("totalHours", "must be positive, got %v", req.TotalHours)
		}
	} else {
		if _, err := checkRequest(cal, req); err != nil {
			return Result{}, err
		}
		d := req.Deadline
		if !req.Options.TimestampAware {
			d = d.DateOnly()
		}
		deadline = &d
	}
	if len(accepted) == 0 {
		return Result{}, invalid("entries", "nothing to revalidate")
	}
	entries := SuggestWindows(ledger, accepted)
	report := Validate(ledger, entries, req.TotalHours, deadline)
	if !report.Valid {
		return Result{}, &ReportError{Report: report}
	}
	sortEntries(entries)
	return Result{Strategy: strategy, Entries: entries}, nil
}
