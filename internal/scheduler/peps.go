package scheduler

import (
	"fmt"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
)

// PEPS front-loads work from the start date onward.
type PEPS struct {
	cal *calendar.Calendar
}

func NewPEPS(cal *calendar.Calendar) *PEPS { return &PEPS{cal: cal} }

func (s *PEPS) Name() domain.Strategy { return domain.StrategyPEPS }

func (s *PEPS) Allocate(req Request, ledger *capacity.Ledger) (Result, error) {
	today, err := checkRequest(s.cal, req)
	if err != nil {
		return Result{}, err
	}
	start := startDay(req, today)
	profile := ledger.Profile()

	remaining := req.TotalHours
	var entries []Entry
	for _, day := range calendar.BusinessDaysBetween(start, req.Deadline.Day) {
		if remaining <= capacityTolerance {
			break
		}
		h := min(ledger.AvailableUntil(day, req.cutoff(day)), remaining)
		if h <= capacityTolerance {
			continue
		}
		w := placeForward(profile, ledger.Committed(day), h)
		entries = append(entries, entryFor(day, h, w))
		remaining -= h
	}
	if remaining > capacityTolerance {
		return Result{}, &CapacityError{
			Requested: req.TotalHours,
			Available: req.TotalHours - remaining,
			Reason:    fmt.Sprintf("%.2fh left unplaced over %s", remaining, describeRange(start, req.Deadline.Day)),
		}
	}
	return Result{Strategy: domain.StrategyPEPS, Entries: entries}, nil
}
