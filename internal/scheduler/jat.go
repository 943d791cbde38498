package scheduler

import (
	"fmt"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
)

// JAT fills backward from the deadline so work finishes as late as possible.
type JAT struct {
	cal *calendar.Calendar
}

func NewJAT(cal *calendar.Calendar) *JAT { return &JAT{cal: cal} }

func (s *JAT) Name() domain.Strategy { return domain.StrategyJAT }

func (s *JAT) room(req Request, ledger *capacity.Ledger, day calendar.Day) float64 {
	r := ledger.AvailableUntil(day, req.cutoff(day))
	if req.Options.MorningDelivery && day == req.Deadline.Day {
		r = min(r, req.Options.morningCap())
	}
	return r
}

func (s *JAT) Allocate(req Request, ledger *capacity.Ledger) (Result, error) {
	today, err := checkRequest(s.cal, req)
	if err != nil {
		return Result{}, err
	}
	floor := startDay(req, today)

	var total float64
	for _, d := range calendar.BusinessDaysBetween(floor, req.Deadline.Day) {
		total += s.room(req, ledger, d)
	}
	if req.TotalHours > total+capacityTolerance {
		return Result{}, &CapacityError{
			Requested: req.TotalHours,
			Available: total,
			Reason:    describeRange(floor, req.Deadline.Day),
		}
	}

	profile := ledger.Profile()
	remaining := req.TotalHours
	var entries []Entry
	day := req.Deadline.Day
	for i := 0; i < MaxBackwardDays && remaining > capacityTolerance && !day.Before(floor); i++ {
		if day.IsBusinessDay() {
			h := min(s.room(req, ledger, day), remaining)
			if h > capacityTolerance {
				var w calendar.Window
				if cutoff := req.cutoff(day); cutoff != nil {
					w = placeBackward(profile, *cutoff, h)
				} else {
					w = placeForward(profile, ledger.Committed(day), h)
				}
				entries = append(entries, entryFor(day, h, w))
				remaining -= h
			}
		}
		day = day.AddDays(-1)
	}
	if remaining > capacityTolerance {
		return Result{}, &CapacityError{
			Requested: req.TotalHours,
			Available: req.TotalHours - remaining,
			Reason:    fmt.Sprintf("nothing placeable within %d days of the deadline", MaxBackwardDays),
		}
	}

	sortEntries(entries)
	return Result{Strategy: domain.StrategyJAT, Entries: entries}, nil
}
