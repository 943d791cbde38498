package scheduler

import (
	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/shopspring/decimal"
)

// Equilibre spreads a task evenly over the open business days in range.
// Arithmetic is done in integer hundredths of an hour.
type Equilibre struct {
	cal *calendar.Calendar
}

func NewEquilibre(cal *calendar.Calendar) *Equilibre { return &Equilibre{cal: cal} }

func (s *Equilibre) Name() domain.Strategy { return domain.StrategyEquilibre }

type balancedDay struct {
	day    calendar.Day
	avail  int64
	alloc  int64
	availH float64
}

func toHundredths(h float64) int64 {
	return decimal.NewFromFloat(h).Round(4).Shift(2).Floor().IntPart()
}

func fromHundredths(c int64) decimal.Decimal {
	return decimal.NewFromInt(c).Shift(-2)
}

func (s *Equilibre) Allocate(req Request, ledger *capacity.Ledger) (Result, error) {
	today, err := checkRequest(s.cal, req)
	if err != nil {
		return Result{}, err
	}
	start := startDay(req, today)

	var days []*balancedDay
	var sumAvail float64
	for _, d := range calendar.BusinessDaysBetween(start, req.Deadline.Day) {
		a := ledger.AvailableUntil(d, req.cutoff(d))
		if a <= capacityTolerance {
			continue
		}
		days = append(days, &balancedDay{day: d, avail: toHundredths(a), availH: a})
		sumAvail += a
	}
	if len(days) == 0 {
		return Result{}, &CapacityError{
			Requested: req.TotalHours,
			Reason:    "period already saturated " + describeRange(start, req.Deadline.Day),
		}
	}
	if req.TotalHours > sumAvail+capacityTolerance {
		return Result{}, &CapacityError{
			Requested: req.TotalHours,
			Available: sumAvail,
			Reason:    describeRange(start, req.Deadline.Day),
		}
	}

	total := decimal.NewFromFloat(req.TotalHours)
	totalC := total.Shift(2).Floor().IntPart()
	fraction := total.Sub(fromHundredths(totalC))

	remaining, _ := spreadEvenly(days, totalC)

	hours := make([]decimal.Decimal, len(days))
	for i, d := range days {
		hours[i] = fromHundredths(d.alloc)
	}
	// Unplaced hundredths and the sub-hundredth part of the total go into the
	// room each day keeps below its rounded-down availability, latest first.
	leftover := fromHundredths(remaining).Add(fraction)
	for i := len(days) - 1; i >= 0 && leftover.IsPositive(); i-- {
		room := decimal.NewFromFloat(days[i].availH).Sub(hours[i])
		if !room.IsPositive() {
			continue
		}
		add := decimal.Min(room, leftover)
		hours[i] = hours[i].Add(add)
		leftover = leftover.Sub(add)
	}
	if leftover.InexactFloat64() > residualTolerance {
		return Result{}, &CapacityError{
			Requested: req.TotalHours,
			Available: req.TotalHours - leftover.InexactFloat64(),
			Reason:    "residual could not be redistributed",
		}
	}

	profile := ledger.Profile()
	entries := make([]Entry, 0, len(days))
	for i, d := range days {
		h := hours[i].InexactFloat64()
		if h <= 0 {
			continue
		}
		w := placeForward(profile, ledger.Committed(d.day), h)
		entries = append(entries, entryFor(d.day, h, w))
	}
	return Result{Strategy: domain.StrategyEquilibre, Entries: entries}, nil
}

// spreadEvenly splits total hundredths over days, clamped to each day's
// availability, then runs at most MaxCorrectionPasses passes moving the
// clamped shortfall onto days with room. It returns what is left unplaced
// and the number of passes run.
func spreadEvenly(days []*balancedDay, total int64) (remaining int64, passes int) {
	remaining = total
	for i, d := range days {
		target := remaining / int64(len(days)-i)
		d.alloc = min(target, d.avail)
		remaining -= d.alloc
	}

	for ; passes < MaxCorrectionPasses && remaining > 0; passes++ {
		var open []*balancedDay
		for _, d := range days {
			if d.alloc < d.avail {
				open = append(open, d)
			}
		}
		if len(open) == 0 {
			break
		}
		share := max(1, remaining/int64(len(open)))
		for _, d := range open {
			add := min(share, d.avail-d.alloc, remaining)
			d.alloc += add
			remaining -= add
			if remaining == 0 {
				break
			}
		}
	}
	return remaining, passes
}
