package scheduler

import (
	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/shopspring/decimal"
)

// Chargeable is how much of a requested block consumes capacity: its overlap
// with the working hours, minus lunch, rounded to hundredths.
func Chargeable(p capacity.Profile, requested calendar.Window) (float64, error) {
	if !requested.Valid() {
		return 0, invalid("window", "start %s is not before end %s", requested.Start, requested.End)
	}
	in, ok := requested.Intersect(p.Schedule)
	if !ok {
		return 0, nil
	}
	return decimal.NewFromFloat(in.NetHours(p.Lunch)).Round(2).InexactFloat64(), nil
}

// BlockEntry is the commitment entry for a time block on day. Weekend blocks
// are kept with their window but charge nothing.
func BlockEntry(p capacity.Profile, day calendar.Day, requested calendar.Window) (Entry, error) {
	hours, err := Chargeable(p, requested)
	if err != nil {
		return Entry{}, err
	}
	if !day.IsBusinessDay() {
		hours = 0
	}
	return entryFor(day, hours, requested), nil
}
