package capacity

import (
	"math"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/rs/zerolog"
)

// Defaults fill in what a worker record leaves unset.
type Defaults struct {
	DailyCapacity float64
	Lunch         calendar.Window
}

// DefaultDefaults matches the organization's standard day: 7h, lunch 12h-13h.
func DefaultDefaults() Defaults {
	return Defaults{DailyCapacity: 7, Lunch: calendar.DefaultLunch}
}

// Profile is a worker's parsed capacity configuration.
type Profile struct {
	DailyCapacity float64
	Schedule      calendar.Window
	Lunch         calendar.Window
}

// ProfileFor parses a worker record. An unparsable schedule never blocks
// scheduling: it degrades to 9h-17h and is logged.
func ProfileFor(w *domain.Worker, defaults Defaults, logger zerolog.Logger) Profile {
	schedule, err := calendar.ScheduleOrDefault(w.Schedule)
	if err != nil {
		logger.Warn().
			Str("worker_id", w.ID).
			Str("schedule", w.Schedule).
			Err(err).
			Msg("unparsable schedule, using default window")
	}
	capHours := w.DailyCapacityHours
	if capHours <= 0 {
		capHours = defaults.DailyCapacity
	}
	return Profile{
		DailyCapacity: capHours,
		Schedule:      schedule,
		Lunch:         w.Lunch(defaults.Lunch),
	}
}

// Net is the net daily capacity: the configured ceiling or what the schedule
// physically provides after lunch, whichever is smaller.
func (p Profile) Net() float64 {
	return math.Max(0, math.Min(p.DailyCapacity, p.Schedule.NetHours(p.Lunch)))
}

// NetUntil is Net for a day cut off at clock c (a deadline time).
func (p Profile) NetUntil(c calendar.Clock) float64 {
	w := calendar.Window{Start: p.Schedule.Start, End: min(c, p.Schedule.End)}
	if !w.Valid() {
		return 0
	}
	return math.Max(0, math.Min(p.DailyCapacity, w.NetHours(p.Lunch)))
}

// Ledger answers capacity questions for one worker over a set of days from
// a snapshot of their commitments. It never touches storage.
type Ledger struct {
	profile   Profile
	committed map[calendar.Day]float64
}

// NewLedger sums commitments per day, skipping those owned by excludeTaskID.
func NewLedger(p Profile, commitments []domain.Commitment, excludeTaskID string) *Ledger {
	l := &Ledger{profile: p, committed: make(map[calendar.Day]float64)}
	for _, c := range commitments {
		if excludeTaskID != "" && c.TaskID == excludeTaskID {
			continue
		}
		l.committed[c.Date] += c.Hours
	}
	return l
}

func (l *Ledger) Profile() Profile { return l.profile }

// Committed returns the hours already committed on day.
func (l *Ledger) Committed(day calendar.Day) float64 { return l.committed[day] }

// Capacity returns the day's net capacity, shrunk to cutoff when one is given.
// Weekends have none.
func (l *Ledger) Capacity(day calendar.Day, cutoff *calendar.Clock) float64 {
	if !day.IsBusinessDay() {
		return 0
	}
	if cutoff != nil {
		return l.profile.NetUntil(*cutoff)
	}
	return l.profile.Net()
}

// Available is the room left on day, clamped at zero.
func (l *Ledger) Available(day calendar.Day) float64 {
	return l.AvailableUntil(day, nil)
}

// AvailableUntil is Available for a day cut off at cutoff.
func (l *Ledger) AvailableUntil(day calendar.Day, cutoff *calendar.Clock) float64 {
	return math.Max(0, l.Capacity(day, cutoff)-l.committed[day])
}

// Overflow reports by how much adding extra hours would exceed the day's
// capacity. The value is raw: negative means there is still room.
func (l *Ledger) Overflow(day calendar.Day, extra float64, cutoff *calendar.Clock) float64 {
	return l.committed[day] + extra - l.Capacity(day, cutoff)
}

// Reserve records hours as committed in this snapshot. Callers that place
// several entries in one pass use it so later entries see earlier ones.
func (l *Ledger) Reserve(day calendar.Day, hours float64) {
	l.committed[day] += hours
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{profile: l.profile, committed: make(map[calendar.Day]float64, len(l.committed))}
	for d, h := range l.committed {
		out.committed[d] = h
	}
	return out
}
