package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/stretchr/testify/assert"
)

func clockPtr(h, m int) *calendar.Clock {
	c := calendar.NewClock(h, m)
	return &c
}

func TestFormatWorkerList(t *testing.T) {
	workers := []*domain.Worker{
		{ID: "11111111-aaaa", Name: "Amélie", Schedule: "7h30-15h30", DailyCapacityHours: 7,
			LunchStart: clockPtr(11, 30), LunchEnd: clockPtr(12, 0)},
		{ID: "22222222-bbbb", Name: "Bruno", DailyCapacityHours: 6.5},
	}

	out := stripANSI(FormatWorkerList(workers))
	assert.Contains(t, out, "Amélie")
	assert.Contains(t, out, "7h30-15h30")
	assert.Contains(t, out, "11h30-12h")
	assert.Contains(t, out, "11111111")
	assert.NotContains(t, out, "aaaa")
	assert.Contains(t, out, "9h-17h (default)")
	assert.Contains(t, out, "6h 30m/day")
}

func TestFormatWorker_FallbackLunch(t *testing.T) {
	w := &domain.Worker{ID: "w-1", Name: "Chloé", Schedule: "8h-16h", DailyCapacityHours: 7}

	out := stripANSI(FormatWorker(w, calendar.DefaultLunch))
	assert.Contains(t, out, "CHLOÉ")
	assert.Contains(t, out, "12h-13h (default)")
	assert.Contains(t, out, "7h per day")
}

func TestFormatValidationReport(t *testing.T) {
	assert.Contains(t, FormatValidationReport(&scheduler.ValidationReport{Valid: true}), "valid")

	day := calendar.NewDay(2025, time.March, 17)
	out := stripANSI(FormatValidationReport(&scheduler.ValidationReport{
		Issues: []scheduler.Issue{
			{Kind: scheduler.IssueCapacity, Date: &day, Message: "requested 9h, 7h available"},
			{Kind: scheduler.IssueTotal, Message: "entries sum to 9h, expected 10h"},
		},
	}))
	assert.Contains(t, out, "2 issue(s)")
	assert.Contains(t, out, "CAPACITY 2025-03-17  requested 9h, 7h available")
	assert.Contains(t, out, "TOTAL  entries sum to 9h, expected 10h")
}

func TestFormatAvailability_MarksBottleneck(t *testing.T) {
	a := &service.Availability{
		Day:        calendar.NewDay(2025, time.March, 17),
		ByWorker:   map[string]float64{"w-a": 7, "w-b": 5},
		Combined:   12,
		Bottleneck: 5,
	}

	out := stripANSI(FormatAvailability(a, map[string]string{"w-a": "Amélie", "w-b": "Bruno"}))
	assert.Contains(t, out, "AVAILABLE 2025-03-17")
	assert.Contains(t, out, "Bruno")
	assert.Contains(t, out, "5h ◂ bottleneck")
	assert.NotContains(t, out, "7h ◂")
	assert.Contains(t, out, "Combined 12h")
}

func TestFormatAvailability_SingleWorkerHasNoCombinedLine(t *testing.T) {
	a := &service.Availability{
		Day:        calendar.NewDay(2025, time.March, 17),
		ByWorker:   map[string]float64{"0123456789": 4},
		Combined:   4,
		Bottleneck: 4,
	}

	out := stripANSI(FormatAvailability(a, nil))
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "bottleneck")
	assert.NotContains(t, out, "Combined")
}

func TestFormatCommitments(t *testing.T) {
	monday := calendar.NewDay(2025, time.March, 17)
	cs := []service.ScheduledCommitment{
		{Commitment: domain.Commitment{TaskID: "task-1", Date: monday, Hours: 3, Kind: domain.KindTask},
			Title: "Rapport", Strategy: domain.StrategyJAT},
		{Commitment: domain.Commitment{TaskID: "block-1", Date: monday, Hours: 2, Kind: domain.KindBlock,
			StartTime: clockPtr(9, 0), EndTime: clockPtr(11, 0)}, Title: "Dentiste"},
		{Commitment: domain.Commitment{TaskID: "task-1", Date: monday.AddDays(1), Hours: 7, Kind: domain.KindTask},
			Title: "Rapport", Strategy: domain.StrategyJAT},
	}

	out := stripANSI(FormatCommitments(cs, 7))
	assert.Contains(t, out, "Rapport")
	assert.Contains(t, out, "Dentiste")
	assert.Contains(t, out, "9h-11h")
	assert.Contains(t, out, "■ block")
	assert.Contains(t, out, "LOAD")
	assert.Contains(t, out, "5h/7h")
	assert.Contains(t, out, "7h/7h")
}
