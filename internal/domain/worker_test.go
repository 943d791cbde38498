package domain

import (
	"testing"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) *calendar.Clock {
	c := calendar.NewClock(h, m)
	return &c
}

func TestWorkerValidate_Valid(t *testing.T) {
	cases := []*Worker{
		{Name: "Amélie", DailyCapacityHours: 7},
		{Name: "Bruno", DailyCapacityHours: 0, Schedule: "n'importe quoi"},
		{Name: "Chloé", DailyCapacityHours: 7.5, LunchStart: clock(11, 30), LunchEnd: clock(12, 15)},
	}
	for _, w := range cases {
		assert.NoError(t, w.Validate(), "should accept %q", w.Name)
	}
}

func TestWorkerValidate_Rejections(t *testing.T) {
	cases := map[string]struct {
		w    *Worker
		want string
	}{
		"empty name":        {&Worker{Name: "  ", DailyCapacityHours: 7}, "required"},
		"negative capacity": {&Worker{Name: "A", DailyCapacityHours: -1}, "between 0 and 24"},
		"absurd capacity":   {&Worker{Name: "A", DailyCapacityHours: 30}, "between 0 and 24"},
		"half lunch":        {&Worker{Name: "A", LunchStart: clock(12, 0)}, "together"},
		"inverted lunch":    {&Worker{Name: "A", LunchStart: clock(13, 0), LunchEnd: clock(12, 0)}, "before lunch end"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.w.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestWorkerLunch_FallsBackWhenUnset(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, calendar.DefaultLunch, w.Lunch(calendar.DefaultLunch))

	w.LunchStart, w.LunchEnd = clock(11, 0), clock(11, 45)
	assert.Equal(t, calendar.Window{Start: calendar.NewClock(11, 0), End: calendar.NewClock(11, 45)}, w.Lunch(calendar.DefaultLunch))
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"jat": StrategyJAT, " PEPS ": StrategyPEPS, "équilibré": StrategyEquilibre,
		"EQUILIBRE": StrategyEquilibre, "Manual": StrategyManual,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseStrategy("ASAP")
	assert.Error(t, err)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", CoalesceStr("", "b", "c"))
	assert.Equal(t, "", CoalesceStr())
	v := 6.5
	assert.Equal(t, 6.5, Float64FromPtrWithDefault(7, nil, &v))
	assert.Equal(t, 7.0, Float64FromPtrWithDefault(7))
}
