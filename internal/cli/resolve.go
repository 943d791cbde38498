package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/tj/go-naturaldate"
)

// resolveWorkerID accepts a worker's full ID, an ID prefix or their name.
func resolveWorkerID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("worker is required")
	}

	workers, err := app.Workers.List(ctx)
	if err != nil {
		return "", err
	}

	// 1. Exact UUID match
	for _, w := range workers {
		if w.ID == input {
			return w.ID, nil
		}
	}

	// 2. Name match (case-insensitive)
	var matches []string
	for _, w := range workers {
		if strings.EqualFold(w.Name, input) {
			matches = append(matches, w.ID)
		}
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("worker name %q is ambiguous (%d matches)", input, len(matches))
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	// 3. UUID prefix match
	for _, w := range workers {
		if strings.HasPrefix(w.ID, input) {
			matches = append(matches, w.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("worker not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("worker ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// parseDay reads a YYYY-MM-DD day, falling back to natural phrases such as
// "tomorrow" or "next friday" relative to the app's clock.
func parseDay(app *App, input string) (calendar.Day, error) {
	if d, err := calendar.ParseDay(input); err == nil {
		return d, nil
	}
	if strings.EqualFold(strings.TrimSpace(input), "today") {
		return app.today(), nil
	}
	ref := app.now().In(app.Calendar.Location())
	t, err := naturaldate.Parse(input, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil || t.Equal(ref) {
		return calendar.Day{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or a phrase like \"next monday\"", input)
	}
	return app.Calendar.DayOf(t), nil
}

// parseOptionalDay is parseDay for flags that may be left empty.
func parseOptionalDay(app *App, input string) (*calendar.Day, error) {
	if input == "" {
		return nil, nil
	}
	d, err := parseDay(app, input)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDeadlineFlag accepts what the calendar accepts and, failing that, a
// natural phrase that resolves to a date-only deadline.
func parseDeadlineFlag(app *App, input string) (string, error) {
	if _, err := app.Calendar.ParseDeadline(input); err == nil {
		return input, nil
	}
	d, err := parseDay(app, input)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func parseWindow(start, end string) (calendar.Window, error) {
	s, err := calendar.ParseClock(start)
	if err != nil {
		return calendar.Window{}, fmt.Errorf("invalid start %q: %w", start, err)
	}
	e, err := calendar.ParseClock(end)
	if err != nil {
		return calendar.Window{}, fmt.Errorf("invalid end %q: %w", end, err)
	}
	return calendar.Window{Start: s, End: e}, nil
}

func dayRange(app *App, from, to string, defaultDays int) (calendar.Day, calendar.Day, error) {
	start := app.today()
	if from != "" {
		d, err := parseDay(app, from)
		if err != nil {
			return calendar.Day{}, calendar.Day{}, err
		}
		start = d
	}
	end := start.AddDays(defaultDays)
	if to != "" {
		d, err := parseDay(app, to)
		if err != nil {
			return calendar.Day{}, calendar.Day{}, err
		}
		end = d
	}
	if end.Before(start) {
		return calendar.Day{}, calendar.Day{}, fmt.Errorf("--to %s is before --from %s", end, start)
	}
	return start, end, nil
}
