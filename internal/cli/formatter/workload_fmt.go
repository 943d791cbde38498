package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/alexanderramin/workload/internal/service"
)

// FormatWorkerList renders workers as a table.
func FormatWorkerList(workers []*domain.Worker) string {
	headers := []string{"ID", "NAME", "SCHEDULE", "LUNCH", "CAPACITY"}
	rows := make([][]string, 0, len(workers))
	for _, w := range workers {
		rows = append(rows, []string{
			TruncID(w.ID),
			Bold(w.Name),
			scheduleText(w.Schedule),
			WindowText(w.LunchStart, w.LunchEnd),
			FormatHours(w.DailyCapacityHours) + Dim("/day"),
		})
	}
	return RenderTable(headers, rows)
}

// FormatWorker renders one worker's settings in a box. fallbackLunch is
// shown when the worker has no lunch of their own.
func FormatWorker(w *domain.Worker, fallbackLunch calendar.Window) string {
	lunch := WindowText(w.LunchStart, w.LunchEnd)
	if w.LunchStart == nil {
		lunch = fallbackLunch.String() + Dim(" (default)")
	}
	lines := []string{
		fmt.Sprintf("%s  %s", Dim("ID      "), w.ID),
		fmt.Sprintf("%s  %s", Dim("Schedule"), scheduleText(w.Schedule)),
		fmt.Sprintf("%s  %s", Dim("Lunch   "), lunch),
		fmt.Sprintf("%s  %s", Dim("Capacity"), FormatHours(w.DailyCapacityHours)+" per day"),
	}
	return RenderBox(w.Name, strings.Join(lines, "\n"))
}

func scheduleText(s string) string {
	if s == "" {
		return calendar.DefaultSchedule.String() + Dim(" (default)")
	}
	return s
}

// FormatAllocation renders a strategy result day by day with its total.
func FormatAllocation(res scheduler.Result, today calendar.Day) string {
	headers := []string{"DATE", "WHEN", "HOURS", "WINDOW"}
	rows := make([][]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		hours := FormatHours(e.Hours)
		if e.Hours <= 0 {
			hours = Dim(hours)
		}
		rows = append(rows, []string{
			DayLabel(e.Date),
			Dim(RelativeDay(e.Date, today)),
			hours,
			WindowText(e.StartTime, e.EndTime),
		})
	}

	var b strings.Builder
	b.WriteString(Header("Allocation") + "  " + StrategyBadge(res.Strategy) + "\n\n")
	b.WriteString(RenderTable(headers, rows))
	b.WriteString(fmt.Sprintf("\n%s %s over %d day(s)\n", Dim("Total"), Bold(FormatHours(res.Total())), len(res.Entries)))
	return b.String()
}

// FormatValidationReport renders a manual validation outcome.
func FormatValidationReport(r *scheduler.ValidationReport) string {
	if r.Valid {
		return StyleGreen.Render("✔ Allocation is valid")
	}
	var b strings.Builder
	b.WriteString(StyleRed.Render(fmt.Sprintf("✖ %d issue(s)", len(r.Issues))) + "\n")
	for _, is := range r.Issues {
		where := ""
		if is.Date != nil {
			where = " " + Dim(is.Date.String())
		}
		b.WriteString(fmt.Sprintf("  %s%s  %s\n", issueBadge(is.Kind), where, is.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}

func issueBadge(k scheduler.IssueKind) string {
	switch k {
	case scheduler.IssueCapacity:
		return StyleRed.Render(string(k))
	case scheduler.IssueIncoherence:
		return StylePurple.Render(string(k))
	case scheduler.IssueTotal:
		return StyleYellow.Render(string(k))
	default:
		return StyleDim.Render(string(k))
	}
}

// FormatAvailability renders the free hours of one or more workers on a day.
// names maps worker IDs to display names; unknown IDs are shown truncated.
func FormatAvailability(a *service.Availability, names map[string]string) string {
	ids := make([]string, 0, len(a.ByWorker))
	for id := range a.ByWorker {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return displayName(ids[i], names) < displayName(ids[j], names) })

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		free := a.ByWorker[id]
		text := FormatHours(free)
		if len(ids) > 1 && free == a.Bottleneck {
			text = StyleYellow.Render(text + " ◂ bottleneck")
		}
		rows = append(rows, []string{displayName(id, names), text})
	}

	var b strings.Builder
	b.WriteString(Header("Available " + a.Day.String()) + "\n\n")
	b.WriteString(RenderTable([]string{"WORKER", "FREE"}, rows))
	if len(ids) > 1 {
		b.WriteString(fmt.Sprintf("\n%s %s\n", Dim("Combined"), Bold(FormatHours(a.Combined))))
	}
	return b.String()
}

func displayName(id string, names map[string]string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatCommitments renders scheduled commitments with a per-day load bar.
// dailyCapacity is the worker's capacity, used to scale the bar.
func FormatCommitments(cs []service.ScheduledCommitment, dailyCapacity float64) string {
	rows := make([][]string, 0, len(cs))
	perDay := make(map[calendar.Day]float64)
	var days []calendar.Day
	for _, c := range cs {
		if _, seen := perDay[c.Date]; !seen {
			days = append(days, c.Date)
		}
		perDay[c.Date] += c.Hours
		rows = append(rows, []string{
			DayLabel(c.Date),
			c.Title,
			KindBadge(c.Kind),
			StrategyBadge(c.Strategy),
			FormatHours(c.Hours),
			WindowText(c.StartTime, c.EndTime),
			Dim(c.TaskID),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"DATE", "TITLE", "KIND", "STRATEGY", "HOURS", "WINDOW", "TASK"}, rows))
	b.WriteString("\n" + Header("Load") + "\n")
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, d := range days {
		b.WriteString(fmt.Sprintf("%s  %s\n", DayLabel(d), RenderLoad(perDay[d], dailyCapacity, 20)))
	}
	return b.String()
}
