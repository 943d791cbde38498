package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RelativeDay returns a human-friendly distance from today to day.
func RelativeDay(day, today calendar.Day) string {
	days := today.DaysUntil(day)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days < 0 && days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DayLabel renders a day as "Mon 2025-03-17", dimming weekends.
func DayLabel(day calendar.Day) string {
	label := fmt.Sprintf("%s %s", day.Weekday().String()[:3], day)
	if !day.IsBusinessDay() {
		return StyleDim.Render(label)
	}
	return label
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatHours renders fractional hours to the minute, e.g. 2.5 -> "2h 30m".
func FormatHours(hours float64) string {
	min := int(math.Round(hours * 60))
	if min <= 0 {
		return "0h"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// WindowText renders an optional start/end pair, or "--" when unset.
func WindowText(start, end *calendar.Clock) string {
	if start == nil || end == nil {
		return StyleDim.Render("--")
	}
	return calendar.Window{Start: *start, End: *end}.String()
}
