package formatter

import (
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderLoad renders how much of a day's capacity is booked, like
// [████░░░░] 4h/7h. The bar turns yellow past two thirds and red when full.
func RenderLoad(committed, capacity float64, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if capacity > 0 {
		pct = committed / capacity
	} else if committed > 0 {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct >= 1:
		style = StyleRed
	case pct >= 0.66:
		style = StyleYellow
	}

	return "[" + style.Render(bar) + "] " + FormatHours(committed) + "/" + FormatHours(capacity)
}
