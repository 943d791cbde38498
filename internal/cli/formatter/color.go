package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workload/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StrategyBadge returns a colored label for an allocation strategy.
func StrategyBadge(s domain.Strategy) string {
	switch s {
	case domain.StrategyJAT:
		return StylePurple.Render("JAT")
	case domain.StrategyPEPS:
		return StyleBlue.Render("PEPS")
	case domain.StrategyEquilibre:
		return StyleGreen.Render("ÉQUILIBRÉ")
	case domain.StrategyManual:
		return StyleYellow.Render("MANUAL")
	case "":
		return StyleDim.Render("--")
	default:
		return StyleDim.Render(string(s))
	}
}

// KindBadge distinguishes task hours from blocked time.
func KindBadge(k domain.CommitmentKind) string {
	if k == domain.KindBlock {
		return StyleRed.Render("■ block")
	}
	return StyleGreen.Render("● task")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
