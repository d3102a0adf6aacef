package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// tabWidth is how many columns a tab in a log line expands to.
const tabWidth = 4

// BgStyle paints text onto a panel background. Every rendered cell,
// spaces included, carries the background, so styled segments placed next
// to each other inside a panel leave no unpainted gaps.
type BgStyle struct {
	bg    lipgloss.Color
	fill  lipgloss.Style
	space string
}

// NewBgStyle creates a painter for the panel background bgColor.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	fill := lipgloss.NewStyle().Background(bg)
	return BgStyle{bg: bg, fill: fill, space: fill.Render(" ")}
}

// Render paints text in style. Tabs, common in firmware output, become
// spaces so column widths stay predictable.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))

	styled := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return styled.Render(text)
	}

	// Runs of spaces are kept: each empty field becomes one painted space.
	fields := strings.Split(text, " ")
	for i, f := range fields {
		if f != "" {
			fields[i] = styled.Render(f)
		}
	}
	return strings.Join(fields, b.space)
}

// Space returns one painted space.
func (b BgStyle) Space() string {
	return b.space
}

// Spaces returns n painted spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return b.fill.Render(strings.Repeat(" ", n))
}

// Sep paints a separator.
func (b BgStyle) Sep(sep string) string {
	return b.fill.Render(sep)
}

// Join joins header segments with a painted separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}

// FillLine cuts rendered content to width and paints the rest of the row.
// Panel rows never wrap.
func (b BgStyle) FillLine(content string, width int) string {
	if width <= 0 {
		return ""
	}
	return b.fill.Width(width).Render(ansi.Truncate(content, width, ""))
}

// Hint renders a one-line placeholder for an empty panel.
func (b BgStyle) Hint(text string, style lipgloss.Style, width int) string {
	return b.FillLine(b.Render(text, style), width)
}
