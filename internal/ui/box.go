package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderBox draws content inside a rounded border with the title set into
// the top edge. height counts the border rows.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	borderColor := m.theme.BorderMuted
	if focused {
		borderColor = m.theme.BorderFocus
	}
	border := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().
		Foreground(lipgloss.Color(borderColor)).
		Background(lipgloss.Color(m.theme.Background))

	innerWidth := max(width-2, 0)
	innerHeight := max(height-2, 0)

	// Top edge: ╭─ Title ───╮
	label := ""
	if title != "" {
		label = " " + truncate(title, max(innerWidth-3, 0)) + " "
	}
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Accent)).
		Background(lipgloss.Color(m.theme.Background)).
		Bold(true)
	fill := max(innerWidth-1-ansi.StringWidth(label), 0)
	top := edge.Render(border.TopLeft+border.Top) +
		titleStyle.Render(label) +
		edge.Render(strings.Repeat(border.Top, fill)+border.TopRight)

	// Body: pad every row to the inner width with the focus background.
	bg := NewBgStyle(m.theme.FocusBg)
	rows := strings.Split(content, "\n")
	var b strings.Builder
	b.WriteString(top)
	for i := range innerHeight {
		row := ""
		if i < len(rows) {
			row = ansi.Truncate(rows[i], max(innerWidth-2, 0), "")
		}
		b.WriteString("\n")
		b.WriteString(edge.Render(border.Left))
		b.WriteString(bg.Space())
		b.WriteString(bg.FillLine(row, max(innerWidth-2, 0)))
		b.WriteString(bg.Space())
		b.WriteString(edge.Render(border.Right))
	}
	b.WriteString("\n")
	b.WriteString(edge.Render(border.BottomLeft + strings.Repeat(border.Bottom, innerWidth) + border.BottomRight))
	return b.String()
}
