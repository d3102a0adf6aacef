package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/uberlog/internal/commander"
	"github.com/five82/uberlog/internal/filter"
)

func (m *Model) setFilters(filters []filter.Filter) {
	m.filters = append([]filter.Filter(nil), filters...)
	if m.filterIdx >= len(m.filters) {
		m.filterIdx = max(len(m.filters)-1, 0)
	}
}

// handleFiltersKey processes keyboard input for the filters panel.
func (m *Model) handleFiltersKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewLive
	case key.Matches(msg, m.keys.Down):
		if m.filterIdx < len(m.filters)-1 {
			m.filterIdx++
		}
	case key.Matches(msg, m.keys.Up):
		if m.filterIdx > 0 {
			m.filterIdx--
		}
	case key.Matches(msg, m.keys.DeleteFilter):
		m.deleteFilter()
	}
	return nil
}

// deleteFilter asks the commander to drop the highlighted rule. The panel
// is refreshed by the filter list the commander sends back.
func (m *Model) deleteFilter() {
	if m.filterIdx < 0 || m.filterIdx >= len(m.filters) {
		return
	}
	m.send(commander.RemoveFilter{Index: m.filterIdx})
}

// renderFilters renders the filters panel.
func (m Model) renderFilters() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := max(m.width-4, 1)

	var lines []string
	if len(m.filters) == 0 {
		lines = append(lines,
			bg.Hint("No filters. Add one with :filter {h|i|e} [color] text", styles.MutedText, width))
	}
	for i, f := range m.filters {
		kind := padRight(f.Kind.String(), 12)
		desc := fmt.Sprintf("%q", f.Match)
		if i == m.filterIdx {
			lines = append(lines, styles.Selected.Width(width).Render(fmt.Sprintf("%-3d %s %s", i+1, kind, desc)))
			continue
		}
		row := bg.Render(padRight(fmt.Sprintf("%d", i+1), 4), styles.FaintText) +
			bg.Render(kind, styles.AccentText) + bg.Space()
		if f.Kind == filter.Highlighter {
			row += bg.Render(desc, styles.LineStyle(f.Style))
		} else {
			row += bg.Render(desc, styles.Text)
		}
		lines = append(lines, bg.FillLine(row, width))
	}

	title := fmt.Sprintf("Filters (%d)", len(m.filters))
	return m.renderBox(title, strings.Join(lines, "\n"), m.width, m.height-3, true)
}
