package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar with source and filter counts.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	var parts []string

	// Logo
	parts = append(parts, bg.Render("uberlog", styles.Logo))

	// Connection summary
	connected := 0
	for _, src := range m.sources {
		if src.Connected {
			connected++
		}
	}
	if connected > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("● %d live", connected), styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("● idle", styles.MutedText))
	}

	label := "Sources:"
	if compact {
		label = "S:"
	}
	parts = append(parts,
		bg.Render(label, styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.sources)), styles.Text),
	)

	filterStyle := styles.MutedText
	if len(m.filters) > 0 {
		filterStyle = styles.WarningText
	}
	label = "Filters:"
	if compact {
		label = "F:"
	}
	parts = append(parts,
		bg.Render(label, styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.filters)), filterStyle),
	)

	if !compact {
		parts = append(parts,
			bg.Render("Lines:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(m.logState.lines)), styles.InfoText),
		)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewSources:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"c", "Connect"},
			{"d", "Disconnect"},
			{"x", "Remove"},
			{"r", "Rescan"},
			{"R", "Reset"},
			{"f", "Reflash"},
			{"q", "Back"},
		}
	case ViewFilters:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"d", "Delete"},
			{":", "Add"},
			{"q", "Back"},
		}
	default: // ViewLive
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{":", "Command"},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"P", "Sources"},
			{"F", "Filters"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewLive && m.logState.searchQuery != "" {
		pattern := truncate(m.logState.searchQuery, 18)
		segments = append(segments, bg.Render("/"+pattern, styles.AccentText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// renderStatusLine renders the command input when open, otherwise the last
// commander message next to the log view state.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	line := lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Background)).Width(m.width)

	if m.inputActive {
		return line.Render(m.input.View())
	}

	right := ""
	if m.currentView == ViewLive {
		right = m.logStatus(styles, bg)
	}
	avail := m.width - lipgloss.Width(right) - 2
	left := ""
	if m.status != "" && avail > 0 {
		left = bg.Render(truncate(m.status, avail), styles.WarningText)
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return line.Render(left + bg.Spaces(gap) + right)
}
