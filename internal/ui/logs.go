package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/uberlog/internal/logline"
)

// logState holds all log-related state.
type logState struct {
	lines  []logline.Message
	follow bool

	showTimestamps bool
	showSourceIDs  bool

	// Search
	searchQuery    string
	searchMatches  []int // Line indices that match
	searchMatchIdx int   // Current match index

	// Content caching - skip re-render when unchanged
	contentVersion uint64
	lastRendered   uint64
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(m.width-4, m.height-5)
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}

	// Box height = m.height - 3 (header, cmdbar, status line below)
	// Box inner = box height - 2 (top and bottom borders) = m.height - 5
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.height-5, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.lastRendered == 0 || m.logState.contentVersion != m.logState.lastRendered {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.lastRendered = m.logState.contentVersion
		if m.logState.lastRendered == 0 {
			m.logState.lastRendered = 1 // Mark as rendered at least once
		}
	}

	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// appendLines adds lines that survived the filters.
func (m *Model) appendLines(msgs []logline.Message) {
	if len(msgs) == 0 {
		return
	}
	start := len(m.logState.lines)
	m.logState.lines = append(m.logState.lines, msgs...)
	if m.logState.searchQuery != "" {
		for i := start; i < len(m.logState.lines); i++ {
			if strings.Contains(m.logState.lines[i].Text, m.logState.searchQuery) {
				m.logState.searchMatches = append(m.logState.searchMatches, i)
			}
		}
	}
	m.trimLogBuffer()
	m.logState.contentVersion++
}

// replaceLines swaps the displayed lines for a freshly filtered set.
func (m *Model) replaceLines(msgs []logline.Message) {
	m.logState.lines = append([]logline.Message(nil), msgs...)
	m.trimLogBuffer()
	m.findSearchMatches()
	m.logState.contentVersion++
}

// trimLogBuffer drops the oldest displayed lines beyond LogBufferLimit.
// The history kept by the commander is not affected.
func (m *Model) trimLogBuffer() {
	overflow := len(m.logState.lines) - LogBufferLimit
	if overflow <= 0 {
		return
	}
	m.logState.lines = append([]logline.Message(nil), m.logState.lines[overflow:]...)
	if m.logState.searchQuery == "" {
		return
	}
	kept := m.logState.searchMatches[:0]
	for _, idx := range m.logState.searchMatches {
		if idx >= overflow {
			kept = append(kept, idx-overflow)
		}
	}
	m.logState.searchMatches = kept
	if m.logState.searchMatchIdx >= len(kept) {
		m.logState.searchMatchIdx = max(len(kept)-1, 0)
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	contentHeight := m.height - 3
	title := "Logs"
	if len(m.filters) > 0 {
		title = fmt.Sprintf("Logs (%d filters)", len(m.filters))
	}
	return m.renderBox(title, m.logViewport.View(), m.width, contentHeight, true)
}

// logStatus describes the log view for the status line.
func (m Model) logStatus(styles Styles, bg BgStyle) string {
	if m.logState.searchQuery != "" {
		if len(m.logState.searchMatches) == 0 {
			return bg.Render("Pattern not found: "+m.logState.searchQuery, styles.DangerText)
		}
		return bg.Render("/"+m.logState.searchQuery, styles.AccentText) +
			bg.Render(" - ", styles.FaintText) +
			bg.Render(fmt.Sprintf("%d/%d", m.logState.searchMatchIdx+1, len(m.logState.searchMatches)), styles.WarningText) +
			bg.Render(" - Press ", styles.FaintText) +
			bg.Render("n", styles.AccentText) +
			bg.Render(" for next, ", styles.FaintText) +
			bg.Render("N", styles.AccentText) +
			bg.Render(" for previous, ", styles.FaintText) +
			bg.Render("Esc", styles.AccentText) +
			bg.Render(" to clear", styles.FaintText)
	}

	autoTail := "off"
	if m.logState.follow {
		autoTail = "on"
	}
	return bg.Render(fmt.Sprintf("%d lines auto-tail %s", len(m.logState.lines), autoTail), styles.FaintText)
}

// renderLogContent renders the styled log lines.
func (m *Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if len(m.logState.lines) == 0 {
		hint := "No log lines yet. Press P to pick a source or : for commands."
		return bg.Hint(hint, styles.MutedText, width)
	}

	matchSet := make(map[int]bool, len(m.logState.searchMatches))
	for _, idx := range m.logState.searchMatches {
		matchSet[idx] = true
	}
	activeMatchLine := -1
	if len(m.logState.searchMatches) > 0 && m.logState.searchMatchIdx < len(m.logState.searchMatches) {
		activeMatchLine = m.logState.searchMatches[m.logState.searchMatchIdx]
	}

	var b strings.Builder
	for i, msg := range m.logState.lines {
		var line string
		switch {
		case i == activeMatchLine:
			line = m.renderActiveMatch(msg)
		case matchSet[i]:
			line = m.renderLogPrefix(msg, styles, bg) + bg.Render(msg.Text, styles.AccentText.Bold(true))
		default:
			line = m.renderLogPrefix(msg, styles, bg) + bg.Render(msg.Text, styles.LineStyle(msg.Style))
		}

		b.WriteString(bg.FillLine(line, width))
		if i < len(m.logState.lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) renderLogPrefix(msg logline.Message, styles Styles, bg BgStyle) string {
	var b strings.Builder
	if m.logState.showTimestamps {
		b.WriteString(bg.Render(msg.Timestamp.String(), styles.FaintText))
		b.WriteString(bg.Space())
	}
	if m.logState.showSourceIDs {
		b.WriteString(bg.Render(fmt.Sprintf("[%d]", msg.SourceID), styles.InfoText))
		b.WriteString(bg.Space())
	}
	return b.String()
}

// renderActiveMatch renders a line with the search highlight background.
func (m *Model) renderActiveMatch(msg logline.Message) string {
	var prefix []string
	if m.logState.showTimestamps {
		prefix = append(prefix, msg.Timestamp.String())
	}
	if m.logState.showSourceIDs {
		prefix = append(prefix, fmt.Sprintf("[%d]", msg.SourceID))
	}
	prefix = append(prefix, msg.Text)
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Warning)).
		Foreground(lipgloss.Color(m.theme.Background))
	return style.Render(strings.Join(prefix, " "))
}

// handleLogsKey processes keyboard input for the live log view.
func (m *Model) handleLogsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		m.updateLogViewport()

	case key.Matches(msg, m.keys.ToggleTimestamps):
		m.logState.showTimestamps = !m.logState.showTimestamps
		m.prefs.HideTimestamps = !m.logState.showTimestamps
		m.logState.contentVersion++
		m.updateLogViewport()
		m.savePrefs()

	case key.Matches(msg, m.keys.ToggleSourceIDs):
		m.logState.showSourceIDs = !m.logState.showSourceIDs
		m.prefs.HideSourceIDs = !m.logState.showSourceIDs
		m.logState.contentVersion++
		m.updateLogViewport()
		m.savePrefs()

	case key.Matches(msg, m.keys.NextMatch):
		m.nextSearchMatch()

	case key.Matches(msg, m.keys.PrevMatch):
		m.previousSearchMatch()

	case key.Matches(msg, m.keys.Escape):
		if m.logState.searchQuery != "" {
			m.clearLogSearch()
			m.updateLogViewport()
		}

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
	}

	return nil
}

// startSearch highlights lines containing query and jumps to the most
// recent one.
func (m *Model) startSearch(query string) {
	m.logState.searchQuery = query
	m.findSearchMatches()
	if n := len(m.logState.searchMatches); n > 0 {
		m.logState.searchMatchIdx = n - 1
		m.scrollToSearchMatch()
	}
	m.updateLogViewport()
}

// clearLogSearch clears the search state.
func (m *Model) clearLogSearch() {
	m.logState.searchQuery = ""
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
	m.logState.contentVersion++
}

// findSearchMatches finds all lines containing the search query.
func (m *Model) findSearchMatches() {
	m.logState.searchMatches = nil
	m.logState.searchMatchIdx = 0
	if m.logState.searchQuery == "" {
		return
	}
	for i, line := range m.logState.lines {
		if strings.Contains(line.Text, m.logState.searchQuery) {
			m.logState.searchMatches = append(m.logState.searchMatches, i)
		}
	}
	m.logState.contentVersion++
}

// nextSearchMatch moves to the next search match.
func (m *Model) nextSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx + 1) % len(m.logState.searchMatches)
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

// previousSearchMatch moves to the previous search match.
func (m *Model) previousSearchMatch() {
	if len(m.logState.searchMatches) == 0 {
		return
	}
	m.logState.searchMatchIdx = (m.logState.searchMatchIdx - 1 + len(m.logState.searchMatches)) % len(m.logState.searchMatches)
	m.logState.contentVersion++
	m.scrollToSearchMatch()
	m.updateLogViewport()
}

// scrollToSearchMatch scrolls the viewport to show the current match.
func (m *Model) scrollToSearchMatch() {
	if len(m.logState.searchMatches) == 0 || m.logState.searchMatchIdx >= len(m.logState.searchMatches) {
		return
	}
	m.logState.follow = false
	if !m.ready {
		return
	}
	m.updateLogViewport()

	targetLine := m.logState.searchMatches[m.logState.searchMatchIdx]
	scrollTo := max(targetLine-m.logViewport.Height/2, 0)
	m.logViewport.SetYOffset(scrollTo)
}
