package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/uberlog/internal/commander"
)

// sourceRow is the panel's view of one registered source.
type sourceRow struct {
	ID        uint32
	Label     string
	Connected bool
}

func (m *Model) addSource(id uint32, label string) {
	for i := range m.sources {
		if m.sources[i].ID == id {
			m.sources[i].Label = label
			return
		}
	}
	m.sources = append(m.sources, sourceRow{ID: id, Label: label})
}

func (m *Model) removeSource(id uint32) {
	for i := range m.sources {
		if m.sources[i].ID == id {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			break
		}
	}
	if m.sourceIdx >= len(m.sources) {
		m.sourceIdx = max(len(m.sources)-1, 0)
	}
}

func (m *Model) setConnected(id uint32, connected bool) {
	for i := range m.sources {
		if m.sources[i].ID == id {
			m.sources[i].Connected = connected
			return
		}
	}
}

// selectedSource returns the highlighted row, if any.
func (m *Model) selectedSource() (sourceRow, bool) {
	if m.sourceIdx < 0 || m.sourceIdx >= len(m.sources) {
		return sourceRow{}, false
	}
	return m.sources[m.sourceIdx], true
}

// handleSourcesKey processes keyboard input for the sources panel.
func (m *Model) handleSourcesKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewLive
		return nil

	case key.Matches(msg, m.keys.Down):
		if m.sourceIdx < len(m.sources)-1 {
			m.sourceIdx++
		}
		return nil

	case key.Matches(msg, m.keys.Up):
		if m.sourceIdx > 0 {
			m.sourceIdx--
		}
		return nil

	case key.Matches(msg, m.keys.Top):
		m.sourceIdx = 0
		return nil

	case key.Matches(msg, m.keys.Bottom):
		m.sourceIdx = max(len(m.sources)-1, 0)
		return nil

	case key.Matches(msg, m.keys.Refresh):
		m.send(commander.RefreshProbeInfo{})
		return nil
	}

	row, ok := m.selectedSource()
	if !ok {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Connect):
		if !row.Connected {
			m.send(commander.ConnectLogSource{ID: row.ID})
		}
	case key.Matches(msg, m.keys.Disconnect):
		m.send(commander.DisconnectLogSource{ID: row.ID})
	case key.Matches(msg, m.keys.Remove):
		m.send(commander.RemoveLogSource{ID: row.ID})
	case key.Matches(msg, m.keys.Reset):
		m.send(commander.Reset{ID: row.ID})
	case key.Matches(msg, m.keys.Reflash):
		m.send(commander.Reflash{ID: row.ID})
	}
	return nil
}

// renderSources renders the sources panel.
func (m Model) renderSources() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := max(m.width-4, 1)
	height := max(m.height-5, 1)

	var lines []string
	if len(m.sources) == 0 {
		lines = append(lines, bg.Hint("No sources. Plug in a probe and press r, or use :stream_in.", styles.MutedText, width))
	}

	for i, src := range m.sources {
		state := bg.Render("○ idle", styles.MutedText)
		if src.Connected {
			state = bg.Render("● live", styles.SuccessText)
		}
		label := truncateMiddle(src.Label, max(width-20, 8))
		row := bg.Render(padRight(fmt.Sprintf("%d", src.ID), 5), styles.InfoText) +
			bg.Render(padRight(label, max(width-20, 8)), styles.Text) + bg.Spaces(2) + state

		if i == m.sourceIdx {
			row = styles.Selected.Width(width).Render(
				padRight(fmt.Sprintf("%d", src.ID), 5) + padRight(label, max(width-20, 8)) + "  " +
					ternary(src.Connected, "● live", "○ idle"))
			lines = append(lines, row)
			continue
		}
		lines = append(lines, bg.FillLine(row, width))
	}

	start := 0
	if m.sourceIdx >= height {
		start = m.sourceIdx - height + 1
	}
	end := min(start+height, len(lines))
	content := strings.Join(lines[start:end], "\n")

	title := fmt.Sprintf("Sources (%d)", len(m.sources))
	return m.renderBox(title, content, m.width, m.height-3, true)
}
