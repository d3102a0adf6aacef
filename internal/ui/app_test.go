package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/uberlog/internal/commander"
	"github.com/five82/uberlog/internal/filter"
	"github.com/five82/uberlog/internal/logline"
	"github.com/five82/uberlog/internal/prefs"
)

type harness struct {
	t      *testing.T
	model  Model
	events chan commander.Event
	prefs  string
}

func newHarness(t *testing.T, p prefs.Prefs) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		events: make(chan commander.Event, 32),
		prefs:  filepath.Join(t.TempDir(), "prefs.toml"),
	}
	h.model = New(Options{
		Events:    h.events,
		Prefs:     p,
		PrefsPath: h.prefs,
	})
	h.update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) update(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.model.Update(msg)
	m, ok := next.(Model)
	require.True(h.t, ok, "Update returned %T", next)
	h.model = m
	return cmd
}

func (h *harness) press(keys string) tea.Cmd {
	h.t.Helper()
	switch keys {
	case "enter":
		return h.update(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.update(tea.KeyMsg{Type: tea.KeyEscape})
	case " ":
		return h.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	}
	return h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

// pressSent presses keys and returns the commands that were queued.
func (h *harness) pressSent(keys string) []commander.Command {
	h.t.Helper()
	h.press(keys)
	return h.model.out.take()
}

func line(id uint32, text string) logline.Message {
	return logline.Message{SourceID: id, Text: text, Style: logline.DefaultStyle}
}

func TestEventsUpdateModel(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})

	cmd := h.update(eventsMsg{
		commander.AddNewSource{ID: 1, Label: "uart /dev/ttyACM0"},
		commander.AddNewSource{ID: 2, Label: "file boot.log"},
		commander.SetConnectionSource{ID: 1, Connected: true},
		commander.AppendLog{Log: line(1, "boot start")},
		commander.AppendLog{Log: line(1, "boot done")},
		commander.TextMessage{Text: "uart /dev/ttyACM0 connected"},
	})
	assert.NotNil(t, cmd, "listener must be re-armed")

	m := h.model
	require.Len(t, m.sources, 2)
	assert.True(t, m.sources[0].Connected)
	assert.False(t, m.sources[1].Connected)
	assert.Len(t, m.logState.lines, 2)
	assert.Equal(t, "uart /dev/ttyACM0 connected", m.status)

	h.update(eventsMsg{
		commander.RemoveSource{ID: 2},
		commander.UpdateLogs{Logs: []logline.Message{line(1, "boot done")}},
		commander.UpdateFilterList{Filters: []filter.Filter{{Kind: filter.Inclusion, Match: "done"}}},
	})
	m = h.model
	require.Len(t, m.sources, 1)
	assert.Equal(t, uint32(1), m.sources[0].ID)
	require.Len(t, m.logState.lines, 1)
	assert.Equal(t, "boot done", m.logState.lines[0].Text)
	assert.Len(t, m.filters, 1)
}

func TestAppendAfterReplaceKeepsOrder(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.update(eventsMsg{
		commander.AppendLog{Log: line(1, "old")},
		commander.UpdateLogs{Logs: []logline.Message{line(1, "a")}},
		commander.AppendLog{Log: line(1, "b")},
	})
	texts := make([]string, 0, len(h.model.logState.lines))
	for _, l := range h.model.logState.lines {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"a", "b"}, texts)
}

func TestSearchEvent(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.model.currentView = ViewSources
	h.update(eventsMsg{
		commander.AppendLog{Log: line(1, "tx ok")},
		commander.AppendLog{Log: line(1, "rx timeout")},
		commander.AppendLog{Log: line(2, "tx timeout")},
		commander.UpdateSearchLog{Text: "timeout"},
	})

	m := h.model
	assert.Equal(t, ViewLive, m.currentView)
	assert.Equal(t, []int{1, 2}, m.logState.searchMatches)
	assert.Equal(t, 1, m.logState.searchMatchIdx, "starts at the most recent match")
	assert.False(t, m.logState.follow)

	h.press("n")
	assert.Equal(t, 0, h.model.logState.searchMatchIdx)
	h.press("N")
	assert.Equal(t, 1, h.model.logState.searchMatchIdx)

	// New matching lines extend the match list.
	h.update(eventsMsg{commander.AppendLog{Log: line(1, "late timeout")}})
	assert.Equal(t, []int{1, 2, 3}, h.model.logState.searchMatches)

	h.press("esc")
	assert.Empty(t, h.model.logState.searchQuery)
	assert.Empty(t, h.model.logState.searchMatches)
}

func TestCommandLineSendsParsedCommand(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})

	h.press(":")
	require.True(t, h.model.inputActive)
	h.model.input.SetValue("filter h red ERROR")
	cmds := h.pressSent("enter")

	red, _ := filter.HighlightStyle("red")
	assert.Equal(t, []commander.Command{
		commander.AddFilter{Filter: filter.Filter{Kind: filter.Highlighter, Match: "ERROR", Style: red}},
	}, cmds)
	assert.False(t, h.model.inputActive)
}

func TestCommandLineAcceptsLeadingColon(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.press(":")
	h.model.input.SetValue(":connect 4")
	assert.Equal(t, []commander.Command{commander.ConnectLogSource{ID: 4}}, h.pressSent("enter"))
}

func TestSlashSearchSendsFind(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.press("/")
	h.model.input.SetValue("link up")
	assert.Equal(t, []commander.Command{commander.FindLog{Text: "link up"}}, h.pressSent("enter"))
}

func TestCommandLineErrorsBecomeMessages(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.press(":")
	h.model.input.SetValue("frobnicate")
	assert.Equal(t, []commander.Command{
		commander.PrintMessage{Text: "Unknown command :frobnicate"},
	}, h.pressSent("enter"))
}

func TestCommandLineAliases(t *testing.T) {
	h := newHarness(t, prefs.Prefs{Aliases: []prefs.Alias{{Alias: ":rec", Expanded: ":stream_out"}}})
	h.press(":")
	h.model.input.SetValue("rec /tmp/capture.log")
	assert.Equal(t, []commander.Command{
		commander.StreamLogs{Enable: true, Path: "/tmp/capture.log"},
	}, h.pressSent("enter"))
}

func TestEscapeCancelsInput(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.press(":")
	h.model.input.SetValue("clear")
	assert.Nil(t, h.press("esc"))
	assert.False(t, h.model.inputActive)
	assert.Empty(t, h.model.out.take())
}

func TestSourcesPanel(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})

	assert.Equal(t, []commander.Command{commander.RefreshProbeInfo{}}, h.pressSent("P"))
	assert.Equal(t, ViewSources, h.model.currentView)

	h.update(eventsMsg{
		commander.AddNewSource{ID: 3, Label: "rtt radio"},
		commander.AddNewSource{ID: 4, Label: "uart app"},
	})

	assert.Equal(t, []commander.Command{commander.ConnectLogSource{ID: 3}}, h.pressSent("c"))
	h.press("j")
	assert.Equal(t, []commander.Command{commander.Reset{ID: 4}}, h.pressSent("R"))
	assert.Equal(t, []commander.Command{commander.Reflash{ID: 4}}, h.pressSent("f"))
	assert.Equal(t, []commander.Command{commander.DisconnectLogSource{ID: 4}}, h.pressSent("d"))
	assert.Equal(t, []commander.Command{commander.RemoveLogSource{ID: 4}}, h.pressSent("x"))
	assert.Equal(t, []commander.Command{commander.RefreshProbeInfo{}}, h.pressSent("r"))

	h.update(eventsMsg{commander.SetConnectionSource{ID: 3, Connected: true}})
	h.press("k")
	assert.Empty(t, h.pressSent("c"), "connected sources are not reconnected")

	assert.Nil(t, h.press("q"))
	assert.Equal(t, ViewLive, h.model.currentView)
}

func TestRemovingSelectedSourceClampsSelection(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.update(eventsMsg{
		commander.AddNewSource{ID: 1, Label: "a"},
		commander.AddNewSource{ID: 2, Label: "b"},
	})
	h.model.sourceIdx = 1
	h.update(eventsMsg{commander.RemoveSource{ID: 2}})
	assert.Equal(t, 0, h.model.sourceIdx)
}

func TestFiltersPanelDelete(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	a := filter.Filter{Kind: filter.Exclusion, Match: "heartbeat"}
	b := filter.Filter{Kind: filter.Inclusion, Match: "net"}
	c := filter.Filter{Kind: filter.Highlighter, Match: "ERR", Style: logline.Style{Color: "1", Bold: true}}

	assert.Equal(t, []commander.Command{commander.GetFilters{}}, h.pressSent("F"))
	h.update(eventsMsg{commander.UpdateFilterList{Filters: []filter.Filter{a, b, c}}})

	h.press("j")
	assert.Equal(t, []commander.Command{commander.RemoveFilter{Index: 1}}, h.pressSent("d"))

	// Until the commander answers, the panel still shows the old list.
	h.press("j")
	h.press("d")
	h.press(":")
	h.model.input.SetValue("filter e debug")
	h.press("enter")
	blue, _ := filter.HighlightStyle(filter.DefaultColor)
	assert.Equal(t, []commander.Command{
		commander.RemoveFilter{Index: 2},
		commander.AddFilter{Filter: filter.Filter{Kind: filter.Exclusion, Match: "debug", Style: blue}},
	}, h.model.out.take())

	h.press("F")
	h.model.out.take()
	h.update(eventsMsg{commander.UpdateFilterList{Filters: []filter.Filter{a}}})
	assert.Equal(t, 0, h.model.filterIdx)

	h.press("esc")
	assert.Equal(t, ViewLive, h.model.currentView)
}

func TestOutboxDeliversInOrder(t *testing.T) {
	out := newOutbox()
	queue := commander.NewQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		out.run(ctx, queue)
	}()

	const n = 200
	for i := range n {
		out.push(commander.RemoveFilter{Index: i})
	}
	for i := range n {
		select {
		case cmd := <-queue:
			require.Equal(t, commander.RemoveFilter{Index: i}, cmd)
		case <-time.After(3 * time.Second):
			t.Fatalf("command %d not delivered", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("outbox did not stop")
	}
}

func TestTogglesPersistPrefs(t *testing.T) {
	h := newHarness(t, prefs.Prefs{Theme: "Nightfox"})
	require.True(t, h.model.logState.showTimestamps)

	h.press("t")
	h.press("s")
	h.press("T")

	saved, err := prefs.Load(h.prefs)
	require.NoError(t, err)
	assert.True(t, saved.HideTimestamps)
	assert.True(t, saved.HideSourceIDs)
	assert.Equal(t, "Kanagawa", saved.Theme)
	assert.Equal(t, "Kanagawa", h.model.theme.Name)
}

func TestPrefsDriveInitialDisplay(t *testing.T) {
	h := newHarness(t, prefs.Prefs{Theme: "Slate", HideTimestamps: true})
	assert.False(t, h.model.logState.showTimestamps)
	assert.True(t, h.model.logState.showSourceIDs)
	assert.Equal(t, "Slate", h.model.theme.Name)
}

func TestFollowToggle(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	require.True(t, h.model.logState.follow)
	h.press(" ")
	assert.False(t, h.model.logState.follow)
	h.press("G")
	assert.True(t, h.model.logState.follow)
}

func TestDisplayBufferIsCapped(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	batch := make(eventsMsg, 0, LogBufferLimit+10)
	for i := range LogBufferLimit + 10 {
		batch = append(batch, commander.AppendLog{Log: line(1, fmt.Sprintf("line %d", i))})
	}
	h.model.applyEvents(batch)

	require.Len(t, h.model.logState.lines, LogBufferLimit)
	assert.Equal(t, "line 10", h.model.logState.lines[0].Text)
}

func TestQuitAndHelp(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})

	h.press("?")
	require.True(t, h.model.showHelp)
	assert.Contains(t, h.model.View(), "Keyboard Shortcuts")
	assert.Nil(t, h.press("q"), "any key closes help")
	assert.False(t, h.model.showHelp)

	cmd := h.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestHelpListsAliases(t *testing.T) {
	h := newHarness(t, prefs.Prefs{Aliases: []prefs.Alias{{Alias: ":err", Expanded: ":filter h red"}}})
	h.press("?")
	view := h.model.View()
	assert.Contains(t, view, "Aliases")
	assert.Contains(t, view, ":err")
}

func TestViewRenders(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	h.update(eventsMsg{
		commander.AddNewSource{ID: 1, Label: "uart app"},
		commander.AppendLog{Log: line(1, "hello from the target")},
		commander.TextMessage{Text: "uart app connected"},
	})

	view := h.model.View()
	assert.Contains(t, view, "uberlog")
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "uart app connected")
	assert.Len(t, strings.Split(view, "\n"), 40)

	h.press("P")
	assert.Contains(t, h.model.View(), "Sources (1)")
	h.press("F")
	assert.Contains(t, h.model.View(), "Filters (0)")
}

func TestListenEvents(t *testing.T) {
	ch := make(chan commander.Event, 4)
	ch <- commander.TextMessage{Text: "a"}
	ch <- commander.TextMessage{Text: "b"}

	msg := listenEvents(ch)()
	assert.Equal(t, eventsMsg{commander.TextMessage{Text: "a"}, commander.TextMessage{Text: "b"}}, msg)

	close(ch)
	assert.Equal(t, eventsClosedMsg{}, listenEvents(ch)())
	assert.Nil(t, listenEvents(nil))
}

func TestClosedEventsQuit(t *testing.T) {
	h := newHarness(t, prefs.Prefs{})
	cmd := h.update(eventsClosedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
