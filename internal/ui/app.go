package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/cmdline"
	"github.com/five82/uberlog/internal/commander"
	"github.com/five82/uberlog/internal/filter"
	"github.com/five82/uberlog/internal/prefs"
)

// View represents the current active view.
type View int

const (
	ViewLive View = iota
	ViewSources
	ViewFilters
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Commands  commander.Queue
	Events    <-chan commander.Event
	Prefs     prefs.Prefs
	PrefsPath string

	// InputTTY reads keys from the controlling terminal instead of stdin,
	// for when stdin carries log data.
	InputTTY bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	events    <-chan commander.Event
	parser    *cmdline.Parser
	prefs     prefs.Prefs
	prefsPath string

	// UI state
	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	status      string

	// Log state
	logViewport viewport.Model
	logState    logState

	// Sources panel
	sources   []sourceRow
	sourceIdx int

	// Filters panel
	filters   []filter.Filter
	filterIdx int

	// Command line
	input       textinput.Model
	inputActive bool

	// Commands waiting for the commander
	out *outbox
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.Prompt = ":"
	input.CharLimit = 512

	return Model{
		ctx:         ctx,
		events:      opts.Events,
		parser:      cmdline.New(opts.Prefs.Aliases),
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		theme:       GetTheme(opts.Prefs.Theme),
		keys:        DefaultKeyMap(),
		currentView: ViewLive,
		input:       input,
		out:         newOutbox(),
		logState: logState{
			follow:         true,
			showTimestamps: !opts.Prefs.HideTimestamps,
			showSourceIDs:  !opts.Prefs.HideSourceIDs,
		},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return listenEvents(m.events)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.input.Width = max(m.width-4, 10)
		m.logState.contentVersion++
		m.updateLogViewport()
		return m, nil

	case eventsMsg:
		m.applyEvents(msg)
		return m, listenEvents(m.events)

	case eventsClosedMsg:
		return m, tea.Quit
	}

	if m.inputActive {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.inputActive {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Command):
		cmd := m.openInput(":")
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		cmd := m.openInput("/")
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.logState.contentVersion++
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ViewSources):
		m.currentView = ViewSources
		m.send(commander.RefreshProbeInfo{})
		return m, nil

	case key.Matches(msg, m.keys.ViewFilters):
		m.currentView = ViewFilters
		m.send(commander.GetFilters{})
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewSources:
		cmd = m.handleSourcesKey(msg)
	case ViewFilters:
		cmd = m.handleFiltersKey(msg)
	default:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		cmd = m.handleLogsKey(msg)
	}
	return m, cmd
}

// openInput starts the command line with the given prompt.
func (m *Model) openInput(prompt string) tea.Cmd {
	m.inputActive = true
	m.input.Prompt = prompt
	m.input.SetValue("")
	return m.input.Focus()
}

// handleInputKey processes keys while the command line is open.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeInput()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		line := m.input.Prompt + m.input.Value()
		if strings.HasPrefix(m.input.Value(), ":") {
			line = m.input.Value()
		}
		m.closeInput()
		m.submit(line)
		return m, nil

	case key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.inputActive = false
	m.input.Blur()
	m.input.SetValue("")
}

// submit parses a command line and forwards the result. Parse errors are
// routed through the commander so they reach the status line in order.
func (m *Model) submit(line string) {
	cmd, err := m.parser.Parse(line)
	if err != nil {
		m.send(commander.PrintMessage{Text: err.Error()})
		return
	}
	if cmd != nil {
		m.send(cmd)
	}
}

// send queues commands for the commander.
func (m *Model) send(cmds ...commander.Command) {
	m.out.push(cmds...)
}

// savePrefs persists the current display preferences.
func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		log.WithError(err).Warn("save preferences")
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderContent())
	b.WriteString("\n")

	// Bottom line: command input or status
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewSources:
		return m.renderSources()
	case ViewFilters:
		return m.renderFilters()
	default:
		return m.renderLogs()
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	ctx, cancel := context.WithCancel(m.ctx)
	defer cancel()
	if opts.Commands != nil {
		go m.out.run(ctx, opts.Commands)
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	if opts.InputTTY {
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
