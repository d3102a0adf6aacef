package commander

import (
	"context"
	"fmt"

	"github.com/five82/uberlog/internal/filter"
	"github.com/five82/uberlog/internal/logline"
)

// Command is a request processed by the dispatch loop.
type Command interface {
	command()
}

type (
	// RefreshProbeInfo re-enumerates probes against the configured targets.
	RefreshProbeInfo struct{}
	// Reset restarts the target behind a source.
	Reset struct{ ID uint32 }
	// Reflash programs the firmware of the target behind a source.
	Reflash struct{ ID uint32 }
	// StreamLogs starts (Enable) or stops recording lines to Path.
	StreamLogs struct {
		Enable bool
		Path   string
	}
	// StreamFile registers and connects a file source.
	StreamFile struct{ Path string }
	// StreamStdin registers and connects the standard input source.
	StreamStdin struct{}
	// ParseLogBytes carries a chunk read by a source.
	ParseLogBytes struct {
		ID    uint32
		Bytes []byte
	}
	// PrintMessage shows text on the status line.
	PrintMessage struct{ Text string }
	// AddFilter appends a rule and re-evaluates the history.
	AddFilter struct{ Filter filter.Filter }
	// RemoveFilter drops the rule at Index, counted from zero.
	RemoveFilter struct{ Index int }
	// ClearFilters drops every rule.
	ClearFilters struct{}
	// GetFilters asks for the current rule list.
	GetFilters struct{}
	// ClearLogs empties the history.
	ClearLogs struct{}
	// FindLog starts a search for Text in the displayed lines.
	FindLog struct{ Text string }
	// ConnectLogSource starts a source's acquisition goroutine.
	ConnectLogSource struct{ ID uint32 }
	// DisconnectLogSource stops a source's acquisition goroutine.
	DisconnectLogSource struct{ ID uint32 }
	// RemoveLogSource disconnects a source and forgets it.
	RemoveLogSource struct{ ID uint32 }
)

func (RefreshProbeInfo) command()    {}
func (Reset) command()               {}
func (Reflash) command()             {}
func (StreamLogs) command()          {}
func (StreamFile) command()          {}
func (StreamStdin) command()         {}
func (ParseLogBytes) command()       {}
func (PrintMessage) command()        {}
func (AddFilter) command()           {}
func (RemoveFilter) command()        {}
func (ClearFilters) command()        {}
func (GetFilters) command()          {}
func (ClearLogs) command()           {}
func (FindLog) command()             {}
func (ConnectLogSource) command()    {}
func (DisconnectLogSource) command() {}
func (RemoveLogSource) command()     {}

// Name returns the command's type name for logging.
func Name(cmd Command) string {
	return fmt.Sprintf("%T", cmd)[len("commander."):]
}

// Event is an update sent to the UI.
type Event interface {
	event()
}

type (
	// TextMessage is status-line text.
	TextMessage struct{ Text string }
	// AddNewSource announces a registered source.
	AddNewSource struct {
		ID    uint32
		Label string
	}
	// RemoveSource announces a source is gone.
	RemoveSource struct{ ID uint32 }
	// SetConnectionSource reports a source's connection state.
	SetConnectionSource struct {
		ID        uint32
		Connected bool
	}
	// UpdateFilterList carries the full rule list.
	UpdateFilterList struct{ Filters []filter.Filter }
	// UpdateLogs replaces the displayed lines wholesale.
	UpdateLogs struct{ Logs []logline.Message }
	// UpdateSearchLog starts a search in the displayed lines.
	UpdateSearchLog struct{ Text string }
	// AppendLog adds one line that survived the filters.
	AppendLog struct{ Log logline.Message }
)

func (TextMessage) event()         {}
func (AddNewSource) event()        {}
func (RemoveSource) event()        {}
func (SetConnectionSource) event() {}
func (UpdateFilterList) event()    {}
func (UpdateLogs) event()          {}
func (UpdateSearchLog) event()     {}
func (AppendLog) event()           {}

// Queue is the command channel. Every producer, acquisition goroutines
// included, writes to it; only the Commander reads.
type Queue chan Command

// NewQueue creates a queue with room for size pending commands.
func NewQueue(size int) Queue {
	return make(Queue, size)
}

// Send enqueues cmd, giving up when ctx ends. It reports whether cmd was
// enqueued.
func (q Queue) Send(ctx context.Context, cmd Command) bool {
	select {
	case q <- cmd:
		return true
	case <-ctx.Done():
		return false
	}
}

// Bytes implements source.Sink.
func (q Queue) Bytes(ctx context.Context, id uint32, b []byte) {
	q.Send(ctx, ParseLogBytes{ID: id, Bytes: b})
}

// Message implements source.Sink.
func (q Queue) Message(ctx context.Context, text string) {
	q.Send(ctx, PrintMessage{Text: text})
}

// Detach implements source.Sink.
func (q Queue) Detach(ctx context.Context, id uint32, rescan bool) {
	if !q.Send(ctx, DisconnectLogSource{ID: id}) {
		return
	}
	if rescan {
		q.Send(ctx, RefreshProbeInfo{})
	}
}
