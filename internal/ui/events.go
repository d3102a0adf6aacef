package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/uberlog/internal/commander"
	"github.com/five82/uberlog/internal/logline"
)

// eventBatchLimit bounds how many queued events are folded into one message.
const eventBatchLimit = 512

// Messages

// eventsMsg carries events drained from the commander, oldest first.
type eventsMsg []commander.Event

// eventsClosedMsg signals that the commander has stopped.
type eventsClosedMsg struct{}

// Commands

// listenEvents blocks for the next event, then drains whatever else is
// already buffered without waiting.
func listenEvents(ch <-chan commander.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		batch := eventsMsg{ev}
		for len(batch) < eventBatchLimit {
			select {
			case ev, ok := <-ch:
				if !ok {
					return batch
				}
				batch = append(batch, ev)
			default:
				return batch
			}
		}
		return batch
	}
}

// outbox hands commands to the commander in the order the UI produced them.
// push never blocks the update loop; a single goroutine started by run does
// the sending.
type outbox struct {
	mu      sync.Mutex
	pending []commander.Command
	wake    chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

func (o *outbox) push(cmds ...commander.Command) {
	if len(cmds) == 0 {
		return
	}
	o.mu.Lock()
	o.pending = append(o.pending, cmds...)
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// take removes and returns everything pushed so far.
func (o *outbox) take() []commander.Command {
	o.mu.Lock()
	defer o.mu.Unlock()
	cmds := o.pending
	o.pending = nil
	return cmds
}

// run forwards pushed commands to q until ctx ends.
func (o *outbox) run(ctx context.Context, q commander.Queue) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		}
		for _, c := range o.take() {
			if !q.Send(ctx, c) {
				return
			}
		}
	}
}

// applyEvents folds a batch of commander events into the model.
func (m *Model) applyEvents(batch eventsMsg) {
	var appended []logline.Message
	flush := func() {
		m.appendLines(appended)
		appended = nil
	}

	for _, ev := range batch {
		if line, ok := ev.(commander.AppendLog); ok {
			appended = append(appended, line.Log)
			continue
		}
		flush()

		switch ev := ev.(type) {
		case commander.TextMessage:
			m.status = ev.Text
		case commander.AddNewSource:
			m.addSource(ev.ID, ev.Label)
		case commander.RemoveSource:
			m.removeSource(ev.ID)
		case commander.SetConnectionSource:
			m.setConnected(ev.ID, ev.Connected)
		case commander.UpdateFilterList:
			m.setFilters(ev.Filters)
		case commander.UpdateLogs:
			m.replaceLines(ev.Logs)
		case commander.UpdateSearchLog:
			m.currentView = ViewLive
			m.startSearch(ev.Text)
		}
	}
	flush()
	m.updateLogViewport()
}
