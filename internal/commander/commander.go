// Package commander owns every piece of mutable log state: the source
// registry, the line history, the filter list and the recording file.
//
// All mutation happens on the goroutine running Run. Acquisition goroutines
// and the UI only ever enqueue Commands; results leave through the Event
// channel. Because nothing else touches the state, no locks are needed.
package commander

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/config"
	"github.com/five82/uberlog/internal/filter"
	"github.com/five82/uberlog/internal/logline"
	"github.com/five82/uberlog/internal/probe"
	"github.com/five82/uberlog/internal/source"
)

// ErrQueueClosed is returned by Run and Process once the queue is closed.
var ErrQueueClosed = errors.New("command queue closed")

// Options are the collaborators the Commander works with. Zero values fall
// back to the real hardware implementations.
type Options struct {
	Targets  config.Config
	Probes   probe.Lister
	Debugger probe.Debugger
	OpenPort source.PortOpener
	Stdin    io.Reader
	// RTTAddress resolves the RTT control block of an ELF image.
	RTTAddress func(elfPath string) (uint64, error)
	Now        func() time.Time
}

// Commander is the dispatch loop. It must only be used from one goroutine.
type Commander struct {
	queue Queue
	ui    chan<- Event
	opts  Options

	registry
	history   []logline.Message
	filters   []filter.Filter
	recording *recording
}

// New creates a Commander reading from queue and publishing to ui.
func New(queue Queue, ui chan<- Event, opts Options) *Commander {
	if opts.Probes == nil {
		opts.Probes = probe.USBLister{}
	}
	if opts.Debugger == nil {
		opts.Debugger = probe.OpenOCD{}
	}
	if opts.OpenPort == nil {
		opts.OpenPort = source.OpenSerial
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.RTTAddress == nil {
		opts.RTTAddress = probe.RTTAddress
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Commander{queue: queue, ui: ui, opts: opts}
}

// Run processes commands until ctx ends or the queue is closed. Every
// source is disconnected and recording is stopped before it returns.
func (c *Commander) Run(ctx context.Context) error {
	log.Info("commander started")
	defer c.shutdown()
	for {
		if err := c.Process(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// Process waits for one command and handles it. Handler failures are
// reported to the UI and do not end processing.
func (c *Commander) Process(ctx context.Context) error {
	var cmd Command
	select {
	case <-ctx.Done():
		return ctx.Err()
	case next, ok := <-c.queue:
		if !ok {
			return ErrQueueClosed
		}
		cmd = next
	}

	if err := c.Handle(ctx, cmd); err != nil {
		log.WithField("command", Name(cmd)).WithError(err).Warn("command failed")
		c.emit(ctx, TextMessage{Text: err.Error()})
	}
	return nil
}

// Handle applies a single command.
func (c *Commander) Handle(ctx context.Context, cmd Command) error {
	if _, ok := cmd.(ParseLogBytes); !ok {
		log.WithField("command", Name(cmd)).Debug("handling command")
	}

	switch cmd := cmd.(type) {
	case RefreshProbeInfo:
		return c.refresh(ctx)
	case Reset:
		return c.reset(ctx, cmd.ID)
	case Reflash:
		return c.reflash(ctx, cmd.ID)
	case StreamLogs:
		if cmd.Enable {
			return c.startRecording(ctx, cmd.Path)
		}
		return c.stopRecording(ctx)
	case StreamFile:
		return c.streamFile(ctx, cmd.Path)
	case StreamStdin:
		return c.streamStdin(ctx)
	case ParseLogBytes:
		c.parse(ctx, cmd.ID, cmd.Bytes)
	case PrintMessage:
		c.emit(ctx, TextMessage{Text: cmd.Text})
	case AddFilter:
		c.filters = append(c.filters, cmd.Filter)
		c.replay(ctx)
	case RemoveFilter:
		return c.removeFilter(ctx, cmd.Index)
	case ClearFilters:
		c.filters = nil
		c.replay(ctx)
	case GetFilters:
		c.emit(ctx, UpdateFilterList{Filters: c.Filters()})
	case ClearLogs:
		c.history = nil
		c.emit(ctx, UpdateLogs{})
	case FindLog:
		c.emit(ctx, UpdateSearchLog{Text: cmd.Text})
	case ConnectLogSource:
		return c.connect(ctx, cmd.ID)
	case DisconnectLogSource:
		c.disconnect(ctx, cmd.ID)
	case RemoveLogSource:
		c.remove(ctx, cmd.ID)
	default:
		return errors.Errorf("unsupported command %T", cmd)
	}
	return nil
}

// History returns a copy of every line reassembled so far.
func (c *Commander) History() []logline.Message {
	return append([]logline.Message(nil), c.history...)
}

// Filters returns a copy of the filter list.
func (c *Commander) Filters() []filter.Filter {
	return append([]filter.Filter(nil), c.filters...)
}

func (c *Commander) removeFilter(ctx context.Context, idx int) error {
	if idx < 0 || idx >= len(c.filters) {
		return errors.Errorf("no filter #%d", idx+1)
	}
	c.filters = append(c.filters[:idx:idx], c.filters[idx+1:]...)
	c.replay(ctx)
	return nil
}

// replay re-evaluates the whole history against the current filters.
func (c *Commander) replay(ctx context.Context) {
	c.emit(ctx, UpdateLogs{Logs: filter.ApplyAll(c.filters, c.history)})
	c.emit(ctx, UpdateFilterList{Filters: c.Filters()})
}

func (c *Commander) emit(ctx context.Context, ev Event) {
	if c.ui == nil {
		return
	}
	select {
	case c.ui <- ev:
	case <-ctx.Done():
	}
}

func (c *Commander) message(ctx context.Context, format string, args ...any) {
	c.emit(ctx, TextMessage{Text: fmt.Sprintf(format, args...)})
}

func (c *Commander) shutdown() {
	for _, src := range c.all() {
		src.Disconnect()
	}
	if c.recording != nil {
		if err := c.recording.Close(); err != nil {
			log.WithError(err).Warn("closing recording")
		}
		c.recording = nil
	}
	log.Info("commander stopped")
}
