// Package source implements the log sources uberlog can stream from.
//
// Every source owns at most one acquisition goroutine. Connect starts it,
// Disconnect cancels it and waits for it to return, so two goroutines never
// hold the same transport. Goroutines never touch shared state; everything
// they produce goes through a Sink.
package source

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyConnected is returned by Connect when a live goroutine exists.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrNotSupported is returned for operations a source kind cannot do.
	ErrNotSupported = errors.New("not supported by this source")
)

// Sink receives everything acquisition goroutines produce. Implementations
// must give up on a send once ctx is done.
type Sink interface {
	// Bytes hands over a chunk read from the transport. The slice is not
	// reused by the caller.
	Bytes(ctx context.Context, id uint32, b []byte)
	// Message reports something the user should see.
	Message(ctx context.Context, text string)
	// Detach asks for the source to be disconnected. With rescan set the
	// probe list is refreshed afterwards, which removes sources whose
	// hardware is gone.
	Detach(ctx context.Context, id uint32, rescan bool)
}

// Source is one connectable origin of log bytes.
type Source interface {
	ID() uint32
	Label() string
	// ProbeSerial is the serial number of the probe backing the source, or
	// empty for sources that are not probe-backed.
	ProbeSerial() string
	Connected() bool
	Connect(sink Sink) error
	Disconnect()
	// TakeStorage returns and clears the unconsumed tail of the last chunk.
	TakeStorage() []byte
	SetStorage(b []byte)
	Reset(ctx context.Context) error
	Reflash(ctx context.Context) error
}

const (
	hardwarePollInterval = 10 * time.Millisecond
	streamPollInterval   = 100 * time.Millisecond
	readChunkSize        = 1024
)

type worker struct {
	cancel    context.CancelFunc
	interrupt func()
	done      chan struct{}
}

func (w *worker) alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// base carries the state every source kind shares.
type base struct {
	id      uint32
	label   string
	storage []byte
	w       *worker
}

func (b *base) ID() uint32 { return b.id }

func (b *base) Label() string { return b.label }

func (b *base) ProbeSerial() string { return "" }

func (b *base) Connected() bool { return b.w != nil }

func (b *base) TakeStorage() []byte {
	s := b.storage
	b.storage = nil
	return s
}

func (b *base) SetStorage(s []byte) { b.storage = s }

func (b *base) Reset(context.Context) error { return ErrNotSupported }

func (b *base) Reflash(context.Context) error { return ErrNotSupported }

func (b *base) Disconnect() { b.stop() }

func (b *base) fields() log.Fields {
	return log.Fields{"source": b.id, "label": b.label}
}

// busy reports whether a live goroutine exists. Connect calls it before
// opening any transport.
func (b *base) busy() bool {
	if b.w != nil && b.w.alive() {
		log.WithFields(b.fields()).Warn("connect ignored, already connected")
		return true
	}
	return false
}

// start runs fn on a new goroutine. A goroutine that already exited on its
// own is reaped first. interrupt, when set, is called on stop to unblock a
// read that ignores cancellation.
func (b *base) start(fn func(ctx context.Context), interrupt func()) error {
	if b.w != nil {
		if b.w.alive() {
			return ErrAlreadyConnected
		}
		log.WithFields(b.fields()).Warn("stale acquisition goroutine, disconnecting first")
		b.stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &worker{cancel: cancel, interrupt: interrupt, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		fn(ctx)
	}()
	b.w = w
	log.WithFields(b.fields()).Info("source connected")
	return nil
}

// stop cancels the goroutine and blocks until it has returned.
func (b *base) stop() {
	w := b.w
	if w == nil {
		return
	}
	if !w.alive() {
		log.WithFields(b.fields()).Debug("acquisition goroutine had already exited")
	}
	w.cancel()
	if w.interrupt != nil {
		w.interrupt()
	}
	<-w.done
	b.w = nil
	log.WithFields(b.fields()).Info("source disconnected")
}

// pause sleeps for d and reports false if ctx ended first.
func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
