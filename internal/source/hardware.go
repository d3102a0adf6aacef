package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/five82/uberlog/internal/config"
	"github.com/five82/uberlog/internal/probe"
)

const (
	uartReadTimeout = time.Second

	// uartHangupReads is how many empty reads in a row, each returning well
	// before the read timeout, mark the device as gone.
	uartHangupReads = 8
)

// Port is an open serial device. Read returns (0, nil) or a timeout error
// when its timeout expires without data.
type Port interface {
	Read(p []byte) (int, error)
	Close() error
}

// PortOpener opens a serial device at the given baud rate.
type PortOpener func(dev string, baud int) (Port, error)

// OpenSerial is the PortOpener backed by real serial devices.
func OpenSerial(dev string, baud int) (Port, error) {
	p, err := serial.Open(dev, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dev)
	}
	if err := p.SetReadTimeout(uartReadTimeout); err != nil {
		_ = p.Close()
		return nil, errors.Wrapf(err, "set read timeout on %s", dev)
	}
	return p, nil
}

// probed is shared by sources that sit behind a debug probe.
type probed struct {
	target   config.Target
	debugger probe.Debugger
}

func (p *probed) ProbeSerial() string { return p.target.ProbeID }

// Target is the configuration the source was created from.
func (p *probed) Target() config.Target { return p.target }

func (p *probed) withSession(ctx context.Context, fn func(probe.Session) error) error {
	if p.debugger == nil {
		return ErrNotSupported
	}
	sess, err := p.debugger.Open(ctx, p.target.Probe())
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()
	return fn(sess)
}

// Reset restarts the target through its probe.
func (p *probed) Reset(ctx context.Context) error {
	return p.withSession(ctx, func(s probe.Session) error { return s.Reset(ctx) })
}

func (p *probed) flash(ctx context.Context, elfPath string) error {
	return p.withSession(ctx, func(s probe.Session) error { return s.Flash(ctx, elfPath) })
}

// Uart streams from the serial device wired to a target.
type Uart struct {
	base
	probed
	open        PortOpener
	readTimeout time.Duration
}

// NewUart creates a UART source for a target with a uart backend.
func NewUart(id uint32, target config.Target, open PortOpener, debugger probe.Debugger) *Uart {
	if open == nil {
		open = OpenSerial
	}
	return &Uart{
		base:        base{id: id, label: fmt.Sprintf("%s (UART - %s)", target.Name, target.LogBackend.Uart.Dev)},
		probed:      probed{target: target, debugger: debugger},
		open:        open,
		readTimeout: uartReadTimeout,
	}
}

// ProbeSerial resolves the ambiguity between base and probed.
func (u *Uart) ProbeSerial() string { return u.probed.ProbeSerial() }

// Reset resolves the ambiguity between base and probed.
func (u *Uart) Reset(ctx context.Context) error { return u.probed.Reset(ctx) }

// Reflash programs the target's configured ELF, if it has one.
func (u *Uart) Reflash(ctx context.Context) error {
	fw := u.target.Firmware()
	if fw == "" {
		return ErrNotSupported
	}
	return u.flash(ctx, fw)
}

// Connect opens the serial device and starts reading it.
func (u *Uart) Connect(sink Sink) error {
	if u.busy() {
		return ErrAlreadyConnected
	}
	b := u.target.LogBackend.Uart
	port, err := u.open(b.Dev, b.Baud)
	if err != nil {
		return err
	}
	err = u.start(func(ctx context.Context) {
		defer func() { _ = port.Close() }()
		u.run(ctx, port, sink)
	}, nil)
	if err != nil {
		_ = port.Close()
	}
	return err
}

func (u *Uart) run(ctx context.Context, port Port, sink Sink) {
	buf := make([]byte, readChunkSize)
	empty := 0
	for ctx.Err() == nil {
		started := time.Now()
		n, err := port.Read(buf)
		switch {
		case err == nil && n > 0:
			empty = 0
			sink.Bytes(ctx, u.id, clone(buf[:n]))
		case err == nil:
			// After a hang-up the serial driver returns empty reads at once
			// instead of waiting out the timeout.
			if time.Since(started) < u.readTimeout/4 {
				empty++
			} else {
				empty = 0
			}
			if empty >= uartHangupReads {
				u.lost(ctx, sink, errors.Errorf("%d empty reads without waiting", empty))
				return
			}
		case isTimeout(err):
			empty = 0
		case isBrokenPipe(err):
			u.lost(ctx, sink, err)
			return
		default:
			log.WithFields(u.fields()).WithError(err).Warn("serial read failed")
			sink.Message(ctx, fmt.Sprintf("%s: read error: %v", u.label, err))
		}
		if !pause(ctx, hardwarePollInterval) {
			return
		}
	}
}

// lost reports the device gone and asks for the source to be detached.
func (u *Uart) lost(ctx context.Context, sink Sink, err error) {
	log.WithFields(u.fields()).WithError(err).Error("serial device lost")
	sink.Message(ctx, fmt.Sprintf("%s: device disconnected", u.label))
	sink.Detach(ctx, u.id, true)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isBrokenPipe(err error) bool {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.EIO) ||
		errors.Is(err, syscall.ENXIO) || errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, io.EOF) {
		return true
	}
	var pe *serial.PortError
	return errors.As(err, &pe) && pe.Code() == serial.PortClosed
}

// AddrResolver finds the RTT control block address in an ELF image.
type AddrResolver func(elfPath string) (uint64, error)

// Rtt streams RTT up-channel 0 of a target through its debug probe.
type Rtt struct {
	base
	probed
	addr    uint64
	resolve AddrResolver
}

// NewRtt creates an RTT source. addr is the control block address taken
// from the target's ELF; resolve re-reads it after a reflash and defaults to
// probe.RTTAddress.
func NewRtt(id uint32, target config.Target, addr uint64, resolve AddrResolver, debugger probe.Debugger) *Rtt {
	if resolve == nil {
		resolve = probe.RTTAddress
	}
	return &Rtt{
		base:    base{id: id, label: fmt.Sprintf("%s (RTT - %s)", target.Name, target.Processor)},
		probed:  probed{target: target, debugger: debugger},
		addr:    addr,
		resolve: resolve,
	}
}

// ProbeSerial resolves the ambiguity between base and probed.
func (r *Rtt) ProbeSerial() string { return r.probed.ProbeSerial() }

// Reset resolves the ambiguity between base and probed.
func (r *Rtt) Reset(ctx context.Context) error { return r.probed.Reset(ctx) }

// Addr is the RTT control block address in use.
func (r *Rtt) Addr() uint64 { return r.addr }

// Reflash programs the target's ELF and picks up the control block address
// of the new image.
func (r *Rtt) Reflash(ctx context.Context) error {
	fw := r.target.Firmware()
	if err := r.flash(ctx, fw); err != nil {
		return err
	}
	addr, err := r.resolve(fw)
	if err != nil {
		return err
	}
	r.addr = addr
	return nil
}

// Connect starts the goroutine. Attaching happens on the goroutine; a
// failed attach is reported once and the source detaches itself.
func (r *Rtt) Connect(sink Sink) error {
	if r.busy() {
		return ErrAlreadyConnected
	}
	if r.debugger == nil {
		return errors.Wrap(ErrNotSupported, "no debugger configured")
	}
	addr := r.addr
	return r.start(func(ctx context.Context) {
		r.run(ctx, addr, sink)
	}, nil)
}

func (r *Rtt) run(ctx context.Context, addr uint64, sink Sink) {
	sess, err := r.debugger.Open(ctx, r.target.Probe())
	if err == nil {
		defer func() { _ = sess.Close() }()
	}
	var ch io.ReadCloser
	if err == nil {
		ch, err = sess.AttachRTT(ctx, addr)
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.WithFields(r.fields()).WithError(err).Error("rtt attach failed")
		sink.Message(ctx, fmt.Sprintf("%s: RTT attach failed: %v", r.label, err))
		sink.Detach(ctx, r.id, false)
		return
	}
	defer func() { _ = ch.Close() }()

	buf := make([]byte, readChunkSize)
	for ctx.Err() == nil {
		n, err := ch.Read(buf)
		if n > 0 {
			sink.Bytes(ctx, r.id, clone(buf[:n]))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.WithFields(r.fields()).WithError(err).Error("rtt channel closed")
				sink.Message(ctx, fmt.Sprintf("%s: RTT channel closed", r.label))
				sink.Detach(ctx, r.id, true)
				return
			}
			log.WithFields(r.fields()).WithError(err).Debug("rtt read failed")
		}
		if !pause(ctx, hardwarePollInterval) {
			return
		}
	}
}
