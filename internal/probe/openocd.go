package probe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	tclTerminator     = 0x1a
	defaultCmdTimeout = 10 * time.Second
	flashTimeout      = 2 * time.Minute
	rttReadTimeout    = 100 * time.Millisecond
	rttSearchSize     = 16
	rttBlockID        = "SEGGER RTT"
)

// OpenOCD opens sessions against a running OpenOCD through its Tcl RPC
// server (default port 6666).
type OpenOCD struct {
	DialTimeout time.Duration
}

// Open implements Debugger.
func (o OpenOCD) Open(ctx context.Context, t Target) (Session, error) {
	timeout := o.DialTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", t.Endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to openocd at %s for probe %s", t.Endpoint, t.Serial)
	}
	log.WithFields(log.Fields{
		"probe":     t.Serial,
		"processor": t.Processor,
		"endpoint":  t.Endpoint,
	}).Debug("openocd session opened")
	return &tclSession{conn: conn, rd: bufio.NewReader(conn), target: t}, nil
}

type tclSession struct {
	conn   net.Conn
	rd     *bufio.Reader
	target Target
	rtt    net.Conn
}

// exec runs one Tcl command and returns its result. Failures raised by the
// command are caught on the OpenOCD side and come back as errors.
func (s *tclSession) exec(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetDeadline(deadline); err != nil {
		return "", errors.Wrap(err, "set deadline")
	}

	wrapped := fmt.Sprintf("if {[catch {%s} r]} {set r \"error: $r\"} else {set r \"ok: $r\"}", cmd)
	if _, err := s.conn.Write(append([]byte(wrapped), tclTerminator)); err != nil {
		return "", errors.Wrapf(err, "send %q", cmd)
	}
	reply, err := s.rd.ReadString(tclTerminator)
	if err != nil {
		return "", errors.Wrapf(err, "read reply to %q", cmd)
	}
	reply = strings.TrimSpace(strings.TrimSuffix(reply, string(rune(tclTerminator))))
	return parseReply(cmd, reply)
}

func parseReply(cmd, reply string) (string, error) {
	if rest, ok := strings.CutPrefix(reply, "ok:"); ok {
		return strings.TrimSpace(rest), nil
	}
	if rest, ok := strings.CutPrefix(reply, "error:"); ok {
		return "", errors.Errorf("openocd %q: %s", cmd, strings.TrimSpace(rest))
	}
	return reply, nil
}

func (s *tclSession) AttachRTT(ctx context.Context, addr uint64) (io.ReadCloser, error) {
	port := s.target.RTTPort
	// Leftovers from an earlier session are harmless to stop.
	_, _ = s.exec(ctx, fmt.Sprintf("rtt server stop %d", port), defaultCmdTimeout)
	_, _ = s.exec(ctx, "rtt stop", defaultCmdTimeout)

	steps := []string{
		fmt.Sprintf("rtt setup 0x%x %d {%s}", addr, rttSearchSize, rttBlockID),
		"rtt start",
		fmt.Sprintf("rtt server start %d 0", port),
	}
	for _, step := range steps {
		if _, err := s.exec(ctx, step, defaultCmdTimeout); err != nil {
			return nil, errors.Wrap(err, "attach rtt")
		}
	}

	host, _, err := net.SplitHostPort(s.target.Endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "parse endpoint %s", s.target.Endpoint)
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, fmt.Sprint(port)))
	if err != nil {
		return nil, errors.Wrap(err, "connect to rtt server")
	}
	s.rtt = conn
	return &rttReader{conn: conn}, nil
}

func (s *tclSession) Reset(ctx context.Context) error {
	_, err := s.exec(ctx, "reset run", defaultCmdTimeout)
	return err
}

func (s *tclSession) Flash(ctx context.Context, elfPath string) error {
	if _, err := os.Stat(elfPath); err != nil {
		return errors.Wrap(err, "flash")
	}
	_, err := s.exec(ctx, fmt.Sprintf("program {%s} verify reset", elfPath), flashTimeout)
	return err
}

func (s *tclSession) Close() error {
	if s.rtt != nil {
		_ = s.rtt.Close()
		_, _ = s.exec(context.Background(), fmt.Sprintf("rtt server stop %d", s.target.RTTPort), time.Second)
		s.rtt = nil
	}
	return s.conn.Close()
}

// rttReader turns read timeouts on the RTT socket into empty reads.
type rttReader struct {
	conn net.Conn
}

func (r *rttReader) Read(p []byte) (int, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(rttReadTimeout)); err != nil {
		return 0, err
	}
	n, err := r.conn.Read(p)
	var ne net.Error
	if err != nil && errors.As(err, &ne) && ne.Timeout() {
		return n, nil
	}
	return n, err
}

func (r *rttReader) Close() error {
	return r.conn.Close()
}
