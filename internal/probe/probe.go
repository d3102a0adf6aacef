package probe

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"
	"go.bug.st/serial/enumerator"
)

// Info describes one attached debug probe.
type Info struct {
	Serial  string
	Port    string // first serial device the probe exposes
	Product string
	VID     string
	PID     string
}

// Lister enumerates attached probes.
type Lister interface {
	List() ([]Info, error)
}

// Target identifies the debug session a source needs.
type Target struct {
	Serial    string
	Processor string
	Endpoint  string // OpenOCD Tcl RPC address
	RTTPort   int
}

// Debugger opens debug sessions against targets.
type Debugger interface {
	Open(ctx context.Context, t Target) (Session, error)
}

// Session is an open debug connection to one target.
type Session interface {
	// AttachRTT starts RTT using the control block at addr and returns a
	// reader over up-channel 0. Reads return (0, nil) when no data arrived
	// within a short timeout.
	AttachRTT(ctx context.Context, addr uint64) (io.ReadCloser, error)
	Reset(ctx context.Context) error
	Flash(ctx context.Context, elfPath string) error
	Close() error
}

// USBLister finds probes through the USB serial devices they expose.
// Devices without a USB serial number are skipped.
type USBLister struct{}

// List implements Lister.
func (USBLister) List() ([]Info, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate serial ports")
	}
	return collapse(ports), nil
}

// collapse keeps one Info per probe serial number. Probes exposing several
// CDC interfaces report the lowest-named port.
func collapse(ports []*enumerator.PortDetails) []Info {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })

	seen := make(map[string]bool)
	var out []Info
	for _, p := range ports {
		if p == nil || !p.IsUSB || p.SerialNumber == "" || seen[p.SerialNumber] {
			continue
		}
		seen[p.SerialNumber] = true
		out = append(out, Info{
			Serial:  p.SerialNumber,
			Port:    p.Name,
			Product: p.Product,
			VID:     p.VID,
			PID:     p.PID,
		})
	}
	return out
}
