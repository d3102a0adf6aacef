package commander

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/config"
	"github.com/five82/uberlog/internal/source"
)

// refresh matches attached probes against the configured targets. New
// matches are registered but not connected; hardware sources whose probe
// is gone are disconnected and removed. File and stdin sources have no
// probe and are left alone.
func (c *Commander) refresh(ctx context.Context) error {
	infos, err := c.opts.Probes.List()
	if err != nil {
		return errors.Wrap(err, "list probes")
	}

	present := make(map[string]bool, len(infos))
	for _, info := range infos {
		present[info.Serial] = true
		if c.bySerial(info.Serial) != nil {
			continue
		}
		target, ok := c.opts.Targets.Lookup(info.Serial)
		if !ok {
			log.WithFields(log.Fields{"serial": info.Serial, "port": info.Port}).Debug("probe has no target")
			continue
		}
		src, err := c.hardwareSource(target)
		if err != nil {
			log.WithField("target", target.Name).WithError(err).Error("target setup failed")
			c.message(ctx, "%s: %v", target.Name, err)
			continue
		}
		c.register(ctx, src)
	}

	for _, src := range c.all() {
		serial := src.ProbeSerial()
		if serial == "" || present[serial] {
			continue
		}
		log.WithFields(log.Fields{"source": src.ID(), "serial": serial}).Info("probe vanished")
		c.remove(ctx, src.ID())
	}
	return nil
}

func (c *Commander) hardwareSource(target config.Target) (source.Source, error) {
	switch {
	case target.LogBackend.Uart != nil:
		return source.NewUart(c.nextID(), target, c.opts.OpenPort, c.opts.Debugger), nil
	case target.LogBackend.Rtt != nil:
		addr, err := c.opts.RTTAddress(target.LogBackend.Rtt.ElfPath)
		if err != nil {
			return nil, err
		}
		return source.NewRtt(c.nextID(), target, addr, c.opts.RTTAddress, c.opts.Debugger), nil
	default:
		return nil, errors.New("target has no log backend")
	}
}

func (c *Commander) lookup(id uint32) (source.Source, error) {
	src := c.get(id)
	if src == nil {
		return nil, errors.Errorf("no source with id %d", id)
	}
	return src, nil
}

func (c *Commander) reset(ctx context.Context, id uint32) error {
	src, err := c.lookup(id)
	if err != nil {
		return err
	}
	err = src.Reset(ctx)
	switch {
	case errors.Is(err, source.ErrNotSupported):
		c.message(ctx, "%s: source cannot be reset", src.Label())
		return nil
	case err != nil:
		return errors.Wrapf(err, "%s: reset", src.Label())
	}
	c.message(ctx, "%s: target reset", src.Label())
	return nil
}

// reflash programs the target behind a probe-backed source. A connected
// source is disconnected for the duration and reconnected afterwards.
func (c *Commander) reflash(ctx context.Context, id uint32) error {
	src, err := c.lookup(id)
	if err != nil {
		return err
	}
	if src.ProbeSerial() == "" {
		c.message(ctx, "%s: source cannot be reflashed", src.Label())
		return nil
	}

	wasConnected := src.Connected()
	if wasConnected {
		c.disconnect(ctx, id)
	}
	c.message(ctx, "%s: flashing", src.Label())
	err = src.Reflash(ctx)
	switch {
	case errors.Is(err, source.ErrNotSupported):
		c.message(ctx, "%s: source cannot be reflashed", src.Label())
		err = nil
	case err != nil:
		err = errors.Wrapf(err, "%s: reflash", src.Label())
	default:
		c.message(ctx, "%s: flashed", src.Label())
	}
	if wasConnected {
		if cerr := c.connect(ctx, id); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
