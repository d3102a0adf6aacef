package commander

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/config"
	"github.com/five82/uberlog/internal/source"
)

func (c *Commander) register(ctx context.Context, src source.Source) {
	c.add(src)
	log.WithFields(log.Fields{"source": src.ID(), "label": src.Label()}).Info("source registered")
	c.emit(ctx, AddNewSource{ID: src.ID(), Label: src.Label()})
}

// connect starts a source. Unknown IDs are ignored since the source may
// have been removed after the request was queued.
func (c *Commander) connect(ctx context.Context, id uint32) error {
	src := c.get(id)
	if src == nil {
		log.WithField("source", id).Warn("connect for unknown source")
		return nil
	}
	if err := src.Connect(c.queue); err != nil {
		if errors.Is(err, source.ErrAlreadyConnected) {
			return nil
		}
		return errors.Wrapf(err, "%s", src.Label())
	}
	c.emit(ctx, SetConnectionSource{ID: id, Connected: true})
	return nil
}

// disconnect stops a source and waits for its goroutine to exit.
func (c *Commander) disconnect(ctx context.Context, id uint32) {
	src := c.get(id)
	if src == nil {
		log.WithField("source", id).Debug("disconnect for unknown source")
		return
	}
	if !src.Connected() {
		return
	}
	src.Disconnect()
	c.emit(ctx, SetConnectionSource{ID: id, Connected: false})
}

func (c *Commander) remove(ctx context.Context, id uint32) {
	src := c.drop(id)
	if src == nil {
		return
	}
	src.Disconnect()
	log.WithFields(log.Fields{"source": id, "label": src.Label()}).Info("source removed")
	c.emit(ctx, RemoveSource{ID: id})
}

func (c *Commander) streamFile(ctx context.Context, path string) error {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	src := source.NewFile(c.nextID(), expanded)
	if err := src.Connect(c.queue); err != nil {
		return err
	}
	c.register(ctx, src)
	c.emit(ctx, SetConnectionSource{ID: src.ID(), Connected: true})
	return nil
}

func (c *Commander) streamStdin(ctx context.Context) error {
	if c.stdin != nil {
		return errors.New("stdin is already streamed")
	}
	src := source.NewStdin(c.nextID(), c.opts.Stdin)
	if err := src.Connect(c.queue); err != nil {
		return err
	}
	c.register(ctx, src)
	c.emit(ctx, SetConnectionSource{ID: src.ID(), Connected: true})
	return nil
}
