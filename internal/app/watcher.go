package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/commander"
)

const (
	defaultDeviceDir     = "/dev"
	defaultHotplugSettle = 500 * time.Millisecond
)

// WatchOptions tune StartWatcher.
type WatchOptions struct {
	Dir      string        // device directory, default /dev
	Settle   time.Duration // quiet period before a rescan, default 500ms
	Fallback time.Duration // poll interval when Dir cannot be watched
}

// StartWatcher requests a probe rescan whenever serial device nodes appear
// or vanish. Bursts of events (a probe exposes several nodes) collapse into
// one RefreshProbeInfo. When the directory cannot be watched it falls back
// to StartPoller. It returns immediately.
func StartWatcher(ctx context.Context, queue commander.Queue, opts WatchOptions) {
	if opts.Dir == "" {
		opts.Dir = defaultDeviceDir
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultHotplugSettle
	}

	watcher, err := newDeviceWatcher(opts.Dir)
	if err != nil {
		log.WithError(err).Warn("device watch unavailable")
		StartPoller(ctx, queue, opts.Fallback)
		return
	}
	log.WithField("dir", opts.Dir).Info("watching for probe hot-plug")

	debounced := debounce.New(opts.Settle)
	rescan := func() {
		queue.Send(ctx, commander.RefreshProbeInfo{})
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isDeviceChange(ev) {
					continue
				}
				log.WithFields(log.Fields{"path": ev.Name, "op": ev.Op.String()}).Debug("device change")
				debounced(rescan)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("device watch error")
			}
		}
	}()
}

func newDeviceWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}
	return watcher, nil
}

// isDeviceChange reports whether ev is a serial node being added or removed.
func isDeviceChange(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return strings.HasPrefix(name, "tty") || strings.HasPrefix(name, "cu.")
}
