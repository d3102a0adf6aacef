package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/commander"
)

const defaultPollInterval = 2 * time.Second

// StartPoller launches a background goroutine that asks the commander to
// rescan probes at a fixed cadence. It is the fallback when device events
// cannot be watched. It returns immediately.
func StartPoller(ctx context.Context, queue commander.Queue, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	log.WithField("interval", interval).Info("polling for probe changes")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !queue.Send(ctx, commander.RefreshProbeInfo{}) {
					return
				}
			}
		}
	}()
}
