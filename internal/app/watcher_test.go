package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/uberlog/internal/commander"
)

func TestIsDeviceChange(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"acm created", fsnotify.Event{Name: "/dev/ttyACM0", Op: fsnotify.Create}, true},
		{"usb removed", fsnotify.Event{Name: "/dev/ttyUSB1", Op: fsnotify.Remove}, true},
		{"mac node renamed", fsnotify.Event{Name: "/dev/cu.usbmodem1101", Op: fsnotify.Rename}, true},
		{"tty written", fsnotify.Event{Name: "/dev/ttyACM0", Op: fsnotify.Write}, false},
		{"other node", fsnotify.Event{Name: "/dev/sda1", Op: fsnotify.Create}, false},
		{"chmod", fsnotify.Event{Name: "/dev/ttyS0", Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDeviceChange(tt.ev); got != tt.want {
				t.Fatalf("isDeviceChange(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func waitForRefresh(t *testing.T, q commander.Queue, within time.Duration) {
	t.Helper()
	select {
	case cmd := <-q:
		if _, ok := cmd.(commander.RefreshProbeInfo); !ok {
			t.Fatalf("queued %T, want RefreshProbeInfo", cmd)
		}
	case <-time.After(within):
		t.Fatal("no RefreshProbeInfo queued")
	}
}

func TestWatcherCoalescesDeviceBursts(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := commander.NewQueue(8)
	StartWatcher(ctx, q, WatchOptions{Dir: dir, Settle: 150 * time.Millisecond})

	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ttyACM0", "ttyACM1"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	waitForRefresh(t, q, 2*time.Second)

	select {
	case cmd := <-q:
		t.Fatalf("burst produced a second command %T", cmd)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherFallsBackToPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := commander.NewQueue(8)
	missing := filepath.Join(t.TempDir(), "missing")
	StartWatcher(ctx, q, WatchOptions{Dir: missing, Fallback: 20 * time.Millisecond})

	waitForRefresh(t, q, 2*time.Second)
	waitForRefresh(t, q, 2*time.Second)
}

func TestPollerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := commander.NewQueue(1)
	StartPoller(ctx, q, 10*time.Millisecond)
	waitForRefresh(t, q, 2*time.Second)
	cancel()

	// Drain anything sent before cancellation was observed.
	time.Sleep(50 * time.Millisecond)
	for len(q) > 0 {
		<-q
	}
	select {
	case <-q:
		t.Fatal("poller kept sending after cancel")
	case <-time.After(100 * time.Millisecond):
	}
}
