// Package app provides the orchestration layer for uberlog.
//
// # Overview
//
// This package wires together configuration, the commander, the hot-plug
// watcher and the UI. It is the composition root where every dependency is
// created and connected.
//
// # Startup
//
//  1. Read environment settings (a .env file is honored)
//  2. Send logrus output to the log file, since the TUI owns the terminal
//  3. Load the targets file and user preferences
//  4. Create the command queue and the event channel
//  5. Start the commander goroutine
//  6. Start the hot-plug watcher, or the polling fallback
//  7. Queue the initial probe scan and any sources named on the command line
//  8. Run the UI until the user quits or the context is cancelled
//
// # Data Flow
//
//	┌───────────┐  commands   ┌────────────┐  events   ┌──────┐
//	│ sources   │ ──────────> │ commander  │ ────────> │  ui  │
//	│ watcher   │             │ (one loop) │           │      │
//	│ ui        │             └────────────┘           └──────┘
//	└───────────┘
//
// Every producer writes to the same command queue. The commander is the
// only reader and the only writer of the event channel, and closes it when
// it stops so the UI exits too.
//
// # Hot-plug
//
// Debug probes show up as serial nodes under /dev. The watcher listens for
// nodes being created or removed and coalesces a burst into one
// RefreshProbeInfo. Where /dev cannot be watched, a ticker queues the same
// command every UBERLOG_REFRESH_INTERVAL (default 2s).
//
// # Shutdown
//
// When the UI returns the context is cancelled. The commander disconnects
// every source, closes any recording and returns; Run waits for it before
// returning.
package app
