// Package ui provides the terminal user interface for uberlog.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never touches sources directly: it
// reads events from the commander and writes commands back to it. Both
// directions are channels, so the model stays a plain value updated on the
// Bubble Tea loop.
//
//   - app.go: Model, Options, key dispatch and the Run entry point
//   - events.go: event intake, batching and command delivery
//   - logs.go: live log view, follow mode and search highlighting
//   - sources.go: sources panel (connect, disconnect, reset, reflash)
//   - filters.go: filters panel
//   - header.go: header, key hint bar and status line
//   - help.go: help overlay, including user aliases
//   - theme.go, style_helpers.go, box.go: colors and drawing helpers
//
// # Event Flow
//
//  1. Init arms listenEvents, which blocks for one commander event and
//     drains whatever else is buffered into a single eventsMsg.
//  2. Update folds the batch into the model and re-arms the listener.
//  3. Keys and command lines become commander commands. They are sent from
//     a tea.Cmd goroutine, never from Update, so a full queue cannot stall
//     rendering while the commander waits on a full event channel.
//  4. When the event channel closes the program quits.
//
// # Views
//
//   - Live: filtered log lines, optionally prefixed by time and source id
//   - Sources: every registered source with its connection state
//   - Filters: the active rules in evaluation order
//
// # Key Bindings
//
//   - : open the command line, / search
//   - P sources panel, F filters panel
//   - Space toggle follow, t timestamps, s source ids
//   - n/N next/previous match, esc clear search
//   - T cycle theme, ? help, q quit or back, ctrl+c quit
package ui
