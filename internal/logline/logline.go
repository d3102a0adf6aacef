// Package logline defines the reassembled log line shared by the dispatch
// loop, the filter engine and the UI.
package logline

import (
	"fmt"
	"time"
)

// Timestamp is the wall-clock time a line was reassembled at.
type Timestamp struct {
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

// TimestampOf captures the clock fields of t.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
}

// String renders the timestamp as HH:MM:SS.mmm.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Millisecond)
}

// Style carries display attributes for a line. Color is a terminal color
// value (ANSI index or hex) understood by the renderer; empty means the
// theme decides.
type Style struct {
	Color string
	Dim   bool
	Bold  bool
}

// DefaultStyle is applied to every line before filters run.
var DefaultStyle = Style{Dim: true}

// Message is one reassembled line. Messages are never modified after
// creation; filters produce styled copies.
type Message struct {
	Timestamp Timestamp
	SourceID  uint32
	Text      string
	Style     Style
}
