package logline

import (
	"testing"
	"time"
)

func TestTimestampOf(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 3, 42*int(time.Millisecond)+999, time.Local)

	got := TimestampOf(at)
	want := Timestamp{Hour: 7, Minute: 5, Second: 3, Millisecond: 42}
	if got != want {
		t.Fatalf("TimestampOf = %+v, want %+v", got, want)
	}
	if s := got.String(); s != "07:05:03.042" {
		t.Fatalf("String() = %q, want %q", s, "07:05:03.042")
	}
}

func TestDefaultStyleIsDim(t *testing.T) {
	if !DefaultStyle.Dim || DefaultStyle.Color != "" {
		t.Fatalf("DefaultStyle = %+v, want dim without color", DefaultStyle)
	}
}
