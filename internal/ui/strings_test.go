package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"connected to probe", 10, "connect..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("/dev/ttyACM0", 20); got != "/dev/ttyACM0" {
		t.Fatalf("truncateMiddle short = %q", got)
	}
	got := truncateMiddle("uart /dev/serial/by-id/usb-SEGGER_J-Link_000683456789-if00", 24)
	if n := len([]rune(got)); n != 24 {
		t.Fatalf("truncateMiddle length = %d (%q), want 24", n, got)
	}
	if got[:4] != "uart" {
		t.Fatalf("truncateMiddle lost the start: %q", got)
	}
	if want := "789-if00"; got[len(got)-len(want):] != want {
		t.Fatalf("truncateMiddle lost the end: %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q", got)
	}
}
