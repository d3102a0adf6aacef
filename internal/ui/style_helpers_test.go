package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestBgStyleRenderKeepsText(t *testing.T) {
	bg := NewBgStyle("#101010")
	style := lipgloss.NewStyle()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"boot", "boot"},
		{"rx  timeout", "rx  timeout"},
		{"id\tvalue", "id    value"},
	}
	for _, tt := range tests {
		if got := ansi.Strip(bg.Render(tt.in, style)); got != tt.want {
			t.Fatalf("Render(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBgStyleFillLine(t *testing.T) {
	bg := NewBgStyle("#101010")

	short := bg.FillLine("ok", 10)
	if w := lipgloss.Width(short); w != 10 {
		t.Fatalf("FillLine short width = %d, want 10", w)
	}

	long := bg.FillLine(strings.Repeat("x", 30), 10)
	if strings.Contains(long, "\n") {
		t.Fatalf("FillLine wrapped: %q", long)
	}
	if w := lipgloss.Width(long); w != 10 {
		t.Fatalf("FillLine long width = %d, want 10", w)
	}

	if got := bg.FillLine("ok", 0); got != "" {
		t.Fatalf("FillLine zero width = %q, want empty", got)
	}
	if got := bg.Spaces(-1); got != "" {
		t.Fatalf("Spaces(-1) = %q, want empty", got)
	}
}
