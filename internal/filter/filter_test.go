package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/uberlog/internal/logline"
)

func msg(text string) logline.Message {
	return logline.Message{SourceID: 1, Text: text}
}

func highlight(match, color string) Filter {
	style, ok := HighlightStyle(color)
	if !ok {
		panic("unknown color " + color)
	}
	return Filter{Kind: Highlighter, Match: match, Style: style}
}

func TestApply(t *testing.T) {
	red, _ := HighlightStyle("red")

	tests := []struct {
		name      string
		filters   []Filter
		text      string
		wantOK    bool
		wantStyle logline.Style
	}{
		{"no filters", nil, "hello", true, logline.DefaultStyle},
		{"include hit", []Filter{{Kind: Inclusion, Match: "ERR"}}, "ERR x", true, logline.DefaultStyle},
		{"include miss", []Filter{{Kind: Inclusion, Match: "ERR"}}, "ok", false, logline.Style{}},
		{"exclude hit", []Filter{{Kind: Exclusion, Match: "noise"}}, "noise here", false, logline.Style{}},
		{"exclude miss", []Filter{{Kind: Exclusion, Match: "noise"}}, "signal", true, logline.DefaultStyle},
		{"highlight hit", []Filter{highlight("WARN", "red")}, "WARN low", true, red},
		{"highlight miss", []Filter{highlight("WARN", "red")}, "fine", true, logline.DefaultStyle},
		{"case sensitive", []Filter{{Kind: Inclusion, Match: "err"}}, "ERR", false, logline.Style{}},
		{
			"exclusion before highlighter wins",
			[]Filter{{Kind: Exclusion, Match: "ERR"}, highlight("WARN", "red")},
			"ERR and WARN", false, logline.Style{},
		},
		{
			"later highlighter overrides earlier",
			[]Filter{highlight("a", "green"), highlight("b", "red")},
			"ab", true, red,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Apply(tt.filters, msg(tt.text))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.text, got.Text)
				assert.Equal(t, tt.wantStyle, got.Style)
			}
		})
	}
}

func TestApplyEmptyMatchNeverFires(t *testing.T) {
	lines := []string{"", "anything", "ERR boom"}
	filters := [][]Filter{
		{{Kind: Inclusion}},
		{{Kind: Inclusion}, {Kind: Exclusion}},
		{{Kind: Exclusion}, {Kind: Highlighter, Style: logline.Style{Color: "1"}}},
	}
	for _, fs := range filters {
		for _, line := range lines {
			got, ok := Apply(fs, msg(line))
			require.True(t, ok, "filters %v suppressed %q", fs, line)
			assert.Equal(t, logline.DefaultStyle, got.Style)
		}
	}
}

func TestApplyResetsIncomingStyle(t *testing.T) {
	in := msg("plain")
	in.Style = logline.Style{Color: "5"}
	got, ok := Apply(nil, in)
	require.True(t, ok)
	assert.Equal(t, logline.DefaultStyle, got.Style)
}

func TestApplyAllReplayMatchesIncremental(t *testing.T) {
	history := []logline.Message{
		msg("boot"), msg("ERR disk"), msg("WARN temp"), msg("ERR WARN both"),
		msg("info tick"), msg("WARN fan"),
	}
	filters := []Filter{
		{Kind: Exclusion, Match: "ERR"},
		highlight("WARN", "yellow"),
		{Kind: Inclusion, Match: ""},
		{Kind: Exclusion, Match: "tick"},
	}

	batch := ApplyAll(filters, history)

	// Re-adding one at a time and re-evaluating after each step must end
	// at the same view.
	var (
		active []Filter
		view   []logline.Message
	)
	for _, f := range filters {
		active = append(active, f)
		view = ApplyAll(active, history)
	}
	assert.Equal(t, batch, view)

	texts := make([]string, len(batch))
	for i, m := range batch {
		texts[i] = m.Text
	}
	assert.Equal(t, []string{"boot", "WARN temp", "WARN fan"}, texts)
}

func TestParseKind(t *testing.T) {
	for letter, want := range map[string]Kind{"i": Inclusion, "e": Exclusion, "h": Highlighter} {
		got, ok := ParseKind(letter)
		require.True(t, ok)
		assert.Equal(t, want, got)
		assert.Equal(t, letter, got.Letter())
	}
	_, ok := ParseKind("x")
	assert.False(t, ok)
}

func TestColors(t *testing.T) {
	assert.Equal(t, []string{"blue", "green", "magenta", "red", "white", "yellow"}, ColorNames())
	for _, name := range ColorNames() {
		style, ok := HighlightStyle(name)
		require.True(t, ok)
		assert.Equal(t, name, ColorName(style.Color))
	}
	_, ok := HighlightStyle("orange")
	assert.False(t, ok)
}
