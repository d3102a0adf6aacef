package cmdline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/uberlog/internal/commander"
	"github.com/five82/uberlog/internal/filter"
	"github.com/five82/uberlog/internal/logline"
	"github.com/five82/uberlog/internal/prefs"
)

func TestParse(t *testing.T) {
	red := logline.Style{Color: "1", Bold: true}
	blue := logline.Style{Color: "4", Bold: true}

	tests := []struct {
		name string
		line string
		want commander.Command
	}{
		{"highlight with color", ":filter h red ERROR", commander.AddFilter{Filter: filter.Filter{Kind: filter.Highlighter, Match: "ERROR", Style: red}}},
		{"highlight default color", ":filter h WARN", commander.AddFilter{Filter: filter.Filter{Kind: filter.Highlighter, Match: "WARN", Style: blue}}},
		{"inclusion", ":filter i net", commander.AddFilter{Filter: filter.Filter{Kind: filter.Inclusion, Match: "net", Style: blue}}},
		{"exclusion long kind", ":filter exclude heartbeat", commander.AddFilter{Filter: filter.Filter{Kind: filter.Exclusion, Match: "heartbeat", Style: blue}}},
		{"multi word match", ":filter h green link up", commander.AddFilter{Filter: filter.Filter{Kind: filter.Highlighter, Match: "link up", Style: logline.Style{Color: "2", Bold: true}}}},
		{"non color second token", ":filter i link up", commander.AddFilter{Filter: filter.Filter{Kind: filter.Inclusion, Match: "link up", Style: blue}}},
		{"color word alone is the match", ":filter h red", commander.AddFilter{Filter: filter.Filter{Kind: filter.Highlighter, Match: "red", Style: blue}}},
		{"clear filters", ":clear_filters", commander.ClearFilters{}},
		{"clear logs", ":clear", commander.ClearLogs{}},
		{"find", ":find boot done", commander.FindLog{Text: "boot done"}},
		{"slash search", "/timeout", commander.FindLog{Text: "timeout"}},
		{"stream in", ":stream_in /tmp/a.log", commander.StreamFile{Path: "/tmp/a.log"}},
		{"stdin", ":stdin", commander.StreamStdin{}},
		{"stream out", ":stream_out ~/cap.log", commander.StreamLogs{Enable: true, Path: "~/cap.log"}},
		{"stream out stop", ":stream_out_stop", commander.StreamLogs{Enable: false}},
		{"refresh", ":refresh", commander.RefreshProbeInfo{}},
		{"connect", ":connect 3", commander.ConnectLogSource{ID: 3}},
		{"disconnect", ":disconnect 3", commander.DisconnectLogSource{ID: 3}},
		{"remove", ":remove 7", commander.RemoveLogSource{ID: 7}},
		{"reset", ":reset 1", commander.Reset{ID: 1}},
		{"reflash", " :reflash 2 ", commander.Reflash{ID: 2}},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{":filter", "Filter information missing"},
		{":filter h", "Wrong arguments. Expected '/{h,i,e} {color} word'"},
		{":filter x ERROR", "Wrong argument"},
		{":find", "Nothing to search for"},
		{"/", "Nothing to search for"},
		{":clear extra", "Too many arguments"},
		{":stream_out_stop now", "Too many arguments"},
		{":stream_in", "Wrong arguments, expected just the path"},
		{":stream_out a b", "Too many arguments"},
		{":connect", "Wrong arguments, expected a source id"},
		{":connect one", `Invalid source id "one"`},
		{":reset -1", `Invalid source id "-1"`},
		{":frobnicate", "Unknown command :frobnicate"},
	}

	p := New(nil)
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			assert.Nil(t, got)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestParseBlank(t *testing.T) {
	p := New(nil)
	for _, line := range []string{"", "   ", "\t"} {
		got, err := p.Parse(line)
		assert.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestAliases(t *testing.T) {
	p := New([]prefs.Alias{
		{Alias: ":err", Expanded: ":filter h red"},
		{Alias: ":rec", Expanded: ":stream_out"},
		{Alias: ":quiet", Expanded: ":noise"},
		{Alias: ":noise", Expanded: ":filter e"},
		{Alias: ":nothing", Expanded: "   "},
	})

	got, err := p.Parse(":err TIMEOUT")
	require.NoError(t, err)
	assert.Equal(t, commander.AddFilter{Filter: filter.Filter{
		Kind:  filter.Highlighter,
		Match: "TIMEOUT",
		Style: logline.Style{Color: "1", Bold: true},
	}}, got)

	got, err = p.Parse(":rec /tmp/out.log")
	require.NoError(t, err)
	assert.Equal(t, commander.StreamLogs{Enable: true, Path: "/tmp/out.log"}, got)

	// Aliases chain in list order.
	got, err = p.Parse(":quiet heartbeat")
	require.NoError(t, err)
	assert.Equal(t, filter.Exclusion, got.(commander.AddFilter).Filter.Kind)

	got, err = p.Parse(":nothing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegister(t *testing.T) {
	p := New(nil)
	p.Register(":hello", func(args []string) (commander.Command, error) {
		return commander.PrintMessage{Text: "hi " + args[0]}, nil
	})

	got, err := p.Parse(":hello there")
	require.NoError(t, err)
	assert.Equal(t, commander.PrintMessage{Text: "hi there"}, got)
	assert.Contains(t, p.Instructions(), ":hello")
	assert.Contains(t, p.Instructions(), ":filter")
}
