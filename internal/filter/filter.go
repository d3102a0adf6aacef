// Package filter evaluates include, exclude and highlight rules against log
// lines.
//
// Rules run in insertion order. A line starts with the dim default style;
// an inclusion rule that does not match or an exclusion rule that does
// suppresses it, and nothing later in the list can bring it back. A
// highlighter only swaps the style. Rules with an empty match string never
// fire, so a rule can be created before its text is known.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/five82/uberlog/internal/logline"
)

// Kind selects how a rule treats a matching line.
type Kind int

const (
	Inclusion Kind = iota
	Exclusion
	Highlighter
)

func (k Kind) String() string {
	switch k {
	case Inclusion:
		return "include"
	case Exclusion:
		return "exclude"
	case Highlighter:
		return "highlight"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Letter returns the single-character form used on the command line.
func (k Kind) Letter() string {
	switch k {
	case Inclusion:
		return "i"
	case Exclusion:
		return "e"
	default:
		return "h"
	}
}

// ParseKind maps the command-line letters h, i and e to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "i":
		return Inclusion, true
	case "e":
		return Exclusion, true
	case "h":
		return Highlighter, true
	}
	return 0, false
}

// Filter is one rule. Style is only used by highlighters.
type Filter struct {
	Kind  Kind
	Match string
	Style logline.Style
}

func (f Filter) String() string {
	if f.Kind == Highlighter {
		return fmt.Sprintf("%s %s %q", f.Kind, ColorName(f.Style.Color), f.Match)
	}
	return fmt.Sprintf("%s %q", f.Kind, f.Match)
}

// Apply runs msg through filters. It returns the message with its final
// style and false when some rule suppressed it.
func Apply(filters []Filter, msg logline.Message) (logline.Message, bool) {
	msg.Style = logline.DefaultStyle
	for _, f := range filters {
		if f.Match == "" {
			continue
		}
		hit := strings.Contains(msg.Text, f.Match)
		switch f.Kind {
		case Inclusion:
			if !hit {
				return logline.Message{}, false
			}
		case Exclusion:
			if hit {
				return logline.Message{}, false
			}
		case Highlighter:
			if hit {
				msg.Style = f.Style
			}
		}
	}
	return msg, true
}

// ApplyAll re-evaluates a whole history and returns the surviving lines in
// order.
func ApplyAll(filters []Filter, history []logline.Message) []logline.Message {
	out := make([]logline.Message, 0, len(history))
	for _, msg := range history {
		if styled, ok := Apply(filters, msg); ok {
			out = append(out, styled)
		}
	}
	return out
}

// DefaultColor is used when a highlighter names no color.
const DefaultColor = "blue"

var colors = map[string]string{
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"white":   "7",
}

// HighlightStyle returns the style for a named color.
func HighlightStyle(name string) (logline.Style, bool) {
	c, ok := colors[strings.ToLower(name)]
	if !ok {
		return logline.Style{}, false
	}
	return logline.Style{Color: c, Bold: true}, true
}

// ColorName is the inverse of HighlightStyle. Unknown values come back as-is.
func ColorName(value string) string {
	for name, c := range colors {
		if c == value {
			return name
		}
	}
	return value
}

// ColorNames lists the accepted highlight colors, sorted.
func ColorNames() []string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
