package cmdline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/five82/uberlog/internal/commander"
	"github.com/five82/uberlog/internal/filter"
	"github.com/five82/uberlog/internal/prefs"
)

type instruction func(args []string) (commander.Command, error)

// Parser converts command lines into commands.
type Parser struct {
	aliases      []prefs.Alias
	instructions map[string]instruction
}

// New creates a parser with the built-in instructions and the given aliases.
func New(aliases []prefs.Alias) *Parser {
	p := &Parser{
		aliases:      append([]prefs.Alias(nil), aliases...),
		instructions: make(map[string]instruction),
	}
	p.Register(":filter", parseFilter)
	p.Register(":clear_filters", noArgs(commander.ClearFilters{}))
	p.Register(":clear", noArgs(commander.ClearLogs{}))
	p.Register(":find", parseFind)
	p.Register(":stream_in", onePath(func(path string) commander.Command {
		return commander.StreamFile{Path: path}
	}))
	p.Register(":stdin", noArgs(commander.StreamStdin{}))
	p.Register(":stream_out", onePath(func(path string) commander.Command {
		return commander.StreamLogs{Enable: true, Path: path}
	}))
	p.Register(":stream_out_stop", noArgs(commander.StreamLogs{Enable: false}))
	p.Register(":refresh", noArgs(commander.RefreshProbeInfo{}))
	p.Register(":connect", sourceID(func(id uint32) commander.Command {
		return commander.ConnectLogSource{ID: id}
	}))
	p.Register(":disconnect", sourceID(func(id uint32) commander.Command {
		return commander.DisconnectLogSource{ID: id}
	}))
	p.Register(":remove", sourceID(func(id uint32) commander.Command {
		return commander.RemoveLogSource{ID: id}
	}))
	p.Register(":reset", sourceID(func(id uint32) commander.Command {
		return commander.Reset{ID: id}
	}))
	p.Register(":reflash", sourceID(func(id uint32) commander.Command {
		return commander.Reflash{ID: id}
	}))
	return p
}

// Register adds or replaces an instruction. opcode includes the leading ':'.
func (p *Parser) Register(opcode string, fn func(args []string) (commander.Command, error)) {
	p.instructions[opcode] = fn
}

// Instructions lists the registered opcodes, sorted.
func (p *Parser) Instructions() []string {
	names := make([]string, 0, len(p.instructions))
	for name := range p.instructions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse converts one command line. A blank line yields (nil, nil).
func (p *Parser) Parse(line string) (commander.Command, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "/") {
		line = ":find " + strings.TrimPrefix(line, "/")
	}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, nil
	}
	tokens = p.expand(tokens)
	if len(tokens) == 0 {
		return nil, nil
	}

	fn, ok := p.instructions[tokens[0]]
	if !ok {
		return nil, errors.Errorf("Unknown command %s", tokens[0])
	}
	return fn(tokens[1:])
}

func (p *Parser) expand(tokens []string) []string {
	for _, a := range p.aliases {
		if len(tokens) == 0 || a.Alias != tokens[0] {
			continue
		}
		expanded := strings.Fields(a.Expanded)
		tokens = append(expanded, tokens[1:]...)
	}
	return tokens
}

func noArgs(cmd commander.Command) instruction {
	return func(args []string) (commander.Command, error) {
		if len(args) != 0 {
			return nil, errors.New("Too many arguments")
		}
		return cmd, nil
	}
}

func onePath(build func(path string) commander.Command) instruction {
	return func(args []string) (commander.Command, error) {
		switch {
		case len(args) == 0:
			return nil, errors.New("Wrong arguments, expected just the path")
		case len(args) > 1:
			return nil, errors.New("Too many arguments")
		}
		return build(args[0]), nil
	}
}

func sourceID(build func(id uint32) commander.Command) instruction {
	return func(args []string) (commander.Command, error) {
		if len(args) != 1 {
			return nil, errors.New("Wrong arguments, expected a source id")
		}
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return nil, errors.Errorf("Invalid source id %q", args[0])
		}
		return build(uint32(id)), nil
	}
}

func parseFind(args []string) (commander.Command, error) {
	if len(args) == 0 {
		return nil, errors.New("Nothing to search for")
	}
	return commander.FindLog{Text: strings.Join(args, " ")}, nil
}

// parseFilter handles `:filter {h|i|e} [color] text`. The color is only
// taken when the token after the kind names one; otherwise every remaining
// token is part of the match text.
func parseFilter(args []string) (commander.Command, error) {
	if len(args) == 0 {
		return nil, errors.New("Filter information missing")
	}
	if len(args) < 2 {
		return nil, errors.New("Wrong arguments. Expected '/{h,i,e} {color} word'")
	}

	kind, ok := filter.ParseKind(args[0][:1])
	if !ok {
		return nil, errors.New("Wrong argument")
	}

	rest := args[1:]
	style, _ := filter.HighlightStyle(filter.DefaultColor)
	if len(rest) > 1 {
		if s, ok := filter.HighlightStyle(rest[0]); ok {
			style = s
			rest = rest[1:]
		}
	}

	return commander.AddFilter{Filter: filter.Filter{
		Kind:  kind,
		Match: strings.Join(rest, " "),
		Style: style,
	}}, nil
}
