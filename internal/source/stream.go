package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/muesli/cancelreader"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// File tails a file from its beginning. Reaching the end is not terminal:
// the goroutine keeps polling so lines appended later are picked up.
type File struct {
	base
	path string
}

// NewFile creates a file source. Nothing is opened until Connect.
func NewFile(id uint32, path string) *File {
	return &File{
		base: base{id: id, label: fmt.Sprintf("Stream (%s)", path)},
		path: path,
	}
}

// Path is the file being streamed.
func (f *File) Path() string { return f.path }

// Connect opens the file and starts reading it.
func (f *File) Connect(sink Sink) error {
	if f.busy() {
		return ErrAlreadyConnected
	}
	file, err := os.Open(f.path)
	if err != nil {
		return errors.Wrapf(err, "open %s", f.path)
	}
	err = f.start(func(ctx context.Context) {
		defer func() { _ = file.Close() }()
		readLines(ctx, f.id, bufio.NewReader(file), sink, f.fields())
	}, nil)
	if err != nil {
		_ = file.Close()
	}
	return err
}

// Stdin streams the process's standard input.
type Stdin struct {
	base
	in io.Reader
}

// NewStdin creates a source reading from in, normally os.Stdin.
func NewStdin(id uint32, in io.Reader) *Stdin {
	return &Stdin{
		base: base{id: id, label: "Stream (STDIN)"},
		in:   in,
	}
}

// Connect starts reading. The read is cancelable so Disconnect never waits
// on a terminal that is not sending anything.
func (s *Stdin) Connect(sink Sink) error {
	if s.busy() {
		return ErrAlreadyConnected
	}
	cr, err := cancelreader.NewReader(s.in)
	if err != nil {
		return errors.Wrap(err, "wrap stdin")
	}
	err = s.start(func(ctx context.Context) {
		defer func() { _ = cr.Close() }()
		readLines(ctx, s.id, bufio.NewReader(cr), sink, s.fields())
	}, func() { cr.Cancel() })
	if err != nil {
		_ = cr.Close()
	}
	return err
}

// readLines forwards newline-delimited reads until ctx ends. A partial line
// at EOF is forwarded as-is; the reassembler keeps it until the rest arrives.
func readLines(ctx context.Context, id uint32, rd *bufio.Reader, sink Sink, fields log.Fields) {
	for ctx.Err() == nil {
		for ctx.Err() == nil {
			line, err := rd.ReadBytes('\n')
			if len(line) > 0 {
				sink.Bytes(ctx, id, line)
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, cancelreader.ErrCanceled) {
					log.WithFields(fields).WithError(err).Warn("stream read failed")
				}
				break
			}
		}
		if !pause(ctx, streamPollInterval) {
			return
		}
	}
}
