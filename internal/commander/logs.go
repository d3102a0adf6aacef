package commander

import (
	"bufio"
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/config"
	"github.com/five82/uberlog/internal/filter"
	"github.com/five82/uberlog/internal/linebuf"
	"github.com/five82/uberlog/internal/logline"
)

// parse reassembles a chunk from source id. The source's stored tail is
// taken and written back exactly once. Bytes from an unknown source are
// still turned into lines, but an incomplete tail is dropped.
func (c *Commander) parse(ctx context.Context, id uint32, chunk []byte) {
	src := c.get(id)
	var tail []byte
	if src != nil {
		tail = src.TakeStorage()
	}

	lines, rest := linebuf.Split(tail, chunk)
	for _, line := range lines {
		c.appendLine(ctx, id, linebuf.Decode(line))
	}
	if c.recording != nil && len(lines) > 0 {
		c.flushRecording(ctx)
	}

	if src != nil {
		src.SetStorage(rest)
	} else if len(rest) > 0 {
		log.WithFields(log.Fields{"source": id, "bytes": len(rest)}).Debug("dropping tail of unknown source")
	}
}

func (c *Commander) appendLine(ctx context.Context, id uint32, text string) {
	msg := logline.Message{
		Timestamp: logline.TimestampOf(c.opts.Now()),
		SourceID:  id,
		Text:      text,
		Style:     logline.DefaultStyle,
	}
	c.history = append(c.history, msg)

	if c.recording != nil {
		if err := c.recording.Write(msg.Text); err != nil {
			c.failRecording(ctx, err)
		}
	}

	if out, ok := filter.Apply(c.filters, msg); ok {
		c.emit(ctx, AppendLog{Log: out})
	}
}

// recording is the transcript file lines are copied to.
type recording struct {
	path string
	file *os.File
	w    *bufio.Writer
}

func createRecording(path string) (*recording, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	return &recording{path: path, file: f, w: bufio.NewWriter(f)}, nil
}

func (r *recording) Write(text string) error {
	if _, err := r.w.WriteString(text); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

func (r *recording) Flush() error {
	return r.w.Flush()
}

func (r *recording) Close() error {
	flushErr := r.w.Flush()
	if err := r.file.Close(); err != nil {
		return err
	}
	return flushErr
}

func (c *Commander) startRecording(ctx context.Context, path string) error {
	if c.recording != nil {
		return errors.New("already recording")
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	rec, err := createRecording(expanded)
	if err != nil {
		return err
	}
	for _, msg := range c.history {
		if err := rec.Write(msg.Text); err != nil {
			_ = rec.Close()
			return errors.Wrapf(err, "write %s", expanded)
		}
	}
	if err := rec.Flush(); err != nil {
		_ = rec.Close()
		return errors.Wrapf(err, "write %s", expanded)
	}

	c.recording = rec
	log.WithFields(log.Fields{"path": expanded, "lines": len(c.history)}).Info("recording started")
	c.message(ctx, "Saved/streaming data into %s", expanded)
	return nil
}

func (c *Commander) stopRecording(ctx context.Context) error {
	if c.recording == nil {
		return errors.New("not recording")
	}
	rec := c.recording
	c.recording = nil
	if err := rec.Close(); err != nil {
		return errors.Wrapf(err, "close %s", rec.path)
	}
	log.WithField("path", rec.path).Info("recording stopped")
	c.message(ctx, "Recording stopped")
	return nil
}

func (c *Commander) flushRecording(ctx context.Context) {
	if err := c.recording.Flush(); err != nil {
		c.failRecording(ctx, err)
	}
}

// failRecording stops recording after a write error.
func (c *Commander) failRecording(ctx context.Context, err error) {
	rec := c.recording
	if rec == nil {
		return
	}
	c.recording = nil
	_ = rec.Close()
	log.WithField("path", rec.path).WithError(err).Error("recording failed")
	c.message(ctx, "Recording to %s stopped: %v", rec.path, err)
}
