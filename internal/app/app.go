package app

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/five82/uberlog/internal/commander"
	"github.com/five82/uberlog/internal/config"
	"github.com/five82/uberlog/internal/prefs"
	"github.com/five82/uberlog/internal/ui"
)

const (
	commandQueueSize = 1024
	eventQueueSize   = 4096
)

// Options configure the uberlog application.
type Options struct {
	TargetsPath string // empty uses ~/.config/uberlog/targets.yaml
	PrefsPath   string // empty uses ~/.config/uberlog/prefs.toml
	LogFile     string // empty uses UBERLOG_LOG_FILE or uberlog.log
	LogLevel    string // empty uses UBERLOG_LOG_LEVEL or info

	Files  []string // streamed as file sources at start
	Stdin  bool     // stream standard input at start
	Record string   // start recording into this path
}

// Run boots uberlog and blocks until the UI exits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	env := config.LoadEnv()
	if opts.LogFile == "" {
		opts.LogFile = env.LogFile
	}
	if opts.LogLevel == "" {
		opts.LogLevel = env.LogLevel
	}

	closeLog, err := setupLogging(opts.LogFile, opts.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	targets, err := config.Load(opts.TargetsPath)
	if err != nil {
		return errors.Wrap(err, "load targets")
	}
	for _, problem := range targets.Problems {
		log.WithError(problem).WithField("path", targets.Path).Warn("skipping target")
	}
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.WithError(err).Warn("load preferences")
	}
	log.WithFields(log.Fields{
		"targets": len(targets.Targets),
		"skipped": len(targets.Problems),
		"path":    targets.Path,
	}).Info("uberlog starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := commander.NewQueue(commandQueueSize)
	events := make(chan commander.Event, eventQueueSize)

	cmdr := commander.New(queue, events, commander.Options{Targets: targets})
	cmdrDone := make(chan error, 1)
	go func() {
		defer close(events)
		cmdrDone <- cmdr.Run(ctx)
	}()

	StartWatcher(ctx, queue, WatchOptions{Fallback: env.RefreshInterval})

	for _, cmd := range startupCommands(opts, targets.Problems) {
		queue.Send(ctx, cmd)
	}

	uiErr := ui.Run(ui.Options{
		Context:   ctx,
		Commands:  queue,
		Events:    events,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		InputTTY:  !isTerminal(os.Stdin),
	})

	cancel()
	cmdrErr := <-cmdrDone
	log.Info("uberlog stopped")

	if uiErr != nil {
		return errors.Wrap(uiErr, "ui")
	}
	return cmdrErr
}

// startupCommands are queued before the UI starts: skipped targets are
// reported, then a probe scan runs, then the sources and recording requested
// on the command line start.
func startupCommands(opts Options, skipped []error) []commander.Command {
	var cmds []commander.Command
	for _, err := range skipped {
		cmds = append(cmds, commander.PrintMessage{Text: "targets: " + err.Error()})
	}
	cmds = append(cmds, commander.RefreshProbeInfo{})
	for _, path := range opts.Files {
		cmds = append(cmds, commander.StreamFile{Path: path})
	}
	if opts.Stdin {
		cmds = append(cmds, commander.StreamStdin{})
	}
	if opts.Record != "" {
		cmds = append(cmds, commander.StreamLogs{Enable: true, Path: opts.Record})
	}
	return cmds
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
