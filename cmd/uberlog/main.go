package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/uberlog/internal/app"
)

// Version is set at build time.
var Version = "0.0.0"

const globalUsage = `uberlog collects log output from embedded targets (UART and RTT over a
debug probe), log files and standard input into one filterable terminal view.

Probes are matched to targets by serial number using the targets file
(default ~/.config/uberlog/targets.yaml). File arguments are streamed as
sources at start.`

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:           "uberlog [file...]",
		Short:         "Aggregate and filter embedded target logs.",
		Long:          globalUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Files = args
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.TargetsPath, "targets", "", "targets file (default ~/.config/uberlog/targets.yaml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/uberlog/prefs.toml)")
	flags.StringVar(&opts.LogFile, "log-file", "", "diagnostic log file (default uberlog.log)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "trace, debug, info, warn or error (default info)")
	flags.BoolVar(&opts.Stdin, "stdin", false, "stream standard input as a source")
	flags.StringVar(&opts.Record, "record", "", "record every line into this file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of uberlog",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uberlog version: %s\n", Version)
		},
	}
	cmd.AddCommand(versionCmd)

	return cmd
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "uberlog: %v\n", err)
		return 1
	}
	return 0
}
