package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/syncmux/internal/config"
)

// version and commit are set at build time via -ldflags (e.g. Makefile).
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

// rootFlags holds the persistent flags every subcommand shares: where logs
// go and how they're colored. Job-source flags (--jobs-dir/--job-file) are
// local to runCmd since check and version don't touch a JobSpec.
var rootFlags = config.DefaultCLI()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "syncmux",
		Short: "Multi-source audio sync and mux pipeline",
	}

	root.PersistentFlags().StringVar(&rootFlags.LogFile, "log-file", "", "append a plain-text copy of the log to this file")
	root.PersistentFlags().BoolVar(&rootFlags.Verbose, "verbose", false, "enable debug-level logging")
	root.PersistentFlags().StringVar((*string)(&rootFlags.ColorMode), "color", string(config.ColorAuto), "color mode: auto|always|never")
	root.PersistentFlags().StringVar(&rootFlags.MetricsAddr, "metrics-addr", "", "address to serve /metrics on (empty disables it)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newVersionCmd())
	return root
}
