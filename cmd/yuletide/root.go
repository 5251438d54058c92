package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "yuletide",
		Short:        "Yuletide steers a holiday scene with hand gestures",
		Long:         `Yuletide watches a webcam, classifies hand gestures and morphs a 3D holiday tree between a cone, a scattered cloud and a photo close-up.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("yuletide %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	logger := func() *log.Logger {
		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		return newLogger(os.Stderr, level)
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newHooksCmd(logger))
	return root
}

// newLogger creates a logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "yuletide %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
