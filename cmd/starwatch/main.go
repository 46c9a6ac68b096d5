package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	logger := newLogger()
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "starwatch",
		Short:         "Game log monitor: tails the client log and tracks contracts, kills, and session state",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCmd(logger),
		newScanCmd(logger),
		newRulesCmd(logger),
		newSessionsCmd(logger),
	)

	if err := root.Execute(); err != nil {
		logger.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("STARWATCH_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
