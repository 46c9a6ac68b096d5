package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/starwatch-app/starwatch"
	"github.com/starwatch-app/starwatch/internal/feed"
)

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		logPath       string
		fromBeginning bool
		showReplayed  bool
		noArchive     bool
		quiet         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tail the game log and print the live activity feed until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []starwatch.Option{
				starwatch.WithLogger(logger),
				starwatch.WithVersion(version),
			}
			if logPath != "" {
				opts = append(opts, starwatch.WithLogPath(logPath))
			}
			if cmd.Flags().Changed("from-beginning") {
				opts = append(opts, starwatch.WithReadFromBeginning(fromBeginning))
			}
			if cmd.Flags().Changed("show-replayed") {
				opts = append(opts, starwatch.WithShowReplayedLogs(showReplayed))
			}
			if noArchive {
				opts = append(opts, starwatch.WithoutArchive())
			}
			if !quiet {
				opts = append(opts, starwatch.WithFeedHandler(printEntry))
			}

			app, err := starwatch.New(opts...)
			if err != nil {
				return err
			}

			runErr := app.Run(ctx)
			printSummary(app)
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "path to the game log file (defaults to saved settings)")
	cmd.Flags().BoolVar(&fromBeginning, "from-beginning", true, "replay existing file content before going live")
	cmd.Flags().BoolVar(&showReplayed, "show-replayed", false, "print replayed events like live ones")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "disable the SQLite session archive")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the live feed, print only the closing summary")
	return cmd
}

func printEntry(e feed.Entry) {
	fmt.Printf("%s  %-10s %-20s %s\n",
		e.At.Format("15:04:05"), e.Category, e.Title, e.Description)
}

// printSummary renders the closing session table: pilot and environment
// state plus mission counters.
func printSummary(app *starwatch.App) {
	snap := app.Stats()
	active, completed, failed := app.Contracts().Counters()

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Session Summary")
	tw.AppendRows([]table.Row{
		{"Pilot", snap.PilotHandle},
		{"Build", snap.Build},
		{"Shard", snap.Shard},
		{"Location", snap.Location},
		{"Kills", snap.Kills},
		{"Deaths", snap.Deaths},
		{"Contracts active", active},
		{"Contracts completed", completed},
		{"Contracts failed", failed},
		{"Lines processed", app.Monitor().ProcessedLines()},
	})
	tw.Render()

	if history := app.Contracts().History(); len(history) > 0 {
		hw := table.NewWriter()
		hw.SetOutputMirror(os.Stdout)
		hw.SetTitle("Contract History")
		hw.AppendHeader(table.Row{"Name", "Status", "Objective"})
		for _, m := range history {
			hw.AppendRow(table.Row{m.Name, m.Status, m.CurrentObjectiveText})
		}
		hw.Render()
	}
}
