package main

import (
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/starwatch-app/starwatch/internal/config"
	"github.com/starwatch-app/starwatch/internal/storage"
)

func newSessionsCmd(logger *slog.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List archived game sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := storage.Open(cmd.Context(), logger, cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			sessions, err := db.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived sessions")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Started", "Pilot", "Shard", "Kills", "Deaths", "Contracts", "Lines"})
			for _, s := range sessions {
				tw.AppendRow(table.Row{
					s.StartedAt.Local().Format("2006-01-02 15:04"),
					s.PilotHandle,
					s.Shard,
					s.Kills,
					s.Deaths,
					fmt.Sprintf("%d/%d", s.Completed, s.Completed+s.Failed),
					s.LinesProcessed,
				})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list")
	return cmd
}
