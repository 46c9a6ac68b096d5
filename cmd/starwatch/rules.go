package main

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/starwatch-app/starwatch/internal/config"
	"github.com/starwatch-app/starwatch/internal/settings"
)

func newRulesCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect custom extraction rules",
	}
	cmd.AddCommand(newRulesListCmd(logger), newRulesCheckCmd(logger))
	return cmd
}

func loadRulesProvider(logger *slog.Logger) (*settings.Provider, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return settings.New(logger, cfg.DataDir)
}

func newRulesListCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List custom extraction rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, err := loadRulesProvider(logger)
			if err != nil {
				return err
			}
			rules := prov.CustomRules()
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no custom rules defined")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Name", "Category", "Regex"})
			for _, r := range rules {
				tw.AppendRow(table.Row{r.ID, r.Name, r.Category, r.Regex})
			}
			tw.Render()
			return nil
		},
	}
}

func newRulesCheckCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate that every custom rule's regex compiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, err := loadRulesProvider(logger)
			if err != nil {
				return err
			}
			rules := prov.CustomRules()
			var bad int
			for _, r := range rules {
				if _, err := regexp.Compile(r.Regex); err != nil {
					bad++
					fmt.Fprintf(os.Stderr, "rule %q (%s): %v\n", r.Name, r.ID, err)
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d rules failed to compile", bad, len(rules))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "all %d rules OK\n", len(rules))
			return nil
		},
	}
}
