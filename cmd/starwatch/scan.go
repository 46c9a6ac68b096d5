package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/starwatch-app/starwatch"
)

// maxLineBytes bounds a single log line; the game client occasionally dumps
// very long entity lists on one line.
const maxLineBytes = 1 << 20

func newScanCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Process a complete log file (or stdin with \"-\") offline and print the resulting summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader
			if args[0] == "-" {
				in = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			app, err := starwatch.New(
				starwatch.WithLogger(logger),
				starwatch.WithVersion(version),
				starwatch.WithoutArchive(),
			)
			if err != nil {
				return err
			}
			defer app.Close()

			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
			var lines int
			for scanner.Scan() {
				app.ProcessLine(scanner.Text())
				lines++
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			logger.Info("scan complete", "lines", lines)
			printSummary(app)
			return nil
		},
	}
	return cmd
}
