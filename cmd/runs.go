package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"record-sync/core/history"

	"github.com/spf13/cobra"
)

var (
	runsLimit int
	runsJSON  bool
)

// runsCmd lists the recorded sync runs of an entity.
var runsCmd = &cobra.Command{
	Use:   "runs <entity>",
	Short: "List recorded sync runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		views, err := a.service.Runs(ctx, args[0], runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if runsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(views)
		}
		printRuns(cmd.OutOrStdout(), views)
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", history.DefaultLimit, "Maximum number of runs")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print runs as JSON")
	RootCmd.AddCommand(runsCmd)
}

func printRuns(out io.Writer, views []history.View) {
	if len(views) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return
	}
	for _, v := range views {
		mode := "applied"
		switch {
		case v.Aborted:
			mode = "aborted"
		case v.DryRun:
			mode = "dry-run"
		}
		fmt.Fprintf(out, "%s  %-8s %s  removed: %d, created: %d, updated: %d, failed: %d, unchanged: %d",
			v.StartedAt.Format("2006-01-02 15:04:05"), mode, v.Source,
			v.Removed, v.Created, v.Updated, v.Failed, v.Unchanged)
		if len(v.Errors) > 0 {
			fmt.Fprintf(out, ", rejected phases: %d", len(v.Errors))
		}
		fmt.Fprintln(out)
	}
}
