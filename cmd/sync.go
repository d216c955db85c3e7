package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"record-sync/core/reconcile"
	"record-sync/feature/records"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncFile        string
	syncFromStorage string
	syncDryRun      bool
	yesConfirm      bool
)

// syncCmd applies a workbook to the remote store.
var syncCmd = &cobra.Command{
	Use:   "sync <entity>",
	Short: "Sync a workbook into the remote store",
	Long: `Sync reconciles a workbook with the current remote records of an entity.

Records missing from the workbook are removed, rows without a known id are
created and changed rows are updated, each as a single bulk request.
Rows whose supplier or service call type cannot be resolved are skipped and
reported.

Examples:
  # Plan only (nothing is sent)
  sync price-list --file cennik.xlsx --dry-run

  # Apply with interactive confirmation
  sync price-list --file cennik.xlsx

  # Re-apply the latest archived import without prompting
  sync price-list-km --from-storage latest --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncFile, "file", "", "Workbook (.xlsx) to sync")
	syncCmd.Flags().StringVar(&syncFromStorage, "from-storage", "", "Archived workbook key, or 'latest'")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan only, send nothing")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	syncCmd.MarkFlagsMutuallyExclusive("file", "from-storage")
	syncCmd.MarkFlagsOneRequired("file", "from-storage")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	name := args[0]
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	var (
		data   []byte
		source string
	)
	if syncFile != "" {
		if data, err = os.ReadFile(syncFile); err != nil {
			return fmt.Errorf("failed to read workbook: %w", err)
		}
		source = filepath.Base(syncFile)
	} else {
		if data, source, err = a.service.Archived(ctx, name, syncFromStorage); err != nil {
			return fmt.Errorf("failed to load archived workbook: %w", err)
		}
	}

	a.logger.Info("Starting sync", zap.String("entity", name), zap.String("source", source), zap.Bool("dry_run", syncDryRun))

	result, err := a.service.Import(ctx, records.ImportRequest{
		Entity: name,
		Data:   data,
		Source: source,
		DryRun: syncDryRun,
		Confirm: func(plan *reconcile.Plan) bool {
			printPlan(out, name, plan)
			return confirmDestructiveAction(os.Stdin, out, yesConfirm)
		},
		Archive: syncFile != "",
	})
	if result != nil {
		fmt.Fprintf(out, "\n%s\n", result.Summary)
		if result.Summary.Aborted {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
		}
	}
	if err != nil {
		var bulkErr *reconcile.BulkOperationError
		if errors.As(err, &bulkErr) {
			return fmt.Errorf("sync of %s finished with rejected operations: %w", name, err)
		}
		return fmt.Errorf("sync of %s failed: %w", name, err)
	}

	return nil
}

// printPlan shows what a confirmed sync will send.
func printPlan(out io.Writer, entity string, plan *reconcile.Plan) {
	fmt.Fprintf(out, "\n=== Planned changes for %s ===\n", entity)
	fmt.Fprintf(out, "Remove: %d\n", len(plan.ToRemove))
	fmt.Fprintf(out, "Create: %d\n", len(plan.ToCreate))
	fmt.Fprintf(out, "Update: %d\n", len(plan.ToUpdate))
	fmt.Fprintf(out, "Unchanged: %d\n", plan.Unchanged)
	if len(plan.FailedToMap) > 0 {
		fmt.Fprintf(out, "Skipped (unresolved references): %d\n", len(plan.FailedToMap))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer, auto bool) bool {
	if auto {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to confirm destructive actions: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
