package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOut       string
	exportToStorage bool
)

// exportCmd writes the current remote records into a workbook.
var exportCmd = &cobra.Command{
	Use:   "export <entity>",
	Short: "Export the current remote records to a workbook",
	Long: `Export fetches every current record of an entity and writes it as xlsx.
The price list gets one sheet per supplier. The exported workbook can be
edited and fed back with sync.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		name := args[0]

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		result, err := a.service.Export(ctx, name, exportToStorage)
		if err != nil {
			return fmt.Errorf("export of %s failed: %w", name, err)
		}

		out := exportOut
		if out == "" {
			out = result.FileName
		}
		if err := os.WriteFile(out, result.Data, 0644); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}

		a.logger.Info("Export saved",
			zap.String("entity", name),
			zap.String("file", out),
			zap.String("archive_key", result.ArchiveKey),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", name, out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (defaults to the entity file name)")
	exportCmd.Flags().BoolVar(&exportToStorage, "to-storage", false, "Also keep a copy in the workbook archive")
	RootCmd.AddCommand(exportCmd)
}
