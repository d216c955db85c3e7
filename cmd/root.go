package cmd

import (
	"fmt"
	"os"

	"record-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "record-sync",
	Short: "Spreadsheet sync for the remote record store",
	Long: `Record Sync reconciles spreadsheets with the records of a remote store.
It exports the current records to xlsx and applies an edited workbook back
as bulk removals, creations and updates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with debug level gives readable ISO8601 timestamps on the terminal
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
