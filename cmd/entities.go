package cmd

import (
	"fmt"
	"strings"

	"record-sync/feature/records"

	"github.com/spf13/cobra"
)

// entitiesCmd lists the entity kinds that can be synced.
var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "List the entity kinds and their spreadsheet columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, e := range records.DefaultRegistry().List() {
			fmt.Fprintf(out, "%s\t%s\n", e.Name, e.Description)
			fmt.Fprintf(out, "\tcolumns: %s\n", strings.Join(e.Columns.Titles(), ", "))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(entitiesCmd)
}
