package cli

import (
	"fmt"

	"github.com/alexanderramin/workload/internal/report"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of manual allocation documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := report.ManualEntriesSchema()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", s)
			return nil
		},
	}
}
