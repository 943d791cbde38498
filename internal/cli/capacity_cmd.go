package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workload/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newCapacityCmd(app *App) *cobra.Command {
	var date string
	var with []string

	cmd := &cobra.Command{
		Use:   "capacity WORKER",
		Short: "Show free hours on a day, alone or paired with other translators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			day := app.today()
			if date != "" {
				d, err := parseDay(app, date)
				if err != nil {
					return err
				}
				day = d
			}

			ids := make([]string, 0, 1+len(with))
			for _, in := range append([]string{args[0]}, with...) {
				id, err := resolveWorkerID(ctx, app, in)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			avail, err := app.Capacity.CombinedAvailability(ctx, ids, day)
			if err != nil {
				return err
			}

			names := make(map[string]string, len(ids))
			workers, err := app.Workers.List(ctx)
			if err != nil {
				return err
			}
			for _, w := range workers {
				names[w.ID] = w.Name
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatAvailability(avail, names))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to inspect (default today)")
	cmd.Flags().StringSliceVar(&with, "with", nil, "Other workers to pair with")

	return cmd
}
