package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workload/internal/cli/formatter"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/spf13/cobra"
)

func newBlockCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Block out time in a translator's day",
	}

	cmd.AddCommand(
		newBlockAddCmd(app),
		newBlockRemoveCmd(app),
	)

	return cmd
}

func newBlockAddCmd(app *App) *cobra.Command {
	var date, from, to, reason string

	cmd := &cobra.Command{
		Use:   "add WORKER",
		Short: "Block a time window",
		Long: `Blocks a window of one day. Only the part inside working hours and
outside lunch is charged against capacity; a block on a weekend or after
hours is recorded but costs nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			workerID, err := resolveWorkerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			day, err := parseDay(app, date)
			if err != nil {
				return err
			}
			window, err := parseWindow(from, to)
			if err != nil {
				return err
			}

			res, err := app.Blocks.Create(ctx, service.BlockRequest{
				WorkerID: workerID,
				Date:     day,
				Window:   window,
				Reason:   reason,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Blocked %s on %s, %s charged [%s]\n",
				window, day, formatter.FormatHours(res.Commitment.Hours), res.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to block")
	cmd.Flags().StringVar(&from, "from", "", "Start of the window, e.g. 9h")
	cmd.Flags().StringVar(&to, "to", "", "End of the window, e.g. 11h30")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the time is blocked")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newBlockRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm BLOCK",
		Short: "Remove a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Blocks.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed block %s\n", args[0])
			return nil
		},
	}
}
