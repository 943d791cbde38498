package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/cli/formatter"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/spf13/cobra"
)

func newWorkerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage translators",
	}

	cmd.AddCommand(
		newWorkerAddCmd(app),
		newWorkerListCmd(app),
		newWorkerShowCmd(app),
		newWorkerUpdateCmd(app),
		newWorkerRemoveCmd(app),
	)

	return cmd
}

func parseLunch(start, end string) (*calendar.Clock, *calendar.Clock, error) {
	if start == "" && end == "" {
		return nil, nil, nil
	}
	if start == "" || end == "" {
		return nil, nil, fmt.Errorf("--lunch-start and --lunch-end go together")
	}
	w, err := parseWindow(start, end)
	if err != nil {
		return nil, nil, err
	}
	return &w.Start, &w.End, nil
}

func newWorkerAddCmd(app *App) *cobra.Command {
	var name, schedule, lunchStart, lunchEnd string
	var capacity float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a translator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, le, err := parseLunch(lunchStart, lunchEnd)
			if err != nil {
				return err
			}
			w := &domain.Worker{
				Name:               name,
				Schedule:           schedule,
				DailyCapacityHours: capacity,
				LunchStart:         ls,
				LunchEnd:           le,
			}
			if err := app.Workers.Create(context.Background(), w); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created worker %s [%s]\n", w.Name, w.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Worker name")
	cmd.Flags().StringVar(&schedule, "schedule", app.DefaultSchedule, "Working hours, e.g. 7h30-15h30")
	cmd.Flags().Float64Var(&capacity, "capacity", 7, "Daily capacity in hours")
	cmd.Flags().StringVar(&lunchStart, "lunch-start", "", "Lunch start, e.g. 12h")
	cmd.Flags().StringVar(&lunchEnd, "lunch-end", "", "Lunch end, e.g. 13h")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newWorkerListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List translators",
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, err := app.Workers.List(context.Background())
			if err != nil {
				return err
			}

			if len(workers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workers found.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatWorkerList(workers))
			return nil
		},
	}
}

func newWorkerShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show WORKER",
		Short: "Show a translator's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveWorkerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			w, err := app.Workers.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatWorker(w, app.DefaultLunch))
			return nil
		},
	}
}

func newWorkerUpdateCmd(app *App) *cobra.Command {
	var name, schedule, lunchStart, lunchEnd string
	var capacity float64

	cmd := &cobra.Command{
		Use:   "update WORKER",
		Short: "Change a translator's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveWorkerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ls, le, err := parseLunch(lunchStart, lunchEnd)
			if err != nil {
				return err
			}
			patch := service.WorkerPatch{
				Name:       name,
				Schedule:   schedule,
				LunchStart: ls,
				LunchEnd:   le,
			}
			if cmd.Flags().Changed("capacity") {
				patch.DailyCapacityHours = &capacity
			}
			w, err := app.Workers.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated worker %s\n", w.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&schedule, "schedule", "", "New working hours")
	cmd.Flags().Float64Var(&capacity, "capacity", 0, "New daily capacity in hours")
	cmd.Flags().StringVar(&lunchStart, "lunch-start", "", "New lunch start")
	cmd.Flags().StringVar(&lunchEnd, "lunch-end", "", "New lunch end")

	return cmd
}

func newWorkerRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm WORKER",
		Short: "Remove a translator with their tasks and blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveWorkerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := confirm(app, yes, "Remove this worker?", "All of their tasks and blocks are deleted too.")
			if err != nil || !ok {
				return err
			}
			if err := app.Workers.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed worker %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
