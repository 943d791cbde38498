package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workload/internal/cli/formatter"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// strategyValue is a pflag.Value restricted to the automatic strategies.
type strategyValue domain.Strategy

var _ pflag.Value = (*strategyValue)(nil)

func (s *strategyValue) String() string { return string(*s) }

func (s *strategyValue) Set(v string) error {
	st, err := domain.ParseStrategy(v)
	if err != nil {
		return err
	}
	if st == domain.StrategyManual {
		return fmt.Errorf("MANUAL allocations go through \"workload manual\"")
	}
	*s = strategyValue(st)
	return nil
}

func (s *strategyValue) Type() string { return "strategy" }

func newPlanCmd(app *App) *cobra.Command {
	var (
		worker, title, taskID, deadline, start string
		hours, morningCap                      float64
		strategy                               strategyValue
		timestampAware, morning, commit, yes   bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview, and optionally commit, a task allocation",
		Long: `Spreads a task's hours over the days before its deadline.

JAT fills the latest days first, PEPS the earliest, and ÉQUILIBRÉ spreads
hours evenly. The allocation is only previewed unless --commit is given;
a committed preview is checked again against current capacity so a stale
allocation is refused rather than overbooked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			if strategy == "" {
				if !app.interactive() {
					return fmt.Errorf("--strategy is required (JAT, PEPS or EQUILIBRE)")
				}
				var picked string
				if err := wizardStrategy(&picked).Run(); err != nil {
					return err
				}
				if err := strategy.Set(picked); err != nil {
					return err
				}
			}

			workerID, err := resolveWorkerID(ctx, app, worker)
			if err != nil {
				return err
			}
			dl, err := parseDeadlineFlag(app, deadline)
			if err != nil {
				return err
			}
			startDay, err := parseOptionalDay(app, start)
			if err != nil {
				return err
			}

			req := service.AllocationRequest{
				TaskID:     taskID,
				WorkerID:   workerID,
				Title:      title,
				Strategy:   domain.Strategy(strategy),
				TotalHours: hours,
				Deadline:   dl,
				StartDate:  startDay,
				Options: scheduler.Options{
					TimestampAware:     timestampAware,
					MorningDelivery:    morning,
					MorningDeliveryCap: morningCap,
				},
			}

			preview, err := app.Allocation.Preview(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", formatter.FormatAllocation(*preview, app.today()))

			if !commit {
				fmt.Fprintln(out, formatter.Dim("Preview only; pass --commit to book these hours."))
				return nil
			}

			ok, err := confirm(app, yes, "Book this allocation?", fmt.Sprintf("%s over %d day(s)", formatter.FormatHours(preview.Total()), len(preview.Entries)))
			if err != nil || !ok {
				return err
			}

			req.Accepted = preview.Entries
			res, err := app.Allocation.Commit(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Committed task %s [%s]\n", res.Task.Title, res.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&worker, "worker", "", "Worker name or ID")
	cmd.Flags().StringVar(&title, "title", "", "Task title (required to commit a new task)")
	cmd.Flags().StringVar(&taskID, "task", "", "Existing task ID to re-allocate")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Total hours to allocate")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline: YYYY-MM-DD, YYYY-MM-DDTHH:MM or a phrase like \"next friday\"")
	cmd.Flags().StringVar(&start, "start", "", "Earliest day to allocate (PEPS, ÉQUILIBRÉ)")
	cmd.Flags().Var(&strategy, "strategy", "JAT, PEPS or EQUILIBRE")
	cmd.Flags().BoolVar(&timestampAware, "timestamp-aware", false, "Honor the deadline's time of day")
	cmd.Flags().BoolVar(&morning, "morning", false, "Delivery is due in the morning: cap the deadline day")
	cmd.Flags().Float64Var(&morningCap, "morning-cap", app.MorningDeliveryCap, "Hours allowed on the deadline day with --morning")
	cmd.Flags().BoolVar(&commit, "commit", false, "Book the previewed allocation")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	_ = cmd.MarkFlagRequired("worker")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("deadline")

	return cmd
}
