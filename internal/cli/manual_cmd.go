package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/workload/internal/cli/formatter"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/report"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/spf13/cobra"
)

// errInvalidAllocation is returned after an invalid report has been printed.
var errInvalidAllocation = errors.New("manual allocation is invalid")

func newManualCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Work with hand-written MANUAL allocations",
		Long: `Reads a JSON document listing per-day hours (see "workload schema").
A path of "-" reads standard input.`,
	}

	cmd.AddCommand(
		newManualSuggestCmd(app),
		newManualValidateCmd(app),
		newManualCommitCmd(app),
	)

	return cmd
}

// readManualInput decodes the document at path and resolves its worker.
func readManualInput(ctx context.Context, app *App, cmd *cobra.Command, path string) (*report.ManualInput, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	in, err := report.DecodeManualInput(r)
	if err != nil {
		return nil, err
	}
	in.WorkerID, err = resolveWorkerID(ctx, app, in.WorkerID)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func newManualSuggestCmd(app *App) *cobra.Command {
	var file string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Propose a time window for each entry around what is already booked",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			in, err := readManualInput(ctx, app, cmd, file)
			if err != nil {
				return err
			}
			entries, err := app.Allocation.SuggestWindows(ctx, in.WorkerID, in.Entries, in.TaskID)
			if err != nil {
				return err
			}

			if asJSON {
				in.Entries = entries
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(in)
			}
			res := scheduler.Result{Strategy: domain.StrategyManual, Entries: entries}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatter.FormatAllocation(res, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manual allocation document")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the document back with the suggested windows")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newManualValidateCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a manual allocation without booking it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			in, err := readManualInput(ctx, app, cmd, file)
			if err != nil {
				return err
			}
			rep, err := app.Allocation.Validate(ctx, service.ValidateRequest{
				WorkerID:      in.WorkerID,
				Entries:       in.Entries,
				ExpectedTotal: in.TotalHours,
				ExcludeTaskID: in.TaskID,
				Deadline:      in.Deadline,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatValidationReport(rep))
			if !rep.Valid {
				return errInvalidAllocation
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manual allocation document")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newManualCommitCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Validate and book a manual allocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			in, err := readManualInput(ctx, app, cmd, file)
			if err != nil {
				return err
			}
			res, err := app.Allocation.Commit(ctx, service.AllocationRequest{
				TaskID:     in.TaskID,
				WorkerID:   in.WorkerID,
				Title:      in.Title,
				Strategy:   domain.StrategyManual,
				TotalHours: in.TotalHours,
				Deadline:   in.Deadline,
				Options:    scheduler.Options{TimestampAware: in.TimestampAware},
				Entries:    in.Entries,
			})
			var repErr *scheduler.ReportError
			if errors.As(err, &repErr) {
				fmt.Fprintln(out, formatter.FormatValidationReport(&repErr.Report))
				return errInvalidAllocation
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", formatter.FormatAllocation(res.Result, app.today()))
			fmt.Fprintf(out, "Committed task %s [%s]\n", res.Task.Title, res.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Manual allocation document")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
