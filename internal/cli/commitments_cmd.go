package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/workload/internal/cli/formatter"
	"github.com/alexanderramin/workload/internal/report"
	"github.com/spf13/cobra"
)

// defaultRangeDays is how far ahead commitments are listed without --to.
const defaultRangeDays = 14

func newCommitmentsCmd(app *App) *cobra.Command {
	var from, to, xlsxPath, icsPath string

	cmd := &cobra.Command{
		Use:   "commitments WORKER",
		Short: "List booked hours and export them to a spreadsheet or calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			workerID, err := resolveWorkerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			start, end, err := dayRange(app, from, to, defaultRangeDays)
			if err != nil {
				return err
			}
			w, err := app.Workers.GetByID(ctx, workerID)
			if err != nil {
				return err
			}
			cs, err := app.Capacity.Commitments(ctx, workerID, start, end)
			if err != nil {
				return err
			}

			if len(cs) == 0 {
				fmt.Fprintf(out, "No commitments for %s between %s and %s.\n", w.Name, start, end)
			} else {
				fmt.Fprintf(out, "%s\n", formatter.FormatCommitments(cs, w.DailyCapacityHours))
			}

			if xlsxPath != "" {
				err := writeExport(xlsxPath, func(wr io.Writer) error {
					return report.WriteCommitmentsXLSX(wr, cs)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", xlsxPath)
			}
			if icsPath != "" {
				err := writeExport(icsPath, func(wr io.Writer) error {
					return report.WriteICS(wr, app.Calendar, cs, app.now())
				})
				if errors.Is(err, report.ErrNothingToExport) {
					fmt.Fprintln(out, formatter.Dim("No timed commitments to put in a calendar."))
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", icsPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (default today)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (default two weeks after --from)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the commitments to this .xlsx file")
	cmd.Flags().StringVar(&icsPath, "ics", "", "Also write timed commitments to this .ics file")

	return cmd
}

// writeExport writes to a temporary file that replaces path on success.
func writeExport(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
