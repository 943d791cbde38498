package report

import (
	"fmt"
	"io"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/xuri/excelize/v2"
)

const (
	commitmentsSheet = "Commitments"
	dailySheet       = "Daily totals"
)

var commitmentColumns = []string{"Date", "Title", "Kind", "Strategy", "Hours", "Start", "End"}

// WriteCommitmentsXLSX writes a workbook with one row per commitment and a
// second sheet of hours per day.
func WriteCommitmentsXLSX(w io.Writer, cs []service.ScheduledCommitment) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", commitmentsSheet)
	if err := writeRow(f, commitmentsSheet, 1, toAny(commitmentColumns)); err != nil {
		return err
	}

	var days []calendar.Day
	totals := make(map[calendar.Day]float64)
	for i, c := range cs {
		row := []any{c.Date.String(), c.Title, string(c.Kind), string(c.Strategy), c.Hours, clockText(c.StartTime), clockText(c.EndTime)}
		if err := writeRow(f, commitmentsSheet, i+2, row); err != nil {
			return err
		}
		if _, seen := totals[c.Date]; !seen {
			days = append(days, c.Date)
		}
		totals[c.Date] += c.Hours
	}

	if _, err := f.NewSheet(dailySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", dailySheet, err)
	}
	if err := writeRow(f, dailySheet, 1, []any{"Date", "Hours"}); err != nil {
		return err
	}
	for i, d := range days {
		if err := writeRow(f, dailySheet, i+2, []any{d.String(), totals[d]}); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(commitmentsSheet, "A1", "G1", style); err != nil {
		return fmt.Errorf("style %s header: %w", commitmentsSheet, err)
	}
	if err := f.SetCellStyle(dailySheet, "A1", "B1", style); err != nil {
		return fmt.Errorf("style %s header: %w", dailySheet, err)
	}
	if err := f.SetColWidth(commitmentsSheet, "B", "B", 32); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func clockText(c *calendar.Clock) string {
	if c == nil {
		return ""
	}
	return c.String()
}
