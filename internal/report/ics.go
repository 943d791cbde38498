// Package report renders allocations for people and tools outside the
// engine: calendar files, spreadsheets and the manual-entries contract.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/service"
	ical "github.com/emersion/go-ical"
)

const productID = "-//alexanderramin//workload//EN"

// ErrNothingToExport is returned when no commitment has a time window.
var ErrNothingToExport = errors.New("nothing to export")

// WriteICS writes one VEVENT per commitment that has a time window. Times
// are written in UTC; commitments without a window are skipped.
func WriteICS(w io.Writer, cal *calendar.Calendar, cs []service.ScheduledCommitment, now time.Time) error {
	out := ical.NewCalendar()
	out.Props.SetText(ical.PropVersion, "2.0")
	out.Props.SetText(ical.PropProductID, productID)

	for _, c := range cs {
		if c.StartTime == nil || c.EndTime == nil || *c.StartTime >= *c.EndTime {
			continue
		}
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, c.ID+"@workload")
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeStart, c.Date.At(*c.StartTime, cal.Location()).UTC())
		ev.Props.SetDateTime(ical.PropDateTimeEnd, c.Date.At(*c.EndTime, cal.Location()).UTC())
		ev.Props.SetText(ical.PropSummary, summary(c))
		ev.Props.SetText(ical.PropDescription, fmt.Sprintf("%.2fh (%s)", c.Hours, describe(c)))
		out.Children = append(out.Children, ev.Component)
	}
	if len(out.Children) == 0 {
		return ErrNothingToExport
	}
	if err := ical.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func summary(c service.ScheduledCommitment) string {
	if c.Title == "" {
		return string(c.Kind)
	}
	return c.Title
}

func describe(c service.ScheduledCommitment) string {
	if c.Kind == domain.KindBlock {
		return "time block"
	}
	if c.Strategy == "" {
		return "task"
	}
	return string(c.Strategy)
}
