package scheduler

import (
	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
)

// advance moves forward from `from` by hours of working time, stepping over
// lunch. A start inside lunch is pushed to the end of lunch first.
func advance(from calendar.Clock, hours float64, lunch calendar.Window) calendar.Clock {
	if !lunch.Valid() {
		return from + calendar.Clock(hours)
	}
	if from >= lunch.Start && from < lunch.End {
		from = lunch.End
	}
	end := from + calendar.Clock(hours)
	if from < lunch.Start && end > lunch.Start {
		end += lunch.End - lunch.Start
	}
	return end
}

// retreat is advance in reverse: it moves back from `to` by hours of working
// time. An end inside lunch is pulled back to the start of lunch first.
func retreat(to calendar.Clock, hours float64, lunch calendar.Window) calendar.Clock {
	if !lunch.Valid() {
		return to - calendar.Clock(hours)
	}
	if to > lunch.Start && to <= lunch.End {
		to = lunch.Start
	}
	start := to - calendar.Clock(hours)
	if to > lunch.End && start < lunch.End {
		start -= lunch.End - lunch.Start
	}
	return start
}

func outOfLunch(c calendar.Clock, lunch calendar.Window) calendar.Clock {
	if lunch.Valid() && c >= lunch.Start && c < lunch.End {
		return lunch.End
	}
	return c
}

// placeForward puts hours at the earliest point of the day once skip hours
// (already committed) have been laid down from the start of the schedule.
func placeForward(p capacity.Profile, skip, hours float64) calendar.Window {
	start := outOfLunch(advance(p.Schedule.Start, skip, p.Lunch), p.Lunch)
	return calendar.Window{Start: start, End: advance(start, hours, p.Lunch)}
}

// placeBackward puts hours immediately before end, clipped to the schedule.
func placeBackward(p capacity.Profile, end calendar.Clock, hours float64) calendar.Window {
	end = min(end, p.Schedule.End)
	if p.Lunch.Valid() && end > p.Lunch.Start && end <= p.Lunch.End {
		end = p.Lunch.Start
	}
	return calendar.Window{Start: retreat(end, hours, p.Lunch), End: end}
}

func entryFor(day calendar.Day, hours float64, w calendar.Window) Entry {
	return Entry{Date: day, Hours: hours, StartTime: clockPtr(w.Start), EndTime: clockPtr(w.End)}
}
