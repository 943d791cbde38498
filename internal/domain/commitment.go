package domain

import (
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
)

// Task is the owner of a set of commitments: either a translation task or a
// time block (meeting, absence).
type Task struct {
	ID         string
	WorkerID   string
	Title      string
	Kind       CommitmentKind
	Strategy   Strategy
	TotalHours float64
	Deadline   string // as supplied by the caller; empty for blocks

	// TimestampAware records whether the deadline's time-of-day was honored.
	TimestampAware bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Commitment is one day's share of a task or block for a worker.
type Commitment struct {
	ID        string
	WorkerID  string
	TaskID    string
	Date      calendar.Day
	Hours     float64
	Kind      CommitmentKind
	StartTime *calendar.Clock
	EndTime   *calendar.Clock
	CreatedAt time.Time
}
