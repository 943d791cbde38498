package service

import (
	"context"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/scheduler"
)

type WorkerService interface {
	Create(ctx context.Context, w *domain.Worker) error
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
	List(ctx context.Context) ([]*domain.Worker, error)
	Update(ctx context.Context, id string, patch WorkerPatch) (*domain.Worker, error)
	Delete(ctx context.Context, id string) error
}

type CapacityService interface {
	AvailableHours(ctx context.Context, workerID string, day calendar.Day, excludeTaskID string) (float64, error)
	CombinedAvailability(ctx context.Context, workerIDs []string, day calendar.Day) (*Availability, error)
	Commitments(ctx context.Context, workerID string, from, to calendar.Day) ([]ScheduledCommitment, error)
}

type AllocationService interface {
	Preview(ctx context.Context, req AllocationRequest) (*scheduler.Result, error)
	Commit(ctx context.Context, req AllocationRequest) (*CommitResult, error)
	SuggestWindows(ctx context.Context, workerID string, entries []scheduler.Entry, excludeTaskID string) ([]scheduler.Entry, error)
	Validate(ctx context.Context, req ValidateRequest) (*scheduler.ValidationReport, error)
	DeleteTask(ctx context.Context, taskID string) error
}

type BlockService interface {
	Create(ctx context.Context, req BlockRequest) (*BlockResult, error)
	Delete(ctx context.Context, taskID string) error
}

// WorkerPatch holds the fields of a worker update. Zero values keep the
// stored value.
type WorkerPatch struct {
	Name               string
	Schedule           string
	DailyCapacityHours *float64
	LunchStart         *calendar.Clock
	LunchEnd           *calendar.Clock
}

// Availability is the pairing view of several workers on one day.
type Availability struct {
	Day      calendar.Day
	ByWorker map[string]float64

	// Combined is what the pair can take on together; Bottleneck is the
	// least available of them.
	Combined   float64
	Bottleneck float64
}

// ScheduledCommitment is a commitment with the title of the task or block
// that owns it.
type ScheduledCommitment struct {
	domain.Commitment
	Title    string
	Strategy domain.Strategy
}

// AllocationRequest describes a task allocation. TaskID is empty for a new
// task and set when re-allocating an existing one, whose current commitments
// are then ignored by the capacity checks.
type AllocationRequest struct {
	TaskID     string
	WorkerID   string
	Title      string
	Strategy   domain.Strategy
	TotalHours float64
	Deadline   string
	StartDate  *calendar.Day
	Options    scheduler.Options

	// Entries are the per-day hours for MANUAL.
	Entries []scheduler.Entry

	// Accepted is the previewed allocation the caller agreed to. When set,
	// Commit revalidates it against current capacity instead of recomputing.
	Accepted []scheduler.Entry
}

type CommitResult struct {
	Task        *domain.Task
	Result      scheduler.Result
	Commitments []domain.Commitment
}

// ValidateRequest is a standalone manual validation.
type ValidateRequest struct {
	WorkerID      string
	Entries       []scheduler.Entry
	ExpectedTotal float64
	ExcludeTaskID string

	// Deadline is optional; when it carries a time it shrinks the deadline
	// day's capacity.
	Deadline string
}

type BlockRequest struct {
	WorkerID string
	Date     calendar.Day
	Window   calendar.Window
	Reason   string
}

type BlockResult struct {
	Task       *domain.Task
	Commitment domain.Commitment
}
