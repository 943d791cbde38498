package testutil

import (
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/google/uuid"
)

// Worker options
type WorkerOption func(*domain.Worker)

func WithSchedule(s string) WorkerOption {
	return func(w *domain.Worker) {
		w.Schedule = s
	}
}

func WithDailyCapacity(h float64) WorkerOption {
	return func(w *domain.Worker) {
		w.DailyCapacityHours = h
	}
}

func WithLunch(start, end calendar.Clock) WorkerOption {
	return func(w *domain.Worker) {
		w.LunchStart = &start
		w.LunchEnd = &end
	}
}

func NewTestWorker(name string, opts ...WorkerOption) *domain.Worker {
	now := time.Now().UTC()
	w := &domain.Worker{
		ID:                 uuid.New().String(),
		Name:               name,
		DailyCapacityHours: 7,
		Schedule:           "9h-17h",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Task options
type TaskOption func(*domain.Task)

func WithStrategy(s domain.Strategy) TaskOption {
	return func(t *domain.Task) {
		t.Strategy = s
	}
}

func WithTotalHours(h float64) TaskOption {
	return func(t *domain.Task) {
		t.TotalHours = h
	}
}

func WithDeadline(d string) TaskOption {
	return func(t *domain.Task) {
		t.Deadline = d
	}
}

func AsBlock() TaskOption {
	return func(t *domain.Task) {
		t.Kind = domain.KindBlock
		t.Strategy = ""
	}
}

func NewTestTask(workerID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:         uuid.New().String(),
		WorkerID:   workerID,
		Title:      title,
		Kind:       domain.KindTask,
		Strategy:   domain.StrategyPEPS,
		TotalHours: 7,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Commitment options
type CommitmentOption func(*domain.Commitment)

func WithWindow(start, end calendar.Clock) CommitmentOption {
	return func(c *domain.Commitment) {
		c.StartTime = &start
		c.EndTime = &end
	}
}

func WithKind(k domain.CommitmentKind) CommitmentOption {
	return func(c *domain.Commitment) {
		c.Kind = k
	}
}

func NewTestCommitment(task *domain.Task, day calendar.Day, hours float64, opts ...CommitmentOption) domain.Commitment {
	c := domain.Commitment{
		WorkerID: task.WorkerID,
		TaskID:   task.ID,
		Date:     day,
		Hours:    hours,
		Kind:     task.Kind,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
