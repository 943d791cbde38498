package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

type WorkerRepo interface {
	Create(ctx context.Context, w *domain.Worker) error
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
	List(ctx context.Context) ([]*domain.Worker, error)
	Update(ctx context.Context, w *domain.Worker) error
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByWorker(ctx context.Context, workerID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type CommitmentRepo interface {
	ListByWorkerRange(ctx context.Context, workerID string, from, to calendar.Day) ([]domain.Commitment, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.Commitment, error)
	// ReplaceForTask deletes the task's commitments and writes cs in their place.
	ReplaceForTask(ctx context.Context, taskID string, cs []domain.Commitment) error
	DeleteByTask(ctx context.Context, taskID string) error
}
