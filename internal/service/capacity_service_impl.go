package service

import (
	"context"
	"math"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/scheduler"
)

type capacityService struct {
	loader      *capacity.Loader
	workers     repository.WorkerRepo
	tasks       repository.TaskRepo
	commitments repository.CommitmentRepo
}

func NewCapacityService(workers repository.WorkerRepo, tasks repository.TaskRepo, commitments repository.CommitmentRepo, settings Settings) CapacityService {
	return &capacityService{
		loader:      capacity.NewLoader(workers, commitments, settings.Defaults, settings.Logger),
		workers:     workers,
		tasks:       tasks,
		commitments: commitments,
	}
}

func (s *capacityService) AvailableHours(ctx context.Context, workerID string, day calendar.Day, excludeTaskID string) (float64, error) {
	return s.loader.AvailableHours(ctx, workerID, day, excludeTaskID)
}

// CombinedAvailability answers the pairing question for a translator and
// reviewer (or any group) on one day.
func (s *capacityService) CombinedAvailability(ctx context.Context, workerIDs []string, day calendar.Day) (*Availability, error) {
	if len(workerIDs) == 0 {
		return nil, &scheduler.ValidationError{Field: "workerIds", Message: "at least one worker is required"}
	}
	out := &Availability{Day: day, ByWorker: make(map[string]float64, len(workerIDs)), Bottleneck: math.Inf(1)}
	for _, id := range workerIDs {
		if _, seen := out.ByWorker[id]; seen {
			continue
		}
		h, err := s.loader.AvailableHours(ctx, id, day, "")
		if err != nil {
			return nil, err
		}
		out.ByWorker[id] = h
		out.Combined += h
		out.Bottleneck = math.Min(out.Bottleneck, h)
	}
	return out, nil
}

// Commitments lists a worker's commitments over [from, to] with their
// owners' titles.
func (s *capacityService) Commitments(ctx context.Context, workerID string, from, to calendar.Day) ([]ScheduledCommitment, error) {
	if _, err := s.workers.GetByID(ctx, workerID); err != nil {
		return nil, err
	}
	cs, err := s.commitments.ListByWorkerRange(ctx, workerID, from, to)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	out := make([]ScheduledCommitment, 0, len(cs))
	for _, c := range cs {
		sc := ScheduledCommitment{Commitment: c}
		if t, ok := byID[c.TaskID]; ok {
			sc.Title, sc.Strategy = t.Title, t.Strategy
		}
		out = append(out, sc)
	}
	return out, nil
}
