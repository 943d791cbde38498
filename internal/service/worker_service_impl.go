package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/google/uuid"
)

type workerService struct {
	workers  repository.WorkerRepo
	settings Settings
}

func NewWorkerService(workers repository.WorkerRepo, settings Settings) WorkerService {
	return &workerService{workers: workers, settings: settings}
}

func (s *workerService) Create(ctx context.Context, w *domain.Worker) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if err := w.Validate(); err != nil {
		return &scheduler.ValidationError{Field: "worker", Message: err.Error()}
	}
	now := s.settings.now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	return s.workers.Create(ctx, w)
}

func (s *workerService) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	return s.workers.GetByID(ctx, id)
}

func (s *workerService) List(ctx context.Context) ([]*domain.Worker, error) {
	return s.workers.List(ctx)
}

func (s *workerService) Update(ctx context.Context, id string, patch WorkerPatch) (*domain.Worker, error) {
	w, err := s.workers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Name = domain.CoalesceStr(patch.Name, w.Name)
	w.Schedule = domain.CoalesceStr(patch.Schedule, w.Schedule)
	w.DailyCapacityHours = domain.Float64FromPtrWithDefault(w.DailyCapacityHours, patch.DailyCapacityHours)
	if patch.LunchStart != nil || patch.LunchEnd != nil {
		w.LunchStart, w.LunchEnd = patch.LunchStart, patch.LunchEnd
	}
	if err := w.Validate(); err != nil {
		return nil, &scheduler.ValidationError{Field: "worker", Message: err.Error()}
	}
	w.UpdatedAt = s.settings.now().UTC()
	if err := s.workers.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("updating worker %s: %w", id, err)
	}
	return w, nil
}

// Delete removes the worker with all their tasks, blocks and commitments.
func (s *workerService) Delete(ctx context.Context, id string) error {
	return s.workers.Delete(ctx, id)
}
