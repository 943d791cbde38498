package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/lock"
	"github.com/alexanderramin/workload/internal/metrics"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/google/uuid"
)

type allocationService struct {
	loader   *capacity.Loader
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	locker   lock.Locker
	settings Settings
	observer UseCaseObserver
}

func NewAllocationService(
	workers repository.WorkerRepo,
	tasks repository.TaskRepo,
	commitments repository.CommitmentRepo,
	uow db.UnitOfWork,
	locker lock.Locker,
	settings Settings,
	observers ...UseCaseObserver,
) AllocationService {
	return &allocationService{
		loader:   capacity.NewLoader(workers, commitments, settings.Defaults, settings.Logger),
		tasks:    tasks,
		uow:      uow,
		locker:   locker,
		settings: settings,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Preview runs the strategy against the commitments as they are now. Nothing
// is written.
func (s *allocationService) Preview(ctx context.Context, req AllocationRequest) (res *scheduler.Result, err error) {
	startedAt := time.Now()
	defer func() {
		metrics.ObserveAllocation(string(req.Strategy), "preview", outcome(err), time.Since(startedAt))
	}()
	defer observe(ctx, s.observer, "allocation-preview", map[string]any{
		"worker_id": req.WorkerID,
		"strategy":  string(req.Strategy),
		"hours":     req.TotalHours,
	})(&err)

	sreq, strategy, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	from, to := scheduler.Span(sreq, s.settings.Calendar.DayOf(sreq.Now))
	_, ledger, err := s.loader.Load(ctx, req.WorkerID, from, to, req.TaskID)
	if err != nil {
		return nil, err
	}
	result, err := strategy.Allocate(sreq, ledger)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Commit allocates and persists a task in one transaction while holding the
// worker's lock. Commitments are re-read inside the transaction, so an
// allocation that no longer fits is rejected rather than overbooked.
func (s *allocationService) Commit(ctx context.Context, req AllocationRequest) (out *CommitResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"worker_id": req.WorkerID,
		"task_id":   req.TaskID,
		"strategy":  string(req.Strategy),
		"hours":     req.TotalHours,
		"accepted":  len(req.Accepted) > 0,
	}
	defer func() {
		metrics.ObserveAllocation(string(req.Strategy), "commit", outcome(err), time.Since(startedAt))
		if err == nil {
			metrics.AddAllocatedHours(string(req.Strategy), out.Result.Total())
		}
	}()
	defer observe(ctx, s.observer, "allocation-commit", fields)(&err)

	sreq, strategy, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if req.TaskID == "" && req.Title == "" {
		return nil, &scheduler.ValidationError{Field: "title", Message: "is required for a new task"}
	}

	release, err := lockWorker(ctx, s.locker, s.settings.Logger, req.WorkerID)
	if err != nil {
		return nil, err
	}
	defer release()

	out = &CommitResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		commitments := repository.NewSQLiteCommitmentRepo(tx)

		var existing *domain.Task
		if req.TaskID != "" {
			t, err := tasks.GetByID(ctx, req.TaskID)
			if err != nil {
				return err
			}
			if t.WorkerID != req.WorkerID {
				return &scheduler.ValidationError{Field: "taskId", Message: fmt.Sprintf("task %s belongs to another worker", t.ID)}
			}
			if t.Kind != domain.KindTask {
				return &scheduler.ValidationError{Field: "taskId", Message: fmt.Sprintf("%s is a time block, not a task", t.ID)}
			}
			existing = t
		}

		spanReq := sreq
		spanReq.Entries = append(append([]scheduler.Entry(nil), sreq.Entries...), req.Accepted...)
		from, to := scheduler.Span(spanReq, s.settings.Calendar.DayOf(sreq.Now))
		_, ledger, err := s.settings.loader(tx).Load(ctx, req.WorkerID, from, to, req.TaskID)
		if err != nil {
			return err
		}

		var result scheduler.Result
		if len(req.Accepted) > 0 {
			result, err = scheduler.Revalidate(s.settings.Calendar, strategy.Name(), sreq, ledger, req.Accepted)
			if err != nil {
				metrics.IncStaleCommit()
				return fmt.Errorf("%w: %w", ErrStaleAllocation, err)
			}
		} else {
			result, err = strategy.Allocate(sreq, ledger)
			if err != nil {
				return err
			}
		}

		now := s.settings.now().UTC()
		task := existing
		if task == nil {
			task = &domain.Task{
				ID:        uuid.New().String(),
				WorkerID:  req.WorkerID,
				Kind:      domain.KindTask,
				CreatedAt: now,
			}
		}
		task.Title = domain.CoalesceStr(req.Title, task.Title)
		task.Strategy = strategy.Name()
		task.TotalHours = req.TotalHours
		task.Deadline = req.Deadline
		task.TimestampAware = req.Options.TimestampAware
		task.UpdatedAt = now

		if existing == nil {
			err = tasks.Create(ctx, task)
		} else {
			err = tasks.Update(ctx, task)
		}
		if err != nil {
			return err
		}

		cs := toCommitments(task, result.Entries)
		if err := commitments.ReplaceForTask(ctx, task.ID, cs); err != nil {
			return err
		}
		out.Task, out.Result, out.Commitments = task, result, cs
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["task_id"] = out.Task.ID
	fields["days"] = len(out.Commitments)
	return out, nil
}

func (s *allocationService) SuggestWindows(ctx context.Context, workerID string, entries []scheduler.Entry, excludeTaskID string) ([]scheduler.Entry, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	from, to := entryRange(entries)
	_, ledger, err := s.loader.Load(ctx, workerID, from, to, excludeTaskID)
	if err != nil {
		return nil, err
	}
	return scheduler.SuggestWindows(ledger, entries), nil
}

func (s *allocationService) Validate(ctx context.Context, req ValidateRequest) (*scheduler.ValidationReport, error) {
	var deadline *calendar.Deadline
	if req.Deadline != "" {
		d, err := s.settings.Calendar.ParseDeadline(req.Deadline)
		if err != nil {
			return nil, &scheduler.ValidationError{Field: "deadline", Message: err.Error()}
		}
		deadline = &d
	}
	from, to := entryRange(req.Entries)
	if from.IsZero() {
		from = s.settings.Calendar.DayOf(s.settings.now())
		to = from
	}
	if deadline != nil && deadline.Day.After(to) {
		to = deadline.Day
	}
	_, ledger, err := s.loader.Load(ctx, req.WorkerID, from, to, req.ExcludeTaskID)
	if err != nil {
		return nil, err
	}
	report := scheduler.Validate(ledger, req.Entries, req.ExpectedTotal, deadline)
	return &report, nil
}

// DeleteTask removes a task or block; its commitments go with it.
func (s *allocationService) DeleteTask(ctx context.Context, taskID string) (err error) {
	defer observe(ctx, s.observer, "task-delete", map[string]any{"task_id": taskID})(&err)
	return s.tasks.Delete(ctx, taskID)
}

// prepare resolves the strategy and turns the caller's request into an
// engine request. A deadline is optional for MANUAL only.
func (s *allocationService) prepare(req AllocationRequest) (scheduler.Request, scheduler.Strategy, error) {
	strategy, err := scheduler.For(req.Strategy, s.settings.Calendar)
	if err != nil {
		return scheduler.Request{}, nil, err
	}
	if req.WorkerID == "" {
		return scheduler.Request{}, nil, &scheduler.ValidationError{Field: "workerId", Message: "is required"}
	}
	var deadline calendar.Deadline
	switch {
	case req.Deadline != "":
		deadline, err = s.settings.Calendar.ParseDeadline(req.Deadline)
		if err != nil {
			return scheduler.Request{}, nil, &scheduler.ValidationError{Field: "deadline", Message: err.Error()}
		}
	case req.Strategy != domain.StrategyManual:
		return scheduler.Request{}, nil, &scheduler.ValidationError{Field: "deadline", Message: "is required"}
	}
	return scheduler.Request{
		WorkerID:   req.WorkerID,
		TotalHours: req.TotalHours,
		Deadline:   deadline,
		StartDate:  req.StartDate,
		Now:        s.settings.now(),
		Options:    req.Options,
		Entries:    req.Entries,
	}, strategy, nil
}

func entryRange(entries []scheduler.Entry) (from, to calendar.Day) {
	for _, e := range entries {
		if from.IsZero() || e.Date.Before(from) {
			from = e.Date
		}
		if to.IsZero() || e.Date.After(to) {
			to = e.Date
		}
	}
	return from, to
}
