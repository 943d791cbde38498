package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/lock"
	"github.com/alexanderramin/workload/internal/metrics"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/google/uuid"
)

const defaultBlockTitle = "Blocked time"

type blockService struct {
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	locker   lock.Locker
	settings Settings
	observer UseCaseObserver
}

func NewBlockService(tasks repository.TaskRepo, uow db.UnitOfWork, locker lock.Locker, settings Settings, observers ...UseCaseObserver) BlockService {
	return &blockService{
		tasks:    tasks,
		uow:      uow,
		locker:   locker,
		settings: settings,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Create records a time block as a BLOCK task with one commitment. The
// commitment charges only the part of the window inside working hours and
// outside lunch; a block charging nothing is still recorded.
func (s *blockService) Create(ctx context.Context, req BlockRequest) (out *BlockResult, err error) {
	fields := map[string]any{"worker_id": req.WorkerID, "date": req.Date.String(), "window": req.Window.String()}
	defer observe(ctx, s.observer, "block-create", fields)(&err)

	if req.Date.IsZero() {
		return nil, &scheduler.ValidationError{Field: "date", Message: "is required"}
	}
	if !req.Window.Valid() {
		return nil, &scheduler.ValidationError{Field: "window", Message: fmt.Sprintf("start %s is not before end %s", req.Window.Start, req.Window.End)}
	}

	release, err := lockWorker(ctx, s.locker, s.settings.Logger, req.WorkerID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		_, ledger, err := s.settings.loader(tx).Load(ctx, req.WorkerID, req.Date, req.Date, "")
		if err != nil {
			return err
		}
		entry, err := scheduler.BlockEntry(ledger.Profile(), req.Date, req.Window)
		if err != nil {
			return err
		}

		now := s.settings.now().UTC()
		task := &domain.Task{
			ID:         uuid.New().String(),
			WorkerID:   req.WorkerID,
			Title:      domain.CoalesceStr(req.Reason, defaultBlockTitle),
			Kind:       domain.KindBlock,
			TotalHours: entry.Hours,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repository.NewSQLiteTaskRepo(tx).Create(ctx, task); err != nil {
			return err
		}
		cs := toCommitments(task, []scheduler.Entry{entry})
		if err := repository.NewSQLiteCommitmentRepo(tx).ReplaceForTask(ctx, task.ID, cs); err != nil {
			return err
		}
		out = &BlockResult{Task: task, Commitment: cs[0]}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["hours"] = out.Commitment.Hours
	metrics.IncBlock(out.Commitment.Hours > 0)
	return out, nil
}

// Delete removes a block and its commitment. Tasks are refused.
func (s *blockService) Delete(ctx context.Context, taskID string) (err error) {
	defer observe(ctx, s.observer, "block-delete", map[string]any{"task_id": taskID})(&err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		t, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if t.Kind != domain.KindBlock {
			return &scheduler.ValidationError{Field: "taskId", Message: fmt.Sprintf("%s is a task, not a time block", taskID)}
		}
		return tasks.Delete(ctx, taskID)
	})
}
