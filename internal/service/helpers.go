package service

import (
	"context"
	"errors"
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
	"github.com/rs/zerolog"
)

// ErrStaleAllocation marks a commit whose allocation no longer fits because
// capacity changed after it was computed.
var ErrStaleAllocation = errors.New("allocation is stale")

// Settings carries what every engine-facing service shares.
type Settings struct {
	Calendar *calendar.Calendar
	Defaults capacity.Defaults
	Logger   zerolog.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Settings) loader(conn db.DBTX) *capacity.Loader {
	return capacity.NewLoader(
		repository.NewSQLiteWorkerRepo(conn),
		repository.NewSQLiteCommitmentRepo(conn),
		s.Defaults,
		s.Logger,
	)
}

// outcome is the metrics label for an allocation error.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrStaleAllocation):
		return "stale"
	case errors.Is(err, scheduler.ErrValidation):
		return "validation"
	case errors.Is(err, scheduler.ErrCapacity):
		return "capacity"
	case errors.Is(err, scheduler.ErrInconsistency):
		return "inconsistency"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// lockWorker serializes writers on one worker's commitments. The returned
// func releases the lock and logs a failed release.
func lockWorker(ctx context.Context, locker lock.Locker, logger zerolog.Logger, workerID string) (func(), error) {
	start := time.Now()
	release, err := locker.Lock(ctx, lock.WorkerKey(workerID))
	metrics.ObserveLockWait(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("locking worker %s: %w", workerID, err)
	}
	return func() {
		if err := release(); err != nil {
			logger.Warn().Err(err).Str("worker_id", workerID).Msg("releasing worker lock")
		}
	}, nil
}

// toCommitments turns allocation entries into commitment rows for task.
// Empty days are not stored.
func toCommitments(task *domain.Task, entries []scheduler.Entry) []domain.Commitment {
	out := make([]domain.Commitment, 0, len(entries))
	for _, e := range entries {
		if e.Hours <= 0 && task.Kind == domain.KindTask {
			continue
		}
		out = append(out, domain.Commitment{
			WorkerID:  task.WorkerID,
			TaskID:    task.ID,
			Date:      e.Date,
			Hours:     e.Hours,
			Kind:      task.Kind,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		})
	}
	return out
}
