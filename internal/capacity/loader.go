package capacity

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/rs/zerolog"
)

// WorkerReader is the slice of the worker store the loader needs.
type WorkerReader interface {
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
}

// CommitmentReader is the slice of the commitment store the loader needs.
type CommitmentReader interface {
	ListByWorkerRange(ctx context.Context, workerID string, from, to calendar.Day) ([]domain.Commitment, error)
}

// Loader builds Ledgers from storage. It performs reads only.
type Loader struct {
	workers     WorkerReader
	commitments CommitmentReader
	defaults    Defaults
	logger      zerolog.Logger
}

func NewLoader(workers WorkerReader, commitments CommitmentReader, defaults Defaults, logger zerolog.Logger) *Loader {
	return &Loader{workers: workers, commitments: commitments, defaults: defaults, logger: logger}
}

// Load returns the worker and a ledger covering [from, to].
func (l *Loader) Load(ctx context.Context, workerID string, from, to calendar.Day, excludeTaskID string) (*domain.Worker, *Ledger, error) {
	w, err := l.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, nil, err
	}
	commitments, err := l.commitments.ListByWorkerRange(ctx, workerID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("loading commitments: %w", err)
	}
	return w, NewLedger(ProfileFor(w, l.defaults, l.logger), commitments, excludeTaskID), nil
}

// AvailableHours is the capacity query primitive: net capacity on day minus
// everything already committed, optionally ignoring one task, never negative.
func (l *Loader) AvailableHours(ctx context.Context, workerID string, day calendar.Day, excludeTaskID string) (float64, error) {
	_, ledger, err := l.Load(ctx, workerID, day, day, excludeTaskID)
	if err != nil {
		return 0, err
	}
	return ledger.Available(day), nil
}
