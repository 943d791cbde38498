package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/lock"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	testCal = calendar.MustNew(calendar.DefaultTimezone)
	monday  = calendar.NewDay(2025, time.March, 17)
	tuesday = monday.AddDays(1)
	now     = monday.At(calendar.NewClock(8, 0), testCal.Location())
)

type fixture struct {
	db          *sql.DB
	workers     repository.WorkerRepo
	tasks       repository.TaskRepo
	commitments repository.CommitmentRepo
	uow         db.UnitOfWork
	locker      lock.Locker
	settings    Settings
	observer    *recordingObserver
}

func setupServices(t *testing.T) *fixture {
	t.Helper()
	return newFixture(testutil.NewTestDB(t))
}

func newFixture(database *sql.DB) *fixture {
	return &fixture{
		db:          database,
		workers:     repository.NewSQLiteWorkerRepo(database),
		tasks:       repository.NewSQLiteTaskRepo(database),
		commitments: repository.NewSQLiteCommitmentRepo(database),
		uow:         testutil.NewTestUoW(database),
		locker:      lock.NewLocal(),
		settings: Settings{
			Calendar: testCal,
			Defaults: capacity.DefaultDefaults(),
			Logger:   zerolog.Nop(),
			Now:      func() time.Time { return now },
		},
		observer: &recordingObserver{},
	}
}

func (f *fixture) allocation() AllocationService {
	return NewAllocationService(f.workers, f.tasks, f.commitments, f.uow, f.locker, f.settings, f.observer)
}

func (f *fixture) blocks() BlockService {
	return NewBlockService(f.tasks, f.uow, f.locker, f.settings, f.observer)
}

func (f *fixture) capacity() CapacityService {
	return NewCapacityService(f.workers, f.tasks, f.commitments, f.settings)
}

func (f *fixture) worker(t *testing.T, name string, opts ...testutil.WorkerOption) *domain.Worker {
	t.Helper()
	w := testutil.NewTestWorker(name, opts...)
	require.NoError(t, f.workers.Create(context.Background(), w))
	return w
}

func (f *fixture) committedHours(t *testing.T, workerID string, day calendar.Day) float64 {
	t.Helper()
	cs, err := f.commitments.ListByWorkerRange(context.Background(), workerID, day, day)
	require.NoError(t, err)
	var sum float64
	for _, c := range cs {
		sum += c.Hours
	}
	return sum
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}
