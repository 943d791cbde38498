package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/alexanderramin/workload/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumHours(cs []domain.Commitment) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.Hours
	}
	return sum
}

func TestAllocationPreview_WritesNothing(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")

	res, err := f.allocation().Preview(ctx, AllocationRequest{
		WorkerID:   w.ID,
		Strategy:   domain.StrategyPEPS,
		TotalHours: 10,
		Deadline:   "2025-03-18",
	})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, 7.0, res.Entries[0].Hours)
	assert.Equal(t, 3.0, res.Entries[1].Hours)

	assert.Zero(t, f.committedHours(t, w.ID, monday))
	tasks, err := f.tasks.ListByWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestAllocationPreview_UnknownWorker(t *testing.T) {
	f := setupServices(t)
	_, err := f.allocation().Preview(context.Background(), AllocationRequest{
		WorkerID: "nope", Strategy: domain.StrategyJAT, TotalHours: 2, Deadline: "2025-03-18",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAllocationPreview_RejectsBadInput(t *testing.T) {
	f := setupServices(t)
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	cases := map[string]AllocationRequest{
		"unknown strategy":   {WorkerID: w.ID, Strategy: "ALAP", TotalHours: 2, Deadline: "2025-03-18"},
		"missing deadline":   {WorkerID: w.ID, Strategy: domain.StrategyJAT, TotalHours: 2},
		"garbled deadline":   {WorkerID: w.ID, Strategy: domain.StrategyJAT, TotalHours: 2, Deadline: "18/03/2025"},
		"past deadline":      {WorkerID: w.ID, Strategy: domain.StrategyPEPS, TotalHours: 2, Deadline: "2025-03-14"},
		"non-positive hours": {WorkerID: w.ID, Strategy: domain.StrategyEquilibre, TotalHours: 0, Deadline: "2025-03-18"},
		"missing worker":     {Strategy: domain.StrategyJAT, TotalHours: 2, Deadline: "2025-03-18"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Preview(context.Background(), req)
			assert.ErrorIs(t, err, scheduler.ErrValidation)
		})
	}
}

func TestAllocationCommit_PersistsTaskAndCommitments(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")

	out, err := f.allocation().Commit(ctx, AllocationRequest{
		WorkerID:   w.ID,
		Title:      "Rapport annuel",
		Strategy:   domain.StrategyJAT,
		TotalHours: 10,
		Deadline:   "2025-03-18",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Task)

	task, err := f.tasks.GetByID(ctx, out.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rapport annuel", task.Title)
	assert.Equal(t, domain.KindTask, task.Kind)
	assert.Equal(t, domain.StrategyJAT, task.Strategy)
	assert.Equal(t, "2025-03-18", task.Deadline)

	cs, err := f.commitments.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.InDelta(t, 10.0, sumHours(cs), 1e-9)
	assert.Equal(t, 3.0, f.committedHours(t, w.ID, monday))
	assert.Equal(t, 7.0, f.committedHours(t, w.ID, tuesday))
	for _, c := range cs {
		assert.NotNil(t, c.StartTime)
		assert.NotNil(t, c.EndTime)
	}

	ev := f.observer.last()
	assert.Equal(t, "allocation-commit", ev.Name)
	assert.True(t, ev.Success)
	assert.Equal(t, task.ID, ev.Fields["task_id"])
}

func TestAllocationCommit_RequiresTitleForNewTask(t *testing.T) {
	f := setupServices(t)
	w := f.worker(t, "Amélie")
	_, err := f.allocation().Commit(context.Background(), AllocationRequest{
		WorkerID: w.ID, Strategy: domain.StrategyJAT, TotalHours: 2, Deadline: "2025-03-18",
	})
	assert.ErrorIs(t, err, scheduler.ErrValidation)
}

func TestAllocationCommit_SeesEarlierCommitments(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	_, err := svc.Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "A", Strategy: domain.StrategyJAT, TotalHours: 10, Deadline: "2025-03-18",
	})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "B", Strategy: domain.StrategyPEPS, TotalHours: 5, Deadline: "2025-03-18",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduler.ErrCapacity)

	var capErr *scheduler.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.InDelta(t, 4.0, capErr.Available, 1e-9)

	assert.False(t, f.observer.last().Success)
	tasks, err := f.tasks.ListByWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "the rejected task must not be written")
}

func TestAllocationCommit_ReallocationIgnoresOwnCommitments(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	first, err := svc.Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "A", Strategy: domain.StrategyJAT, TotalHours: 10, Deadline: "2025-03-18",
	})
	require.NoError(t, err)

	// 12h only fits in Mon+Tue if the task's own 10h are not counted.
	second, err := svc.Commit(ctx, AllocationRequest{
		TaskID: first.Task.ID, WorkerID: w.ID, Strategy: domain.StrategyJAT, TotalHours: 12, Deadline: "2025-03-18",
	})
	require.NoError(t, err)
	assert.Equal(t, first.Task.ID, second.Task.ID)
	assert.Equal(t, "A", second.Task.Title, "title is kept when not given")

	cs, err := f.commitments.ListByTask(ctx, first.Task.ID)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, sumHours(cs), 1e-9)
	assert.Equal(t, 5.0, f.committedHours(t, w.ID, monday))

	task, err := f.tasks.GetByID(ctx, first.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, task.TotalHours)
}

func TestAllocationCommit_RejectsForeignOrBlockTask(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	a := f.worker(t, "Amélie")
	b := f.worker(t, "Bruno")

	owned, err := f.allocation().Commit(ctx, AllocationRequest{
		WorkerID: a.ID, Title: "A", Strategy: domain.StrategyPEPS, TotalHours: 2, Deadline: "2025-03-18",
	})
	require.NoError(t, err)
	_, err = f.allocation().Commit(ctx, AllocationRequest{
		TaskID: owned.Task.ID, WorkerID: b.ID, Strategy: domain.StrategyPEPS, TotalHours: 2, Deadline: "2025-03-18",
	})
	assert.ErrorIs(t, err, scheduler.ErrValidation)

	blk, err := f.blocks().Create(ctx, BlockRequest{
		WorkerID: a.ID, Date: monday,
		Window: calendar.Window{Start: calendar.NewClock(9, 0), End: calendar.NewClock(10, 0)},
	})
	require.NoError(t, err)
	_, err = f.allocation().Commit(ctx, AllocationRequest{
		TaskID: blk.Task.ID, WorkerID: a.ID, Strategy: domain.StrategyPEPS, TotalHours: 2, Deadline: "2025-03-18",
	})
	assert.ErrorIs(t, err, scheduler.ErrValidation)
}

func TestAllocationCommit_AcceptedPreviewRevalidated(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	req := AllocationRequest{
		WorkerID: w.ID, Title: "A", Strategy: domain.StrategyJAT, TotalHours: 10, Deadline: "2025-03-18",
	}
	preview, err := svc.Preview(ctx, req)
	require.NoError(t, err)

	req.Accepted = preview.Entries
	out, err := svc.Commit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, len(preview.Entries), len(out.Commitments))
	for i, c := range out.Commitments {
		assert.Equal(t, preview.Entries[i].Date, c.Date)
		assert.Equal(t, preview.Entries[i].Hours, c.Hours)
	}
}

func TestAllocationCommit_StalePreviewRejected(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	req := AllocationRequest{
		WorkerID: w.ID, Title: "A", Strategy: domain.StrategyJAT, TotalHours: 10, Deadline: "2025-03-18",
	}
	preview, err := svc.Preview(ctx, req)
	require.NoError(t, err)

	// Another task takes 5h on Monday between preview and commit.
	_, err = svc.Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "B", Strategy: domain.StrategyPEPS, TotalHours: 5, Deadline: "2025-03-17",
	})
	require.NoError(t, err)

	req.Accepted = preview.Entries
	_, err = svc.Commit(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStaleAllocation)
	assert.ErrorIs(t, err, scheduler.ErrCapacity)
	assert.Equal(t, "stale", outcome(err))

	assert.Equal(t, 5.0, f.committedHours(t, w.ID, monday), "nothing of the stale task is written")
}

func TestAllocationCommit_RollbackOnCommitmentInsertFailure(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")

	// ExecContext #1 = task insert, #2 = delete old commitments, #3 = first commitment insert.
	f.uow = &testutil.FailOnNthExecUoW{DB: f.db, FailOn: 3, Err: fmt.Errorf("injected insert failure")}

	_, err := f.allocation().Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "A", Strategy: domain.StrategyPEPS, TotalHours: 4, Deadline: "2025-03-18",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected insert failure")

	tasks, err := f.tasks.ListByWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks, "task insert must be rolled back")
	assert.Zero(t, f.committedHours(t, w.ID, monday))
}

func TestAllocationCommit_ConcurrentWritersNeverOverbook(t *testing.T) {
	database, err := db.OpenDB(filepath.Join(t.TempDir(), "commit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	f := newFixture(database)
	ctx := context.Background()
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Commit(ctx, AllocationRequest{
				WorkerID: w.ID, Title: fmt.Sprintf("T%d", i),
				Strategy: domain.StrategyPEPS, TotalHours: 5, Deadline: "2025-03-17",
			})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, scheduler.ErrCapacity)
	}
	assert.Equal(t, 1, ok, "only one 5h task fits in a 7h day")
	assert.Equal(t, 5.0, f.committedHours(t, w.ID, monday))
}

func TestAllocationCommit_Manual(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	out, err := svc.Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "M", Strategy: domain.StrategyManual, TotalHours: 7, Deadline: "2025-03-18",
		Entries: []scheduler.Entry{{Date: monday, Hours: 4}, {Date: tuesday, Hours: 3}},
	})
	require.NoError(t, err)
	require.Len(t, out.Commitments, 2)
	assert.Equal(t, calendar.NewClock(9, 0), *out.Commitments[0].StartTime)
	assert.Equal(t, calendar.NewClock(14, 0), *out.Commitments[0].EndTime)

	_, err = svc.Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "N", Strategy: domain.StrategyManual, TotalHours: 5,
		Entries: []scheduler.Entry{{Date: monday, Hours: 5}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduler.ErrCapacity)
	var rep *scheduler.ReportError
	require.ErrorAs(t, err, &rep)
	kinds := make([]scheduler.IssueKind, 0, len(rep.Report.Issues))
	for _, is := range rep.Report.Issues {
		kinds = append(kinds, is.Kind)
	}
	assert.Contains(t, kinds, scheduler.IssueCapacity)
}

func TestAllocationSuggestWindows_SkipsCommittedHours(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")

	_, err := f.blocks().Create(ctx, BlockRequest{
		WorkerID: w.ID, Date: monday,
		Window: calendar.Window{Start: calendar.NewClock(9, 0), End: calendar.NewClock(11, 0)},
	})
	require.NoError(t, err)

	out, err := f.allocation().SuggestWindows(ctx, w.ID, []scheduler.Entry{{Date: monday, Hours: 2}}, "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	win, ok := out[0].Window()
	require.True(t, ok)
	assert.Equal(t, "11h-14h", win.String())

	empty, err := f.allocation().SuggestWindows(ctx, w.ID, nil, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAllocationValidate_DeadlineTimeShrinksCapacity(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Chloé", testutil.WithSchedule("7h15-15h15"))
	svc := f.allocation()

	report, err := svc.Validate(ctx, ValidateRequest{
		WorkerID: w.ID, ExpectedTotal: 6, Deadline: "2025-03-18T10:30",
		Entries: []scheduler.Entry{{Date: tuesday, Hours: 6}},
	})
	require.NoError(t, err)
	assert.False(t, report.Valid)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, scheduler.IssueCapacity, report.Issues[0].Kind)
	assert.InDelta(t, 3.25, report.Issues[0].Available, 1e-9)

	report, err = svc.Validate(ctx, ValidateRequest{
		WorkerID: w.ID, ExpectedTotal: 3, Deadline: "2025-03-18T10:30",
		Entries: []scheduler.Entry{{Date: tuesday, Hours: 3}},
	})
	require.NoError(t, err)
	assert.True(t, report.Valid)

	_, err = svc.Validate(ctx, ValidateRequest{WorkerID: w.ID, Deadline: "bientôt"})
	assert.ErrorIs(t, err, scheduler.ErrValidation)
}

func TestAllocationDeleteTask_CascadesCommitments(t *testing.T) {
	f := setupServices(t)
	ctx := context.Background()
	w := f.worker(t, "Amélie")
	svc := f.allocation()

	out, err := svc.Commit(ctx, AllocationRequest{
		WorkerID: w.ID, Title: "A", Strategy: domain.StrategyEquilibre, TotalHours: 6, Deadline: "2025-03-18",
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTask(ctx, out.Task.ID))

	cs, err := f.commitments.ListByTask(ctx, out.Task.ID)
	require.NoError(t, err)
	assert.Empty(t, cs)
	assert.ErrorIs(t, svc.DeleteTask(ctx, out.Task.ID), repository.ErrNotFound)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "validation", outcome(&scheduler.ValidationError{Message: "x"}))
	assert.Equal(t, "capacity", outcome(fmt.Errorf("wrapped: %w", &scheduler.CapacityError{})))
	assert.Equal(t, "not_found", outcome(fmt.Errorf("worker x: %w", repository.ErrNotFound)))
	assert.Equal(t, "error", outcome(fmt.Errorf("disk full")))
}
