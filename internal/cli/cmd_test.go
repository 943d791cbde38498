package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/alexanderramin/workload/internal/lock"
	"github.com/alexanderramin/workload/internal/repository"
	"github.com/alexanderramin/workload/internal/scheduler"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/alexanderramin/workload/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCal = calendar.MustNew(calendar.DefaultTimezone)
	monday  = calendar.NewDay(2025, time.March, 17)
	now     = monday.At(calendar.NewClock(8, 0), testCal.Location())
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	db := testutil.NewTestDB(t)

	workerRepo := repository.NewSQLiteWorkerRepo(db)
	taskRepo := repository.NewSQLiteTaskRepo(db)
	commitmentRepo := repository.NewSQLiteCommitmentRepo(db)
	uow := testutil.NewTestUoW(db)
	locker := lock.NewLocal()
	settings := service.Settings{
		Calendar: testCal,
		Defaults: capacity.DefaultDefaults(),
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return now },
	}

	return &App{
		Workers:            service.NewWorkerService(workerRepo, settings),
		Capacity:           service.NewCapacityService(workerRepo, taskRepo, commitmentRepo, settings),
		Allocation:         service.NewAllocationService(workerRepo, taskRepo, commitmentRepo, uow, locker, settings),
		Blocks:             service.NewBlockService(taskRepo, uow, locker, settings),
		Calendar:           testCal,
		Logger:             zerolog.Nop(),
		DefaultLunch:       calendar.DefaultLunch,
		MorningDeliveryCap: scheduler.DefaultMorningDeliveryCap,
		MetricsAddr:        ":0",
		Now:                func() time.Time { return now },
	}
}

// seedWorker registers a worker with the default 9h-17h schedule.
func seedWorker(t *testing.T, app *App, name string) *domain.Worker {
	t.Helper()
	w := &domain.Worker{Name: name, DailyCapacityHours: 7, Schedule: "9h-17h"}
	require.NoError(t, app.Workers.Create(context.Background(), w))
	return w
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	return executeCmdWithInput(t, app, "", args...)
}

func executeCmdWithInput(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- root ---

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "workload")
	assert.Contains(t, output, "plan")
}

// --- worker ---

func TestWorkerCmd_AddListShow(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "worker", "add", "--name", "Amélie",
		"--schedule", "7h30-15h30", "--lunch-start", "11h30", "--lunch-end", "12h")
	require.NoError(t, err)
	assert.Contains(t, out, "Created worker Amélie")

	out, err = executeCmd(t, app, "worker", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Amélie")
	assert.Contains(t, out, "7h30-15h30")

	out, err = executeCmd(t, app, "worker", "show", "amélie")
	require.NoError(t, err)
	assert.Contains(t, out, "11h30-12h")
}

func TestWorkerCmd_ListEmpty(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "worker", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No workers found.")
}

func TestWorkerCmd_LunchNeedsBothEnds(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "worker", "add", "--name", "Bruno", "--lunch-start", "12h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go together")
}

func TestWorkerCmd_UpdateCapacityAndRemove(t *testing.T) {
	app := testApp(t)
	w := seedWorker(t, app, "Bruno")

	_, err := executeCmd(t, app, "worker", "update", w.ID[:8], "--capacity", "5")
	require.NoError(t, err)
	got, err := app.Workers.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.DailyCapacityHours)
	assert.Equal(t, "9h-17h", got.Schedule)

	_, err = executeCmd(t, app, "worker", "rm", "Bruno")
	require.NoError(t, err)
	_, err = app.Workers.GetByID(context.Background(), w.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResolveWorkerID_NotFound(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")

	_, err := resolveWorkerID(context.Background(), app, "Zoé")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker not found")
}

// --- plan ---

func TestPlanCmd_PreviewBooksNothing(t *testing.T) {
	app := testApp(t)
	w := seedWorker(t, app, "Amélie")

	out, err := executeCmd(t, app, "plan", "--worker", "Amélie", "--strategy", "jat",
		"--hours", "10", "--deadline", "2025-03-18")
	require.NoError(t, err)
	assert.Contains(t, out, "Mon 2025-03-17")
	assert.Contains(t, out, "Tue 2025-03-18")
	assert.Contains(t, out, "Total 10h over 2 day(s)")
	assert.Contains(t, out, "Preview only")

	free, err := app.Capacity.AvailableHours(context.Background(), w.ID, monday, "")
	require.NoError(t, err)
	assert.Equal(t, 7.0, free)
}

func TestPlanCmd_CommitBooksPreview(t *testing.T) {
	app := testApp(t)
	w := seedWorker(t, app, "Amélie")

	out, err := executeCmd(t, app, "plan", "--worker", "Amélie", "--strategy", "JAT",
		"--hours", "10", "--deadline", "2025-03-18", "--title", "Rapport", "--commit")
	require.NoError(t, err)
	assert.Contains(t, out, "Committed task Rapport")

	free, err := app.Capacity.AvailableHours(context.Background(), w.ID, monday, "")
	require.NoError(t, err)
	assert.Equal(t, 4.0, free)
}

func TestPlanCmd_StrategyRequiredWhenNotInteractive(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")

	_, err := executeCmd(t, app, "plan", "--worker", "Amélie", "--hours", "3", "--deadline", "2025-03-18")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--strategy is required")
}

func TestPlanCmd_RejectsManualStrategy(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "plan", "--worker", "x", "--strategy", "manual", "--hours", "3", "--deadline", "2025-03-18")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workload manual")
}

func TestPlanCmd_InsufficientCapacity(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")

	_, err := executeCmd(t, app, "plan", "--worker", "Amélie", "--strategy", "PEPS",
		"--hours", "40", "--deadline", "2025-03-18")
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduler.ErrCapacity)
}

// --- manual ---

func TestManualCmd_ValidateReportsOverbooking(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")
	path := writeFile(t, "manual.json", `{
		"workerId": "Amélie",
		"totalHours": 9,
		"entries": [{"date": "2025-03-17", "hours": 9}]
	}`)

	out, err := executeCmd(t, app, "manual", "validate", "--file", path)
	require.ErrorIs(t, err, errInvalidAllocation)
	assert.Contains(t, out, "CAPACITY")
}

func TestManualCmd_CommitFromStdin(t *testing.T) {
	app := testApp(t)
	w := seedWorker(t, app, "Amélie")
	doc := `{"workerId": "Amélie", "title": "Relecture", "totalHours": 3,
		"entries": [{"date": "2025-03-17", "hours": 3}]}`

	out, err := executeCmdWithInput(t, app, doc, "manual", "commit", "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "9h-12h")
	assert.Contains(t, out, "Committed task Relecture")

	free, err := app.Capacity.AvailableHours(context.Background(), w.ID, monday, "")
	require.NoError(t, err)
	assert.Equal(t, 4.0, free)
}

func TestManualCmd_CommitPrintsReportWhenRejected(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")
	doc := `{"workerId": "Amélie", "title": "Relecture", "totalHours": 5,
		"entries": [{"date": "2025-03-17", "hours": 3}]}`

	out, err := executeCmdWithInput(t, app, doc, "manual", "commit", "--file", "-")
	require.ErrorIs(t, err, errInvalidAllocation)
	assert.Contains(t, out, "TOTAL")
}

func TestManualCmd_SuggestJSON(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")
	doc := `{"workerId": "Amélie", "totalHours": 2, "entries": [{"date": "2025-03-17", "hours": 2}]}`

	out, err := executeCmdWithInput(t, app, doc, "manual", "suggest", "--file", "-", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"startTime": "9h"`)
	assert.Contains(t, out, `"endTime": "11h"`)
}

func TestManualCmd_RejectsUnknownFields(t *testing.T) {
	app := testApp(t)

	_, err := executeCmdWithInput(t, app, `{"workerId": "a", "entries": [], "hourz": 1}`, "manual", "validate", "--file", "-")
	require.ErrorIs(t, err, scheduler.ErrValidation)
}

// --- block, capacity, task ---

func TestBlockCmd_ChargesWorkingHoursOnly(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")

	out, err := executeCmd(t, app, "block", "add", "Amélie", "--date", "2025-03-17",
		"--from", "11h", "--to", "14h", "--reason", "Dentiste")
	require.NoError(t, err)
	assert.Contains(t, out, "2h charged")

	out, err = executeCmd(t, app, "capacity", "Amélie", "--date", "2025-03-17")
	require.NoError(t, err)
	assert.Contains(t, out, "5h")
}

func TestCapacityCmd_PairsWorkers(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")
	seedWorker(t, app, "Bruno")
	_, err := executeCmd(t, app, "block", "add", "Bruno", "--date", "today", "--from", "9h", "--to", "11h")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "capacity", "Amélie", "--with", "Bruno")
	require.NoError(t, err)
	assert.Contains(t, out, "5h ◂ bottleneck")
	assert.Contains(t, out, "Combined 12h")
}

func TestBlockCmd_RemoveRefusesTasks(t *testing.T) {
	app := testApp(t)
	w := seedWorker(t, app, "Amélie")
	res, err := app.Allocation.Commit(context.Background(), service.AllocationRequest{
		WorkerID: w.ID, Title: "Rapport", Strategy: domain.StrategyPEPS, TotalHours: 2, Deadline: "2025-03-18",
	})
	require.NoError(t, err)

	_, err = executeCmd(t, app, "block", "rm", res.Task.ID)
	require.ErrorIs(t, err, scheduler.ErrValidation)

	out, err := executeCmd(t, app, "task", "rm", res.Task.ID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task")
}

// --- commitments and exports ---

func TestCommitmentsCmd_ListsAndExports(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")
	_, err := executeCmd(t, app, "plan", "--worker", "Amélie", "--strategy", "PEPS",
		"--hours", "3", "--deadline", "2025-03-18", "--title", "Rapport", "--commit")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "block", "add", "Amélie", "--date", "2025-03-18", "--from", "14h", "--to", "15h", "--reason", "Réunion")
	require.NoError(t, err)

	dir := t.TempDir()
	xlsx := filepath.Join(dir, "out.xlsx")
	ics := filepath.Join(dir, "out.ics")
	out, err := executeCmd(t, app, "commitments", "Amélie", "--from", "2025-03-17", "--to", "2025-03-21",
		"--xlsx", xlsx, "--ics", ics)
	require.NoError(t, err)
	assert.Contains(t, out, "Rapport")
	assert.Contains(t, out, "Réunion")
	assert.Contains(t, out, "Wrote "+xlsx)
	assert.FileExists(t, xlsx)
	assert.FileExists(t, ics)
	assert.NoFileExists(t, xlsx+".tmp")

	body, err := os.ReadFile(ics)
	require.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VEVENT")
}

func TestCommitmentsCmd_Empty(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")

	out, err := executeCmd(t, app, "commitments", "Amélie")
	require.NoError(t, err)
	assert.Contains(t, out, "No commitments for Amélie between 2025-03-17 and 2025-03-31.")
}

func TestCommitmentsCmd_RangeOrder(t *testing.T) {
	app := testApp(t)
	seedWorker(t, app, "Amélie")

	_, err := executeCmd(t, app, "commitments", "Amélie", "--from", "2025-03-20", "--to", "2025-03-17")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before --from")
}

// --- misc ---

func TestSchemaCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"workerId"`)
	assert.Contains(t, out, `"entries"`)
}

func TestParseDay(t *testing.T) {
	app := testApp(t)

	d, err := parseDay(app, "2025-03-20")
	require.NoError(t, err)
	assert.Equal(t, calendar.NewDay(2025, time.March, 20), d)

	d, err = parseDay(app, "today")
	require.NoError(t, err)
	assert.Equal(t, monday, d)

	d, err = parseDay(app, "tomorrow")
	require.NoError(t, err)
	assert.Equal(t, monday.AddDays(1), d)

	_, err = parseDay(app, "banana")
	assert.Error(t, err)
}

func TestMetricsMux(t *testing.T) {
	srv := httptest.NewServer(metricsMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
