package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, worker_id, title, kind, strategy, total_hours, deadline, timestamp_aware, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.WorkerID,
		t.Title,
		string(t.Kind),
		string(t.Strategy),
		t.TotalHours,
		t.Deadline,
		boolToInt(t.TimestampAware),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByWorker(ctx context.Context, workerID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE worker_id = ? ORDER BY created_at, rowid`, workerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET title = ?, strategy = ?, total_hours = ?, deadline = ?, timestamp_aware = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Title,
		string(t.Strategy),
		t.TotalHours,
		t.Deadline,
		boolToInt(t.TimestampAware),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireOneRow(res, "task", t.ID)
}

// Delete removes the task; its commitments go with it.
func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireOneRow(res, "task", id)
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var t domain.Task
	var kind, strategy, createdAt, updatedAt string
	var aware int
	if err := s.Scan(
		&t.ID,
		&t.WorkerID,
		&t.Title,
		&kind,
		&strategy,
		&t.TotalHours,
		&t.Deadline,
		&aware,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	t.Kind = domain.CommitmentKind(kind)
	t.Strategy = domain.Strategy(strategy)
	t.TimestampAware = intToBool(aware)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}
