package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/domain"
)

// SQLiteWorkerRepo implements WorkerRepo using a SQLite database.
type SQLiteWorkerRepo struct {
	db db.DBTX
}

// NewSQLiteWorkerRepo creates a new SQLiteWorkerRepo.
func NewSQLiteWorkerRepo(conn db.DBTX) *SQLiteWorkerRepo {
	return &SQLiteWorkerRepo{db: conn}
}

const workerColumns = `id, name, daily_capacity_hours, schedule, lunch_start, lunch_end, created_at, updated_at`

func (r *SQLiteWorkerRepo) Create(ctx context.Context, w *domain.Worker) error {
	query := `INSERT INTO workers (` + workerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.Name,
		w.DailyCapacityHours,
		w.Schedule,
		nullableClockToValue(w.LunchStart),
		nullableClockToValue(w.LunchEnd),
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting worker: %w", err)
	}
	return nil
}

func (r *SQLiteWorkerRepo) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = ?`, id)
	w, err := scanWorker(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("worker %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning worker: %w", err)
	}
	return w, nil
}

func (r *SQLiteWorkerRepo) List(ctx context.Context) ([]*domain.Worker, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+workerColumns+` FROM workers ORDER BY name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	defer rows.Close()

	var workers []*domain.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning worker: %w", err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workers: %w", err)
	}
	return workers, nil
}

func (r *SQLiteWorkerRepo) Update(ctx context.Context, w *domain.Worker) error {
	query := `UPDATE workers SET name = ?, daily_capacity_hours = ?, schedule = ?, lunch_start = ?, lunch_end = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		w.Name,
		w.DailyCapacityHours,
		w.Schedule,
		nullableClockToValue(w.LunchStart),
		nullableClockToValue(w.LunchEnd),
		formatTime(w.UpdatedAt),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating worker: %w", err)
	}
	return requireOneRow(res, "worker", w.ID)
}

func (r *SQLiteWorkerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting worker: %w", err)
	}
	return requireOneRow(res, "worker", id)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(s rowScanner) (*domain.Worker, error) {
	var w domain.Worker
	var lunchStart, lunchEnd sql.NullFloat64
	var createdAt, updatedAt string
	if err := s.Scan(
		&w.ID,
		&w.Name,
		&w.DailyCapacityHours,
		&w.Schedule,
		&lunchStart,
		&lunchEnd,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	w.LunchStart = nullableClock(lunchStart)
	w.LunchEnd = nullableClock(lunchEnd)
	w.CreatedAt = parseTime(createdAt)
	w.UpdatedAt = parseTime(updatedAt)
	return &w, nil
}

func requireOneRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
