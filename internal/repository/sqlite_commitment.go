package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/db"
	"github.com/alexanderramin/workload/internal/domain"
	"github.com/google/uuid"
)

// SQLiteCommitmentRepo implements CommitmentRepo using a SQLite database.
type SQLiteCommitmentRepo struct {
	db db.DBTX
}

// NewSQLiteCommitmentRepo creates a new SQLiteCommitmentRepo.
func NewSQLiteCommitmentRepo(conn db.DBTX) *SQLiteCommitmentRepo {
	return &SQLiteCommitmentRepo{db: conn}
}

const commitmentColumns = `id, worker_id, task_id, day, hours, kind, start_time, end_time, created_at`

// ListByWorkerRange returns the worker's commitments on days in [from, to],
// ordered by day. Days are stored as YYYY-MM-DD so text comparison is
// chronological.
func (r *SQLiteCommitmentRepo) ListByWorkerRange(ctx context.Context, workerID string, from, to calendar.Day) ([]domain.Commitment, error) {
	return r.list(ctx,
		`SELECT `+commitmentColumns+` FROM commitments
		WHERE worker_id = ? AND day >= ? AND day <= ?
		ORDER BY day, start_time, created_at, rowid`,
		workerID, from.String(), to.String())
}

func (r *SQLiteCommitmentRepo) ListByTask(ctx context.Context, taskID string) ([]domain.Commitment, error) {
	return r.list(ctx,
		`SELECT `+commitmentColumns+` FROM commitments WHERE task_id = ? ORDER BY day`,
		taskID)
}

func (r *SQLiteCommitmentRepo) ReplaceForTask(ctx context.Context, taskID string, cs []domain.Commitment) error {
	if err := r.DeleteByTask(ctx, taskID); err != nil {
		return err
	}
	query := `INSERT INTO commitments (` + commitmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range cs {
		c := &cs[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.TaskID = taskID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = nowUTC()
		}
		_, err := r.db.ExecContext(ctx, query,
			c.ID,
			c.WorkerID,
			c.TaskID,
			c.Date.String(),
			c.Hours,
			string(c.Kind),
			nullableClockToValue(c.StartTime),
			nullableClockToValue(c.EndTime),
			formatTime(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting commitment for %s: %w", c.Date, err)
		}
	}
	return nil
}

func (r *SQLiteCommitmentRepo) DeleteByTask(ctx context.Context, taskID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM commitments WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("deleting commitments: %w", err)
	}
	return nil
}

func (r *SQLiteCommitmentRepo) list(ctx context.Context, query string, args ...any) ([]domain.Commitment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing commitments: %w", err)
	}
	defer rows.Close()

	var out []domain.Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning commitment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating commitments: %w", err)
	}
	return out, nil
}

func scanCommitment(s rowScanner) (domain.Commitment, error) {
	var c domain.Commitment
	var day, kind, createdAt string
	var start, end sql.NullFloat64
	if err := s.Scan(
		&c.ID,
		&c.WorkerID,
		&c.TaskID,
		&day,
		&c.Hours,
		&kind,
		&start,
		&end,
		&createdAt,
	); err != nil {
		return domain.Commitment{}, err
	}
	d, err := calendar.ParseDay(day)
	if err != nil {
		return domain.Commitment{}, err
	}
	c.Date = d
	c.Kind = domain.CommitmentKind(kind)
	c.StartTime = nullableClock(start)
	c.EndTime = nullableClock(end)
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}
