package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillCommitmentKind(db); err != nil {
		return fmt.Errorf("backfilling commitment kind: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS workers (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL,
		daily_capacity_hours REAL NOT NULL DEFAULT 7 CHECK(daily_capacity_hours >= 0),
		schedule             TEXT NOT NULL DEFAULT '',
		lunch_start          REAL,
		lunch_end            REAL,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		worker_id   TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		title       TEXT NOT NULL DEFAULT '',
		kind        TEXT NOT NULL DEFAULT 'TASK' CHECK(kind IN ('TASK','BLOCK')),
		strategy    TEXT NOT NULL DEFAULT '',
		total_hours REAL NOT NULL DEFAULT 0,
		deadline    TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_worker ON tasks(worker_id)`,

	`CREATE TABLE IF NOT EXISTS commitments (
		id         TEXT PRIMARY KEY,
		worker_id  TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		day        TEXT NOT NULL,
		hours      REAL NOT NULL CHECK(hours >= 0),
		start_time REAL,
		end_time   REAL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_commitments_worker_day ON commitments(worker_id, day)`,
	`CREATE INDEX IF NOT EXISTS idx_commitments_task ON commitments(task_id)`,

	// Commitments carry their owner's kind so capacity reads need no join.
	`ALTER TABLE commitments ADD COLUMN kind TEXT NOT NULL DEFAULT 'TASK' CHECK(kind IN ('TASK','BLOCK'))`,

	// Deadline time-of-day only counts for tasks created in timestamp mode.
	`ALTER TABLE tasks ADD COLUMN timestamp_aware INTEGER NOT NULL DEFAULT 0`,
}

// migrateBackfillCommitmentKind copies the owning task's kind onto
// commitments written before the kind column existed. Idempotent.
func migrateBackfillCommitmentKind(db *sql.DB) error {
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `UPDATE commitments SET kind = (
			SELECT t.kind FROM tasks t WHERE t.id = commitments.task_id
		)
		WHERE kind != (SELECT t.kind FROM tasks t WHERE t.id = commitments.task_id)`)
	if err != nil {
		return fmt.Errorf("updating commitments: %w", err)
	}
	return nil
}
