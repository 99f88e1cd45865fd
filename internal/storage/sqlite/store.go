// Package sqlite is the embedded relational store for TimeFiles. It owns
// the only persistent state in the process: the tasks/tags/events tables
// and the schema_version row that gates migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/timefiles/timefiles/internal/storage/sqlite/migrations"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, letting repository
// functions run identically inside a write transaction or against a
// plain read-only connection.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the process-wide embedded store. A single *sql.DB is shared;
// MaxOpenConns(1) gives the driver-level serialization backing the
// write mutex that internal/core holds around each command.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed,
// applies any missing forward migrations, and reconciles the tasks
// mirror against the event log tail before returning.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty storage path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create storage dir %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate %q: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.reconcileTasksMirror(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: reconcile tasks mirror: %w", err)
	}
	return s, nil
}

// DB exposes the underlying *sql.DB for read-only commands that must not
// take the write mutex (get_overview, ping).
func (s *Store) DB() *sql.DB { return s.db }

// BeginTx starts the single write transaction a mutating command runs
// inside. Callers must Commit or the deferred Rollback undoes everything.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return tx, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// reconcileTasksMirror verifies tasks.status matches the implied status
// of each task's latest event; divergence (only possible if a crash hit
// between append and commit of the same transaction, which should never
// happen, or a manually edited database) rewrites tasks.status for each
// diverging task. parent_id and tag rows are not checked.
func (s *Store) reconcileTasksMirror(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, status FROM tasks WHERE archived_at IS NULL`)
	if err != nil {
		return fmt.Errorf("list tasks for reconciliation: %w", err)
	}
	type row struct {
		id     string
		status string
	}
	var current []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.status); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan task for reconciliation: %w", err)
		}
		current = append(current, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, r := range current {
		implied, err := s.impliedStatus(ctx, r.id)
		if err != nil {
			return err
		}
		if implied == "" || implied == r.status {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, implied, r.id); err != nil {
			return fmt.Errorf("rebuild status mirror for %s: %w", r.id, err)
		}
	}
	return nil
}

// impliedStatus returns the status a task's latest timing event implies,
// or "" if the task has no timing events yet (leaves tasks.status alone).
func (s *Store) impliedStatus(ctx context.Context, taskID string) (string, error) {
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT kind FROM time_events
		WHERE task_id = ? AND kind IN ('start','pause','resume','stop')
		ORDER BY sequence DESC LIMIT 1
	`, taskID).Scan(&kind)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read latest timing event for %s: %w", taskID, err)
	}
	switch kind {
	case "start", "resume":
		return "running", nil
	case "pause":
		return "paused", nil
	case "stop":
		return "stopped", nil
	}
	return "", nil
}
