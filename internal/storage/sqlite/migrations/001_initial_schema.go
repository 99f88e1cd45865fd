package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// migrate001InitialSchema creates the full logical schema of spec.md
// §4.A in one shot: tasks, tags, task_tags, time_events,
// rest_suggestions, and the required indexes.
func migrate001InitialSchema(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE tasks (
			id TEXT PRIMARY KEY,
			parent_id TEXT REFERENCES tasks(id),
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			archived_at INTEGER
		)`,
		`CREATE INDEX idx_tasks_parent_id ON tasks(parent_id)`,

		`CREATE TABLE tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE task_tags (
			task_id TEXT NOT NULL REFERENCES tasks(id),
			tag_id INTEGER NOT NULL REFERENCES tags(id),
			PRIMARY KEY (task_id, tag_id)
		)`,

		`CREATE TABLE time_events (
			sequence INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			at INTEGER NOT NULL,
			payload TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX idx_time_events_task_sequence ON time_events(task_id, sequence)`,
		`CREATE INDEX idx_time_events_at ON time_events(at)`,

		`CREATE TABLE rest_suggestions (
			id TEXT PRIMARY KEY,
			trigger_type TEXT NOT NULL,
			task_id TEXT,
			focus_seconds INTEGER NOT NULL,
			switch_count_30m INTEGER NOT NULL,
			deviation_ratio REAL NOT NULL,
			suggested_minutes INTEGER NOT NULL,
			reasons TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX idx_rest_suggestions_status ON rest_suggestions(status)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
