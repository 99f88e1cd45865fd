// Package migrations is the compiled, forward-only schema history for
// the TimeFiles store. Each migration runs in its own transaction; the
// on-disk schema_version is bumped in that same transaction, so the two
// commit together.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one forward schema step. Run applies each version once;
// Apply's statements carry no IF NOT EXISTS guards, so running it again
// against an already-migrated schema fails.
type Migration struct {
	Version int
	Name    string
	Apply   func(ctx context.Context, tx *sql.Tx) error
}

// registry is the immutable, process-wide compiled migration list.
var registry = []Migration{
	{Version: 1, Name: "initial schema", Apply: migrate001InitialSchema},
}

// Run ensures meta exists, compares the on-disk schema_version to the
// compiled registry, and applies every missing migration in order, each
// inside its own transaction. A stored version newer than the highest
// compiled migration is a fatal initialization error.
func Run(ctx context.Context, db *sql.DB) error {
	if err := ensureMeta(ctx, db); err != nil {
		return err
	}

	current, err := readVersion(ctx, db)
	if err != nil {
		return err
	}

	highest := 0
	for _, m := range registry {
		if m.Version > highest {
			highest = m.Version
		}
	}
	if current > highest {
		return fmt.Errorf("schema_version %d is newer than this binary's highest known migration %d", current, highest)
	}

	for _, m := range registry {
		if m.Version <= current {
			continue
		}
		if err := applyOne(ctx, db, m); err != nil {
			return fmt.Errorf("migration %03d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func ensureMeta(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meta (schema_version INTEGER NOT NULL)`)
	if err != nil {
		return fmt.Errorf("ensure meta table: %w", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meta`).Scan(&count); err != nil {
		return fmt.Errorf("count meta rows: %w", err)
	}
	if count == 0 {
		if _, err := db.ExecContext(ctx, `INSERT INTO meta (schema_version) VALUES (0)`); err != nil {
			return fmt.Errorf("seed meta row: %w", err)
		}
	}
	return nil
}

func readVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, `SELECT schema_version FROM meta LIMIT 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return v, nil
}

func applyOne(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Apply(ctx, tx); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE meta SET schema_version = ?`, m.Version); err != nil {
		return fmt.Errorf("bump schema_version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
