package sqlite

import (
	"context"
	"database/sql"
)

// GetOrCreateTag returns the id of the tag named name, creating it (with
// the given createdAt) if it does not already exist.
func GetOrCreateTag(ctx context.Context, q Querier, name string, createdAt int64) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, wrapDBError("find tag", err)
	}

	res, err := q.ExecContext(ctx, `INSERT INTO tags (name, created_at) VALUES (?, ?)`, name, createdAt)
	if err != nil {
		return 0, wrapDBError("create tag", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, wrapDBError("read new tag id", err)
	}
	return id, nil
}

// TaskHasTag reports whether taskID is already associated with tagID.
func TaskHasTag(ctx context.Context, q Querier, taskID string, tagID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM task_tags WHERE task_id = ? AND tag_id = ?
	`, taskID, tagID).Scan(&n)
	if err != nil {
		return false, wrapDBError("check task tag", err)
	}
	return n > 0, nil
}

// AddTaskTag inserts the association row. Idempotent: inserting an
// already-present pair is a silent no-op.
func AddTaskTag(ctx context.Context, q Querier, taskID string, tagID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)
	`, taskID, tagID)
	return wrapDBError("add task tag", err)
}

// RemoveTaskTag deletes the association row. Idempotent: removing an
// absent pair is a silent no-op.
func RemoveTaskTag(ctx context.Context, q Querier, taskID string, tagID int64) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?
	`, taskID, tagID)
	return wrapDBError("remove task tag", err)
}

// TagNamesForTask returns the tag names currently attached to taskID, sorted.
func TagNamesForTask(ctx context.Context, q Querier, taskID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tags.name FROM task_tags
		JOIN tags ON tags.id = task_tags.tag_id
		WHERE task_tags.task_id = ?
		ORDER BY tags.name ASC
	`, taskID)
	if err != nil {
		return nil, wrapDBError("list task tags", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapDBError("scan task tag", err)
		}
		out = append(out, name)
	}
	return out, wrapDBError("iterate task tags", rows.Err())
}

// TagNamesByTask returns tag names for every task in one query, keyed by
// task id, for building an OverviewSnapshot without N+1 lookups.
func TagNamesByTask(ctx context.Context, q Querier) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT task_tags.task_id, tags.name FROM task_tags
		JOIN tags ON tags.id = task_tags.tag_id
		ORDER BY task_tags.task_id ASC, tags.name ASC
	`)
	if err != nil {
		return nil, wrapDBError("list all task tags", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]string)
	for rows.Next() {
		var taskID, name string
		if err := rows.Scan(&taskID, &name); err != nil {
			return nil, wrapDBError("scan all task tags", err)
		}
		out[taskID] = append(out[taskID], name)
	}
	return out, wrapDBError("iterate all task tags", rows.Err())
}
