package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/timefiles/timefiles/internal/types"
)

// InsertTask persists a brand new task row.
func InsertTask(ctx context.Context, q Querier, t *types.Task) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO tasks (id, parent_id, title, status, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.ParentID, t.Title, string(t.Status), t.CreatedAt, t.ArchivedAt)
	return wrapDBError("insert task", err)
}

// GetTask loads a single task by id, including archived ones.
func GetTask(ctx context.Context, q Querier, id string) (*types.Task, error) {
	var t types.Task
	var status string
	err := q.QueryRowContext(ctx, `
		SELECT id, parent_id, title, status, created_at, archived_at
		FROM tasks WHERE id = ?
	`, id).Scan(&t.ID, &t.ParentID, &t.Title, &status, &t.CreatedAt, &t.ArchivedAt)
	if err != nil {
		return nil, wrapDBError("get task", err)
	}
	t.Status = types.TaskStatus(status)
	return &t, nil
}

// TaskExists reports whether id names a task row at all (archived or not).
func TaskExists(ctx context.Context, q Querier, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, wrapDBError("check task exists", err)
	}
	return n > 0, nil
}

// SetTaskTitle updates a task's title in place.
func SetTaskTitle(ctx context.Context, q Querier, id, title string) error {
	_, err := q.ExecContext(ctx, `UPDATE tasks SET title = ? WHERE id = ?`, title, id)
	return wrapDBError("rename task", err)
}

// SetTaskStatus updates a task's status mirror in place.
func SetTaskStatus(ctx context.Context, q Querier, id string, status types.TaskStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, string(status), id)
	return wrapDBError("set task status", err)
}

// SetTaskParent updates a task's parent_id mirror in place.
func SetTaskParent(ctx context.Context, q Querier, id string, parentID *string) error {
	_, err := q.ExecContext(ctx, `UPDATE tasks SET parent_id = ? WHERE id = ?`, parentID, id)
	return wrapDBError("reparent task", err)
}

// ArchiveTasks sets archived_at for every id in the slice that is not
// already archived.
func ArchiveTasks(ctx context.Context, q Querier, ids []string, at int64) error {
	for _, id := range ids {
		if _, err := q.ExecContext(ctx, `
			UPDATE tasks SET archived_at = ? WHERE id = ? AND archived_at IS NULL
		`, at, id); err != nil {
			return wrapDBError("archive task", err)
		}
	}
	return nil
}

// HardDeleteTasks removes tasks, task_tags, and time_events rows for the
// given ids. Tag rows themselves are retained per spec.
func HardDeleteTasks(ctx context.Context, q Querier, ids []string) error {
	for _, id := range ids {
		if _, err := q.ExecContext(ctx, `DELETE FROM time_events WHERE task_id = ?`, id); err != nil {
			return wrapDBError("hard delete events", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, id); err != nil {
			return wrapDBError("hard delete task_tags", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return wrapDBError("hard delete task", err)
		}
	}
	return nil
}

// Children returns the immediate (non-archived-filtered) children of id.
func Children(ctx context.Context, q Querier, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM tasks WHERE parent_id = ?`, id)
	if err != nil {
		return nil, wrapDBError("list children", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return nil, wrapDBError("scan child", err)
		}
		out = append(out, cid)
	}
	return out, wrapDBError("iterate children", rows.Err())
}

// Descendants walks downward from id (exclusive) and returns every
// descendant, breadth-first. Used by archive_task to cascade soft-delete.
func Descendants(ctx context.Context, q Querier, id string) ([]string, error) {
	var out []string
	frontier := []string{id}
	for len(frontier) > 0 {
		var next []string
		for _, cur := range frontier {
			kids, err := Children(ctx, q, cur)
			if err != nil {
				return nil, err
			}
			next = append(next, kids...)
		}
		out = append(out, next...)
		frontier = next
	}
	return out, nil
}

// IsDescendantOf walks upward from candidateParent toward the root,
// reporting whether id is encountered along the way. Used by reparent's
// cycle check: reparenting id under candidateParent is illegal if id is
// an ancestor of (or equal to) candidateParent.
func IsDescendantOf(ctx context.Context, q Querier, candidateParent, id string) (bool, error) {
	cur := candidateParent
	for {
		if cur == id {
			return true, nil
		}
		t, err := GetTask(ctx, q, cur)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		if t.ParentID == nil {
			return false, nil
		}
		cur = *t.ParentID
	}
}

// ListNonArchived returns every task that has not been soft-deleted.
func ListNonArchived(ctx context.Context, q Querier) ([]types.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, parent_id, title, status, created_at, archived_at
		FROM tasks WHERE archived_at IS NULL
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, wrapDBError("list non-archived tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Task
	for rows.Next() {
		var t types.Task
		var status string
		if err := rows.Scan(&t.ID, &t.ParentID, &t.Title, &status, &t.CreatedAt, &t.ArchivedAt); err != nil {
			return nil, wrapDBError("scan task", err)
		}
		t.Status = types.TaskStatus(status)
		out = append(out, t)
	}
	return out, wrapDBError("iterate tasks", rows.Err())
}

// RunningTaskID returns the id of the single running task, or nil if none.
func RunningTaskID(ctx context.Context, q Querier) (*string, error) {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM tasks WHERE status = ? LIMIT 1`, string(types.TaskRunning)).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError("find running task", err)
	}
	return &id, nil
}

// ParentMap returns the full id -> parent_id map for every task, archived
// or not,
// the snapshot the replay aggregator walks for inclusive roll-up.
func ParentMap(ctx context.Context, q Querier) (map[string]*string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, parent_id FROM tasks`)
	if err != nil {
		return nil, wrapDBError("load parent map", err)
	}
	defer func() { _ = rows.Close() }()

	m := make(map[string]*string)
	for rows.Next() {
		var id string
		var parent *string
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, wrapDBError("scan parent map row", err)
		}
		m[id] = parent
	}
	return m, wrapDBError("iterate parent map", rows.Err())
}
