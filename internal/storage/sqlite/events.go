package sqlite

import (
	"context"

	"github.com/timefiles/timefiles/internal/eventlog"
	"github.com/timefiles/timefiles/internal/types"
)

// AppendEvents inserts each record in order and returns the sequence
// numbers the store assigned. This is the only legal way to change a
// task's running state, parent, or tag membership; callers mirror the
// effect onto the tasks/task_tags rows in the same transaction.
func AppendEvents(ctx context.Context, q Querier, recs []eventlog.Record) ([]int64, error) {
	seqs := make([]int64, 0, len(recs))
	for _, r := range recs {
		res, err := q.ExecContext(ctx, `
			INSERT INTO time_events (task_id, kind, at, payload) VALUES (?, ?, ?, ?)
		`, r.TaskID, string(r.Kind), r.At, r.Payload)
		if err != nil {
			return nil, wrapDBError("append event", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return nil, wrapDBError("read event sequence", err)
		}
		seqs = append(seqs, seq)
	}
	return seqs, nil
}

// AllEventsInOrder streams the entire event log in sequence order, the
// replay aggregator's sole input.
func AllEventsInOrder(ctx context.Context, q Querier) ([]types.TimeEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT sequence, task_id, kind, at, payload FROM time_events ORDER BY sequence ASC
	`)
	if err != nil {
		return nil, wrapDBError("stream events", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.TimeEvent
	for rows.Next() {
		var e types.TimeEvent
		var kind string
		if err := rows.Scan(&e.Sequence, &e.TaskID, &kind, &e.At, &e.Payload); err != nil {
			return nil, wrapDBError("scan event", err)
		}
		e.Kind = types.EventKind(kind)
		out = append(out, e)
	}
	return out, wrapDBError("iterate events", rows.Err())
}

// EventsForTaskInOrder streams one task's events in sequence order, used
// by the rest advisor to compute focus blocks.
func EventsForTaskInOrder(ctx context.Context, q Querier, taskID string) ([]types.TimeEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT sequence, task_id, kind, at, payload FROM time_events
		WHERE task_id = ? ORDER BY sequence ASC
	`, taskID)
	if err != nil {
		return nil, wrapDBError("stream task events", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.TimeEvent
	for rows.Next() {
		var e types.TimeEvent
		var kind string
		if err := rows.Scan(&e.Sequence, &e.TaskID, &kind, &e.At, &e.Payload); err != nil {
			return nil, wrapDBError("scan task event", err)
		}
		e.Kind = types.EventKind(kind)
		out = append(out, e)
	}
	return out, wrapDBError("iterate task events", rows.Err())
}

// StartResumeEventsInOrder streams every start/resume event across all
// tasks in sequence order — the rest advisor's switch-detection input.
func StartResumeEventsInOrder(ctx context.Context, q Querier) ([]types.TimeEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT sequence, task_id, kind, at, payload FROM time_events
		WHERE kind IN ('start','resume') ORDER BY sequence ASC
	`)
	if err != nil {
		return nil, wrapDBError("stream start/resume events", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.TimeEvent
	for rows.Next() {
		var e types.TimeEvent
		var kind string
		if err := rows.Scan(&e.Sequence, &e.TaskID, &kind, &e.At, &e.Payload); err != nil {
			return nil, wrapDBError("scan start/resume event", err)
		}
		e.Kind = types.EventKind(kind)
		out = append(out, e)
	}
	return out, wrapDBError("iterate start/resume events", rows.Err())
}
