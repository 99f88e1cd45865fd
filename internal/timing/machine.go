package timing

import (
	"context"
	"errors"
	"fmt"

	"github.com/timefiles/timefiles/internal/eventlog"
	"github.com/timefiles/timefiles/internal/repository"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/types"
)

// Machine compiles user intents into event sequences against one
// transactional handle, enforcing that at most one task is running.
type Machine struct {
	q sqlite.Querier
}

// New binds a Machine to the transaction the current command is running
// inside. A Machine must not outlive that transaction.
func New(q sqlite.Querier) *Machine { return &Machine{q: q} }

func (m *Machine) requireTask(ctx context.Context, id string) (*types.Task, error) {
	t, err := sqlite.GetTask(ctx, m.q, id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func (m *Machine) appendAndSetStatus(ctx context.Context, id string, kind types.EventKind, at int64, status types.TaskStatus) error {
	if _, err := sqlite.AppendEvents(ctx, m.q, []eventlog.Record{eventlog.Plain(id, kind, at)}); err != nil {
		return err
	}
	return sqlite.SetTaskStatus(ctx, m.q, id, status)
}

// Start begins (or restarts a stopped) task. If another task is running
// it is paused first; the two events share `at` and appear in that order.
func (m *Machine) Start(ctx context.Context, id string, at int64) error {
	t, err := m.requireTask(ctx, id)
	if err != nil {
		return err
	}
	if t.Archived() {
		return fmt.Errorf("%w: task %s", ErrArchived, id)
	}
	if t.Status != types.TaskIdle && t.Status != types.TaskStopped {
		return fmt.Errorf("%w: cannot start task %s from status %s", ErrInvalidState, id, t.Status)
	}

	if running, err := sqlite.RunningTaskID(ctx, m.q); err != nil {
		return err
	} else if running != nil && *running != id {
		if err := m.appendAndSetStatus(ctx, *running, types.EventPause, at, types.TaskPaused); err != nil {
			return err
		}
	}

	return m.appendAndSetStatus(ctx, id, types.EventStart, at, types.TaskRunning)
}

// Pause suspends the running task.
func (m *Machine) Pause(ctx context.Context, id string, at int64) error {
	t, err := m.requireTask(ctx, id)
	if err != nil {
		return err
	}
	if t.Status != types.TaskRunning {
		return fmt.Errorf("%w: cannot pause task %s from status %s", ErrInvalidState, id, t.Status)
	}
	return m.appendAndSetStatus(ctx, id, types.EventPause, at, types.TaskPaused)
}

// Resume continues a paused task, pausing whatever else is running first.
func (m *Machine) Resume(ctx context.Context, id string, at int64) error {
	t, err := m.requireTask(ctx, id)
	if err != nil {
		return err
	}
	if t.Status != types.TaskPaused {
		return fmt.Errorf("%w: cannot resume task %s from status %s", ErrInvalidState, id, t.Status)
	}

	if running, err := sqlite.RunningTaskID(ctx, m.q); err != nil {
		return err
	} else if running != nil && *running != id {
		if err := m.appendAndSetStatus(ctx, *running, types.EventPause, at, types.TaskPaused); err != nil {
			return err
		}
	}

	return m.appendAndSetStatus(ctx, id, types.EventResume, at, types.TaskRunning)
}

// Stop finalizes the current session of a running or paused task. If the
// task's parent is paused and nothing else is running afterward, the
// parent is auto-resumed (the insert_subtask_and_start companion rule).
func (m *Machine) Stop(ctx context.Context, id string, at int64) error {
	t, err := m.requireTask(ctx, id)
	if err != nil {
		return err
	}
	if t.Status != types.TaskRunning && t.Status != types.TaskPaused {
		return fmt.Errorf("%w: cannot stop task %s from status %s", ErrInvalidState, id, t.Status)
	}

	if err := m.appendAndSetStatus(ctx, id, types.EventStop, at, types.TaskStopped); err != nil {
		return err
	}

	if t.ParentID == nil {
		return nil
	}
	parent, err := m.requireTask(ctx, *t.ParentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if parent.Status != types.TaskPaused {
		return nil
	}
	running, err := sqlite.RunningTaskID(ctx, m.q)
	if err != nil {
		return err
	}
	if running != nil {
		return nil
	}
	return m.appendAndSetStatus(ctx, parent.ID, types.EventResume, at, types.TaskRunning)
}

// InsertSubtaskAndStart requires the parent to be running; it creates a
// new idle child under it, pauses the parent, and starts the child, all
// inside the caller's transaction.
func (m *Machine) InsertSubtaskAndStart(ctx context.Context, parentID, title string, at int64) (*types.Task, error) {
	parent, err := m.requireTask(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Status != types.TaskRunning {
		return nil, fmt.Errorf("%w: parent %s is not running", ErrInvalidState, parentID)
	}

	child, err := repository.CreateTask(ctx, m.q, title, &parentID, at)
	if err != nil {
		return nil, mapRepositoryErr(err)
	}

	if err := m.appendAndSetStatus(ctx, parentID, types.EventPause, at, types.TaskPaused); err != nil {
		return nil, err
	}
	if err := m.appendAndSetStatus(ctx, child.ID, types.EventStart, at, types.TaskRunning); err != nil {
		return nil, err
	}
	child.Status = types.TaskRunning
	return child, nil
}

// mapRepositoryErr translates repository sentinel errors into this
// package's own so callers only ever branch on one error vocabulary.
func mapRepositoryErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrArchived):
		return fmt.Errorf("%w: %v", ErrArchived, err)
	default:
		return err
	}
}
