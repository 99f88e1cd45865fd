package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/timefiles/timefiles/internal/eventlog"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/types"
)

// NewID generates an opaque task/suggestion id.
func NewID() string { return uuid.NewString() }

// CreateTask validates and inserts a new idle task. It never touches the
// event log — creation is not a timing event.
func CreateTask(ctx context.Context, q sqlite.Querier, title string, parentID *string, now int64) (*types.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}

	if parentID != nil {
		parent, err := sqlite.GetTask(ctx, q, *parentID)
		if err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent %s", ErrNotFound, *parentID)
			}
			return nil, err
		}
		if parent.Archived() {
			return nil, fmt.Errorf("%w: parent %s", ErrArchived, *parentID)
		}
	}

	t := &types.Task{
		ID:        NewID(),
		Title:     title,
		ParentID:  parentID,
		Status:    types.TaskIdle,
		CreatedAt: now,
	}
	if err := sqlite.InsertTask(ctx, q, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RenameTask sets a task's title. Setting the same title is a no-op that
// still succeeds (spec.md §4.G).
func RenameTask(ctx context.Context, q sqlite.Querier, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	t, err := requireTask(ctx, q, id)
	if err != nil {
		return err
	}
	if t.Title == title {
		return nil
	}
	return sqlite.SetTaskTitle(ctx, q, id, title)
}

// ReparentTask validates and applies a reparent, appending the compensating
// reparent event. newParentID == nil moves the task to the root.
func ReparentTask(ctx context.Context, q sqlite.Querier, id string, newParentID *string, now int64) error {
	t, err := requireTask(ctx, q, id)
	if err != nil {
		return err
	}

	if newParentID != nil {
		if *newParentID == id {
			return fmt.Errorf("%w: %s cannot be its own parent", ErrCycleDetected, id)
		}
		newParent, err := requireTask(ctx, q, *newParentID)
		if err != nil {
			return err
		}
		if newParent.Archived() {
			return fmt.Errorf("%w: parent %s", ErrArchived, *newParentID)
		}
		isDescendant, err := sqlite.IsDescendantOf(ctx, q, *newParentID, id)
		if err != nil {
			return err
		}
		if isDescendant {
			return fmt.Errorf("%w: %s is a descendant of %s", ErrCycleDetected, *newParentID, id)
		}
	}

	samePointer := (t.ParentID == nil && newParentID == nil) ||
		(t.ParentID != nil && newParentID != nil && *t.ParentID == *newParentID)
	if samePointer {
		return nil
	}

	rec, err := eventlog.Reparent(id, now, t.ParentID, newParentID)
	if err != nil {
		return err
	}
	if _, err := sqlite.AppendEvents(ctx, q, []eventlog.Record{rec}); err != nil {
		return err
	}
	return sqlite.SetTaskParent(ctx, q, id, newParentID)
}

// ArchiveResult reports what ArchiveTask had to stop on its way down.
type ArchiveResult struct {
	ArchivedIDs []string
	StoppedIDs  []string
}

// ArchiveTask soft-deletes id and its entire subtree. Any member that is
// running or paused is force-stopped first (its own stop event appended)
// so exclusive time stops accruing to an archived task.
func ArchiveTask(ctx context.Context, q sqlite.Querier, id string, now int64) (*ArchiveResult, error) {
	root, err := requireTask(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if root.Archived() {
		return &ArchiveResult{}, nil
	}

	descendants, err := sqlite.Descendants(ctx, q, id)
	if err != nil {
		return nil, err
	}
	subtree := append([]string{id}, descendants...)

	result := &ArchiveResult{}
	for _, member := range subtree {
		t, err := sqlite.GetTask(ctx, q, member)
		if err != nil {
			return nil, err
		}
		if t.Archived() {
			continue
		}
		if t.Status == types.TaskRunning || t.Status == types.TaskPaused {
			rec := eventlog.Plain(member, types.EventStop, now)
			if _, err := sqlite.AppendEvents(ctx, q, []eventlog.Record{rec}); err != nil {
				return nil, err
			}
			if err := sqlite.SetTaskStatus(ctx, q, member, types.TaskStopped); err != nil {
				return nil, err
			}
			result.StoppedIDs = append(result.StoppedIDs, member)
		}
		result.ArchivedIDs = append(result.ArchivedIDs, member)
	}

	if err := sqlite.ArchiveTasks(ctx, q, result.ArchivedIDs, now); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTasks soft-deletes (default) or hard-deletes (hard=true) the
// given ids. Hard delete requires every member already be archived.
func DeleteTasks(ctx context.Context, q sqlite.Querier, ids []string, hard bool, now int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no task ids given", ErrInvalidInput)
	}
	for _, id := range ids {
		t, err := requireTask(ctx, q, id)
		if err != nil {
			return err
		}
		if hard && !t.Archived() {
			return fmt.Errorf("%w: %s must be archived before hard delete", ErrInvalidInput, id)
		}
	}
	if hard {
		return sqlite.HardDeleteTasks(ctx, q, ids)
	}
	return sqlite.ArchiveTasks(ctx, q, ids, now)
}

// AddTag idempotently associates tagName with taskID, creating the tag if
// absent. Emits tag_add only when the association actually changes.
func AddTag(ctx context.Context, q sqlite.Querier, taskID, tagName string, now int64) error {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return fmt.Errorf("%w: tag name must not be empty", ErrInvalidInput)
	}
	if _, err := requireTask(ctx, q, taskID); err != nil {
		return err
	}

	tagID, err := sqlite.GetOrCreateTag(ctx, q, tagName, now)
	if err != nil {
		return err
	}
	has, err := sqlite.TaskHasTag(ctx, q, taskID, tagID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	if err := sqlite.AddTaskTag(ctx, q, taskID, tagID); err != nil {
		return err
	}
	rec, err := eventlog.Tag(taskID, types.EventTagAdd, now, tagName)
	if err != nil {
		return err
	}
	_, err = sqlite.AppendEvents(ctx, q, []eventlog.Record{rec})
	return err
}

// RemoveTag idempotently removes the tagName association from taskID.
func RemoveTag(ctx context.Context, q sqlite.Querier, taskID, tagName string, now int64) error {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return fmt.Errorf("%w: tag name must not be empty", ErrInvalidInput)
	}
	if _, err := requireTask(ctx, q, taskID); err != nil {
		return err
	}

	tagID, err := sqlite.GetOrCreateTag(ctx, q, tagName, now)
	if err != nil {
		return err
	}
	has, err := sqlite.TaskHasTag(ctx, q, taskID, tagID)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}

	if err := sqlite.RemoveTaskTag(ctx, q, taskID, tagID); err != nil {
		return err
	}
	rec, err := eventlog.Tag(taskID, types.EventTagRemove, now, tagName)
	if err != nil {
		return err
	}
	_, err = sqlite.AppendEvents(ctx, q, []eventlog.Record{rec})
	return err
}

func requireTask(ctx context.Context, q sqlite.Querier, id string) (*types.Task, error) {
	t, err := sqlite.GetTask(ctx, q, id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		return nil, err
	}
	return t, nil
}
