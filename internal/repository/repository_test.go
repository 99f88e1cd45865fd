package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timefiles/timefiles/internal/repository"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/types"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateTaskRejectsBlankTitle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, err := repository.CreateTask(ctx, store.DB(), "   ", nil, 0)
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestCreateTaskRejectsArchivedParent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()

	parent, err := repository.CreateTask(ctx, db, "parent", nil, 0)
	require.NoError(t, err)
	_, err = repository.ArchiveTask(ctx, db, parent.ID, 10)
	require.NoError(t, err)

	_, err = repository.CreateTask(ctx, db, "child", &parent.ID, 20)
	assert.ErrorIs(t, err, repository.ErrArchived)
}

func TestReparentDetectsSelfCycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)

	err = repository.ReparentTask(ctx, db, a.ID, &a.ID, 10)
	assert.ErrorIs(t, err, repository.ErrCycleDetected)
}

func TestReparentDetectsDescendantCycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)
	b, err := repository.CreateTask(ctx, db, "b", &a.ID, 0)
	require.NoError(t, err)
	c, err := repository.CreateTask(ctx, db, "c", &b.ID, 0)
	require.NoError(t, err)

	// a is an ancestor of c; reparenting a under c would create a cycle.
	err = repository.ReparentTask(ctx, db, a.ID, &c.ID, 10)
	assert.ErrorIs(t, err, repository.ErrCycleDetected)
}

func TestReparentSamePointerIsNoop(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)

	err = repository.ReparentTask(ctx, db, a.ID, nil, 10)
	assert.NoError(t, err)
}

func TestArchiveTaskCascadesAndStopsRunningMembers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)
	b, err := repository.CreateTask(ctx, db, "b", &a.ID, 0)
	require.NoError(t, err)
	require.NoError(t, sqlite.SetTaskStatus(ctx, db, b.ID, types.TaskRunning))

	result, err := repository.ArchiveTask(ctx, db, a.ID, 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, result.ArchivedIDs)
	assert.Equal(t, []string{b.ID}, result.StoppedIDs)

	reloaded, err := sqlite.GetTask(ctx, db, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStopped, reloaded.Status)
}

func TestDeleteTasksHardRequiresArchived(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)

	err = repository.DeleteTasks(ctx, db, []string{a.ID}, true, 10)
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestAddTagIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)

	require.NoError(t, repository.AddTag(ctx, db, a.ID, "focus", 10))
	require.NoError(t, repository.AddTag(ctx, db, a.ID, "focus", 20))

	names, err := sqlite.TagNamesForTask(ctx, db, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"focus"}, names)
}
