package timing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timefiles/timefiles/internal/repository"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/timing"
	"github.com/timefiles/timefiles/internal/types"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStartPausesWhateverElseIsRunning(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()
	m := timing.New(db)

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)
	b, err := repository.CreateTask(ctx, db, "b", nil, 0)
	require.NoError(t, err)

	require.NoError(t, m.Start(ctx, a.ID, 100))
	require.NoError(t, m.Start(ctx, b.ID, 160))

	ta, err := sqlite.GetTask(ctx, db, a.ID)
	require.NoError(t, err)
	tb, err := sqlite.GetTask(ctx, db, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskPaused, ta.Status)
	assert.Equal(t, types.TaskRunning, tb.Status)

	running, err := sqlite.RunningTaskID(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.Equal(t, b.ID, *running)
}

func TestPauseRejectsNonRunningTask(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()
	m := timing.New(db)

	a, err := repository.CreateTask(ctx, db, "a", nil, 0)
	require.NoError(t, err)

	err = m.Pause(ctx, a.ID, 10)
	assert.ErrorIs(t, err, timing.ErrInvalidState)
}

func TestStopAutoResumesPausedParentWhenNothingElseRunning(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()
	m := timing.New(db)

	parent, err := repository.CreateTask(ctx, db, "parent", nil, 0)
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx, parent.ID, 0))

	child, err := m.InsertSubtaskAndStart(ctx, parent.ID, "child", 10)
	require.NoError(t, err)

	reloadedParent, err := sqlite.GetTask(ctx, db, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskPaused, reloadedParent.Status)

	require.NoError(t, m.Stop(ctx, child.ID, 40))

	reloadedParent, err = sqlite.GetTask(ctx, db, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskRunning, reloadedParent.Status)
}

func TestStopDoesNotAutoResumeIfAnotherTaskIsRunning(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()
	m := timing.New(db)

	parent, err := repository.CreateTask(ctx, db, "parent", nil, 0)
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx, parent.ID, 0))

	child, err := m.InsertSubtaskAndStart(ctx, parent.ID, "child", 10)
	require.NoError(t, err)

	other, err := repository.CreateTask(ctx, db, "other", nil, 0)
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx, other.ID, 20))

	require.NoError(t, m.Stop(ctx, child.ID, 40))

	reloadedParent, err := sqlite.GetTask(ctx, db, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskPaused, reloadedParent.Status, "parent stays paused since another task took over running")
}

func TestInsertSubtaskRequiresRunningParent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	db := store.DB()
	m := timing.New(db)

	parent, err := repository.CreateTask(ctx, db, "parent", nil, 0)
	require.NoError(t, err)

	_, err = m.InsertSubtaskAndStart(ctx, parent.ID, "child", 10)
	assert.ErrorIs(t, err, timing.ErrInvalidState)
}
