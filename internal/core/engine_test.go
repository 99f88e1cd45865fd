package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timefiles/timefiles/internal/config"
	"github.com/timefiles/timefiles/internal/core"
	"github.com/timefiles/timefiles/internal/restadvisor"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/timing"
	"github.com/timefiles/timefiles/internal/types"
)

// stepClock advances through a fixed sequence of timestamps, one per call,
// holding at the last entry once exhausted — lets a test pin exactly which
// "now" each sequential engine command stamps its events with.
type stepClock struct {
	times []int64
	i     int
}

func (c *stepClock) Now() int64 {
	t := c.times[c.i]
	if c.i < len(c.times)-1 {
		c.i++
	}
	return t
}

func newEngine(t *testing.T, clock timing.Clock) *core.Engine {
	t.Helper()
	return newEngineWithConfig(t, clock, nil)
}

func newEngineWithConfig(t *testing.T, clock timing.Clock, cfg *config.Config) *core.Engine {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return core.New(store, clock, core.NewNotifier(), cfg)
}

func TestEngineStartPauseResumeStopLifecycle(t *testing.T) {
	e := newEngine(t, timing.FixedClock(0))
	ctx := context.Background()

	id, err := e.CreateTask(ctx, "write report", nil)
	require.NoError(t, err)

	require.NoError(t, e.StartTask(ctx, id))
	snap, err := e.GetOverview(ctx, types.RangeAll)
	require.NoError(t, err)
	require.NotNil(t, snap.ActiveTaskID)
	assert.Equal(t, id, *snap.ActiveTaskID)

	require.NoError(t, e.PauseTask(ctx, id))
	require.NoError(t, e.ResumeTask(ctx, id))
	require.NoError(t, e.StopTask(ctx, id))

	snap, err = e.GetOverview(ctx, types.RangeAll)
	require.NoError(t, err)
	assert.Nil(t, snap.ActiveTaskID)
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	e := newEngine(t, timing.FixedClock(0))
	_, err := e.CreateTask(context.Background(), "  ", nil)
	assert.Equal(t, core.KindInvalidInput, core.KindOf(err))
}

func TestReparentCycleSurfacesAsCoreError(t *testing.T) {
	e := newEngine(t, timing.FixedClock(0))
	ctx := context.Background()

	a, err := e.CreateTask(ctx, "a", nil)
	require.NoError(t, err)

	err = e.ReparentTask(ctx, a, &a)
	assert.Equal(t, core.KindCycleDetected, core.KindOf(err))
}

func TestStopWithParentTriggersRestAdvisor(t *testing.T) {
	e := newEngine(t, timing.FixedClock(0))
	ctx := context.Background()

	parent, err := e.CreateTask(ctx, "parent", nil)
	require.NoError(t, err)
	require.NoError(t, e.StartTask(ctx, parent))

	child, err := e.InsertSubtaskAndStart(ctx, parent, "child")
	require.NoError(t, err)

	require.NoError(t, e.StopTask(ctx, child))

	snap, err := e.GetOverview(ctx, types.RangeAll)
	require.NoError(t, err)
	require.NotNil(t, snap.RestSuggestion)
	assert.Equal(t, types.TriggerSubtaskEnd, snap.RestSuggestion.TriggerType)
}

func TestRespondRestSuggestionUnknownIDIsNotFound(t *testing.T) {
	e := newEngine(t, timing.FixedClock(0))
	err := e.RespondRestSuggestion(context.Background(), "nope", true)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

// TestConfiguredSwitchWindowSecondsChangesRestAdvisorOutcome pins a
// configured Config's SwitchWindowSeconds end-to-end through Engine into
// the rest advisor: six rapid task switches read as >=5 switches (firing
// R4) under the default 1800s window, but as only 2 switches (firing R6
// instead) once a config narrows the window to 250s — proving the loaded
// config, not just the compiled-in default, drives the outcome.
func TestConfiguredSwitchWindowSecondsChangesRestAdvisorOutcome(t *testing.T) {
	runSwitchSequence := func(cfg *config.Config) *types.RestSuggestion {
		clock := &stepClock{times: []int64{0, 0, 0, 0, 0, 0, 0, 200, 400, 600, 800, 1000}}
		e := newEngineWithConfig(t, clock, cfg)
		ctx := context.Background()

		ids := make([]string, 6)
		for i, title := range []string{"a", "b", "c", "d", "e", "f"} {
			id, err := e.CreateTask(ctx, title, nil)
			require.NoError(t, err)
			ids[i] = id
		}
		for _, id := range ids {
			require.NoError(t, e.StartTask(ctx, id))
		}

		snap, err := e.GetOverview(ctx, types.RangeAll)
		require.NoError(t, err)
		return snap.RestSuggestion
	}

	withDefault := runSwitchSequence(nil)
	require.NotNil(t, withDefault)
	assert.Equal(t, []string{"R4"}, withDefault.Reasons)
	assert.Equal(t, 8, withDefault.SuggestedMins)

	withNarrowWindow := runSwitchSequence(&config.Config{
		PauseMergeSeconds:   restadvisor.DefaultPauseMergeSeconds,
		SwitchWindowSeconds: 250,
	})
	require.NotNil(t, withNarrowWindow)
	assert.Equal(t, []string{"R6"}, withNarrowWindow.Reasons)
	assert.Equal(t, 0, withNarrowWindow.SuggestedMins)
}

func TestPing(t *testing.T) {
	e := newEngine(t, timing.FixedClock(0))
	pong, err := e.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)
}
