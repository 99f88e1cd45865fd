package restadvisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timefiles/timefiles/internal/types"
)

func TestEvaluateRules(t *testing.T) {
	tests := []struct {
		name    string
		in      Inputs
		minutes int
		reasons []string
	}{
		{"long focus", Inputs{FocusSeconds: 6000}, 15, []string{"R1"}},
		{"medium focus", Inputs{FocusSeconds: 3500}, 8, []string{"R2"}},
		{"short focus", Inputs{FocusSeconds: 1000}, 3, []string{"R3"}},
		{"fragmented switching wins over short focus", Inputs{FocusSeconds: 1000, SwitchCount30m: 5}, 8, []string{"R3", "R4"}},
		{"overrun needs minimum duration", Inputs{FocusSeconds: 1200, DeviationRatio: 0.6}, 3, []string{"R3", "R5"}},
		{"overrun below minimum duration does not fire", Inputs{FocusSeconds: 1000, DeviationRatio: 0.9}, 3, []string{"R3"}},
		{"quick task suggests nothing", Inputs{FocusSeconds: 300, SwitchCount30m: 1}, 0, []string{"R6"}},
		{"quick task but fragmented does not fire R6", Inputs{FocusSeconds: 300, SwitchCount30m: 5}, 8, []string{"R4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.in)
			assert.Equal(t, tt.minutes, result.SuggestedMinutes)
			assert.Equal(t, tt.reasons, result.Reasons)
		})
	}
}

func TestSnapToDiscreteLevels(t *testing.T) {
	assert.Equal(t, 0, snap(-1))
	assert.Equal(t, 0, snap(0))
	assert.Equal(t, 0, snap(2))
	assert.Equal(t, 3, snap(3))
	assert.Equal(t, 3, snap(7))
	assert.Equal(t, 8, snap(8))
	assert.Equal(t, 15, snap(20))
}

func TestFocusBlocksMergesShortPauses(t *testing.T) {
	events := []types.TimeEvent{
		{TaskID: "A", Kind: types.EventStart, At: 0},
		{TaskID: "A", Kind: types.EventPause, At: 100},
		{TaskID: "A", Kind: types.EventResume, At: 150}, // 50s gap, merges
		{TaskID: "A", Kind: types.EventStop, At: 300},
	}
	blocks := focusBlocks(events, DefaultPauseMergeSeconds)
	assert.Len(t, blocks, 1)
	assert.Equal(t, int64(0), blocks[0].start)
	assert.Equal(t, int64(300), blocks[0].end)
}

func TestFocusBlocksSplitsLongPauses(t *testing.T) {
	events := []types.TimeEvent{
		{TaskID: "A", Kind: types.EventStart, At: 0},
		{TaskID: "A", Kind: types.EventPause, At: 100},
		{TaskID: "A", Kind: types.EventResume, At: 300}, // 200s gap, splits
		{TaskID: "A", Kind: types.EventStop, At: 400},
	}
	blocks := focusBlocks(events, DefaultPauseMergeSeconds)
	assert.Len(t, blocks, 2)
	assert.Equal(t, int64(100), blocks[0].end-blocks[0].start)
	assert.Equal(t, int64(100), blocks[1].end-blocks[1].start)
}

func TestFocusBlocksHonorsConfiguredPauseMergeSeconds(t *testing.T) {
	events := []types.TimeEvent{
		{TaskID: "A", Kind: types.EventStart, At: 0},
		{TaskID: "A", Kind: types.EventPause, At: 100},
		{TaskID: "A", Kind: types.EventResume, At: 300}, // 200s gap
		{TaskID: "A", Kind: types.EventStop, At: 400},
	}
	// Splits under the default 120s threshold...
	assert.Len(t, focusBlocks(events, DefaultPauseMergeSeconds), 2)
	// ...but merges once a config file raises the threshold past 200s.
	blocks := focusBlocks(events, 300)
	assert.Len(t, blocks, 1)
	assert.Equal(t, int64(0), blocks[0].start)
	assert.Equal(t, int64(400), blocks[0].end)
}

func TestSwitchCountCountsOnlyActualSwitchesInWindow(t *testing.T) {
	global := []types.TimeEvent{
		{TaskID: "A", Kind: types.EventStart, At: 0},
		{TaskID: "B", Kind: types.EventStart, At: 100},
		{TaskID: "B", Kind: types.EventResume, At: 150}, // same task, not a switch
		{TaskID: "A", Kind: types.EventStart, At: 200},
		{TaskID: "C", Kind: types.EventStart, At: 5000}, // outside window
	}
	count := switchCount(global, 50, 1000)
	assert.Equal(t, 2, count)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, int64(0), median(nil))
	assert.Equal(t, int64(5), median([]int64{5}))
	assert.Equal(t, int64(5), median([]int64{1, 9, 5}))
	assert.Equal(t, int64(5), median([]int64{1, 9, 4, 6}))
}
