package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timefiles/timefiles/internal/types"
)

func ev(taskID string, kind types.EventKind, at int64) types.TimeEvent {
	return types.TimeEvent{TaskID: taskID, Kind: kind, At: at}
}

func TestComputeSingleActiveContext(t *testing.T) {
	// spec.md scenario S1: start(A)@100, pause(A)@160, start(B)@160.
	events := []types.TimeEvent{
		ev("A", types.EventStart, 100),
		ev("A", types.EventPause, 160),
		ev("B", types.EventStart, 160),
	}
	totals := compute(events, map[string]*string{"A": nil, "B": nil}, Window{T0: 0}, 200)

	assert.Equal(t, int64(60), totals.Exclusive["A"])
	assert.Equal(t, int64(40), totals.Exclusive["B"])
}

func TestComputeClipsToWindow(t *testing.T) {
	events := []types.TimeEvent{
		ev("A", types.EventStart, 50),
		ev("A", types.EventStop, 150),
	}
	totals := compute(events, map[string]*string{"A": nil}, Window{T0: 100}, 200)
	assert.Equal(t, int64(50), totals.Exclusive["A"])
}

func TestComputeOpenIntervalClosesAtNow(t *testing.T) {
	events := []types.TimeEvent{
		ev("A", types.EventStart, 0),
	}
	totals := compute(events, map[string]*string{"A": nil}, Window{T0: 0}, 30)
	assert.Equal(t, int64(30), totals.Exclusive["A"])
}

func TestRollUpInclusiveIsExclusivePlusDescendants(t *testing.T) {
	parent := "root"
	parentMap := map[string]*string{
		"root":  nil,
		"child": &parent,
	}
	events := []types.TimeEvent{
		ev("root", types.EventStart, 0),
		ev("root", types.EventPause, 10),
		ev("child", types.EventStart, 10),
		ev("child", types.EventStop, 25),
	}
	totals := compute(events, parentMap, Window{T0: 0}, 25)

	assert.Equal(t, int64(10), totals.Exclusive["root"])
	assert.Equal(t, int64(15), totals.Exclusive["child"])
	assert.Equal(t, int64(25), totals.Inclusive["root"])
	assert.Equal(t, int64(15), totals.Inclusive["child"])
}

func TestRollUpThreeLevelsDeep(t *testing.T) {
	grandparent := "gp"
	parent := "p"
	parentMap := map[string]*string{
		"gp": nil,
		"p":  &grandparent,
		"c":  &parent,
	}
	exclusive := map[string]int64{"gp": 10, "p": 20, "c": 30}
	inclusive := rollUp(parentMap, exclusive)

	assert.Equal(t, int64(60), inclusive["gp"])
	assert.Equal(t, int64(50), inclusive["p"])
	assert.Equal(t, int64(30), inclusive["c"])
}
