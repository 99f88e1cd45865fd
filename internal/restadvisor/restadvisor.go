// Package restadvisor implements the non-AI rule engine of spec.md §4.F:
// rules R1-R6 evaluated in order against a task's recent focus history to
// produce (or suppress) a rest suggestion.
package restadvisor

import (
	"context"
	"sort"

	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/types"
)

// DefaultPauseMergeSeconds is the pause-gap threshold, absent a configured
// override: gaps shorter than this count as the same focus block.
const DefaultPauseMergeSeconds = 120

// DefaultSwitchWindowSeconds is the lookback for switch_count_30m, absent
// a configured override.
const DefaultSwitchWindowSeconds = 1800

// suggestionLevels is the discrete set suggested_minutes snaps to.
var suggestionLevels = []int{0, 3, 8, 15}

// Tuning holds the operator-configurable knobs ComputeInputs evaluates
// against; it comes from internal/config so a user's config.yaml actually
// changes rest-advisor behavior instead of only the compiled-in defaults.
type Tuning struct {
	PauseMergeSeconds   int64
	SwitchWindowSeconds int64
}

// DefaultTuning is the Tuning used when no configuration was loaded.
func DefaultTuning() Tuning {
	return Tuning{
		PauseMergeSeconds:   DefaultPauseMergeSeconds,
		SwitchWindowSeconds: DefaultSwitchWindowSeconds,
	}
}

// Inputs are the computed quantities rules R1-R6 read.
type Inputs struct {
	FocusSeconds   int64
	SwitchCount30m int
	DeviationRatio float64
}

// Result is the rule engine's verdict: the suggested rest length and the
// ordered list of rule ids that contributed to it.
type Result struct {
	SuggestedMinutes int
	Reasons          []string
}

type rule struct {
	id        string
	fires     func(Inputs) bool
	contributes int
}

var rules = []rule{
	{"R1", func(in Inputs) bool { return in.FocusSeconds >= 5400 }, 15},
	{"R2", func(in Inputs) bool { return in.FocusSeconds >= 3000 && in.FocusSeconds < 5400 }, 8},
	{"R3", func(in Inputs) bool { return in.FocusSeconds >= 900 && in.FocusSeconds < 3000 }, 3},
	{"R4", func(in Inputs) bool { return in.SwitchCount30m >= 5 }, 8},
	{"R5", func(in Inputs) bool { return in.DeviationRatio >= 0.5 && in.FocusSeconds >= 1200 }, 3},
	{"R6", func(in Inputs) bool { return in.FocusSeconds < 600 && in.SwitchCount30m < 3 }, 0},
}

// Evaluate runs rules R1-R6 in order over in and returns the snapped
// suggested_minutes and the ids of every rule that fired.
func Evaluate(in Inputs) Result {
	best := 0
	var reasons []string
	for _, r := range rules {
		if r.fires(in) {
			reasons = append(reasons, r.id)
			if r.contributes > best {
				best = r.contributes
			}
		}
	}
	return Result{SuggestedMinutes: snap(best), Reasons: reasons}
}

func snap(minutes int) int {
	for i := len(suggestionLevels) - 1; i >= 0; i-- {
		if minutes >= suggestionLevels[i] {
			return suggestionLevels[i]
		}
	}
	return 0
}

// ComputeInputs reads the event log for taskID and the global start/resume
// stream to build the Inputs a trigger at time now should evaluate, using
// tuning's pause-merge threshold and switch-count lookback.
func ComputeInputs(ctx context.Context, q sqlite.Querier, taskID string, now int64, tuning Tuning) (Inputs, error) {
	taskEvents, err := sqlite.EventsForTaskInOrder(ctx, q, taskID)
	if err != nil {
		return Inputs{}, err
	}
	blocks := focusBlocks(taskEvents, tuning.PauseMergeSeconds)

	var focusSeconds int64
	var history []int64
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		focusSeconds = last.end - last.start
		for _, b := range blocks[:len(blocks)-1] {
			history = append(history, b.end-b.start)
		}
	}

	expected := median(history)
	deviation := 0.0
	if expected > 0 {
		diff := focusSeconds - expected
		if diff < 0 {
			diff = -diff
		}
		deviation = float64(diff) / float64(expected)
	}

	global, err := sqlite.StartResumeEventsInOrder(ctx, q)
	if err != nil {
		return Inputs{}, err
	}
	switches := switchCount(global, now-tuning.SwitchWindowSeconds, now)

	return Inputs{
		FocusSeconds:   focusSeconds,
		SwitchCount30m: switches,
		DeviationRatio: deviation,
	}, nil
}

type block struct{ start, end int64 }

// focusBlocks merges a task's own running sessions into focus blocks,
// treating pause gaps shorter than pauseMergeSeconds as a continuation of
// the same block rather than a break.
func focusBlocks(events []types.TimeEvent, pauseMergeSeconds int64) []block {
	var sessions []block
	var openAt *int64
	for _, ev := range events {
		switch ev.Kind {
		case types.EventStart, types.EventResume:
			at := ev.At
			openAt = &at
		case types.EventPause, types.EventStop:
			if openAt != nil {
				sessions = append(sessions, block{start: *openAt, end: ev.At})
				openAt = nil
			}
		}
	}

	if len(sessions) == 0 {
		return nil
	}

	merged := []block{sessions[0]}
	for _, s := range sessions[1:] {
		last := &merged[len(merged)-1]
		if s.start-last.end < pauseMergeSeconds {
			last.end = s.end
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}

// switchCount counts start/resume events in [since, now] whose task id
// differs from the immediately prior start/resume event's task id,
// globally across the whole log (so the window boundary still sees the
// correct "prior" task).
func switchCount(global []types.TimeEvent, since, now int64) int {
	count := 0
	var prev *string
	for _, ev := range global {
		if ev.At > now {
			break
		}
		isSwitch := prev == nil || *prev != ev.TaskID
		if isSwitch && ev.At >= since {
			count++
		}
		taskID := ev.TaskID
		prev = &taskID
	}
	return count
}

// Trigger computes Inputs for taskID, evaluates the rules, supersedes any
// pending suggestion, and persists the new one. It is called by the
// command surface after a stop with a parent (subtask_end) or a
// start/resume that changes the running task (task_switch).
func Trigger(ctx context.Context, q sqlite.Querier, newID func() string, trigger types.SuggestionTrigger, taskID string, now int64, tuning Tuning) (*types.RestSuggestion, error) {
	in, err := ComputeInputs(ctx, q, taskID, now, tuning)
	if err != nil {
		return nil, err
	}
	result := Evaluate(in)

	if err := sqlite.IgnorePendingSuggestions(ctx, q); err != nil {
		return nil, err
	}

	id := taskID
	s := &types.RestSuggestion{
		ID:             newID(),
		TriggerType:    trigger,
		TaskID:         &id,
		FocusSeconds:   in.FocusSeconds,
		SwitchCount30m: in.SwitchCount30m,
		DeviationRatio: in.DeviationRatio,
		SuggestedMins:  result.SuggestedMinutes,
		Reasons:        result.Reasons,
		Status:         types.SuggestionPending,
		CreatedAt:      now,
	}
	if err := sqlite.InsertSuggestion(ctx, q, s); err != nil {
		return nil, err
	}
	return s, nil
}

// median returns the median of a sorted copy of xs, or 0 if xs is empty.
func median(xs []int64) int64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]int64(nil), xs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
