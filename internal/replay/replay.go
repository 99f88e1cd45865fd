// Package replay deterministically recomputes per-task inclusive and
// exclusive running seconds over a window by streaming the event log in
// sequence order (spec.md §4.E). All arithmetic is int64 seconds; no
// floating-point accumulation ever enters a duration.
package replay

import (
	"context"
	"sort"

	"github.com/timefiles/timefiles/internal/eventlog"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/types"
)

// Window bounds a replay. A nil T1 means unbounded ("all").
type Window struct {
	T0 int64
	T1 *int64
}

// Totals holds the per-task durations one replay produced.
type Totals struct {
	Exclusive map[string]int64
	Inclusive map[string]int64
}

// Run streams every event in the log and produces Totals for window.
// now is the caller's captured command time, used to close any interval
// still open at the end of the log (spec.md §4.E step 3).
func Run(ctx context.Context, q sqlite.Querier, window Window, now int64) (*Totals, error) {
	events, err := sqlite.AllEventsInOrder(ctx, q)
	if err != nil {
		return nil, err
	}
	parentMap, err := sqlite.ParentMap(ctx, q)
	if err != nil {
		return nil, err
	}
	return compute(events, parentMap, window, now), nil
}

// compute is the pure, side-effect-free core of the algorithm, kept
// separate from Run so it can be exercised directly in tests with a
// fixed event slice and no database.
func compute(events []types.TimeEvent, parentMap map[string]*string, window Window, now int64) *Totals {
	exclusive := make(map[string]int64)
	openSince := make(map[string]int64)

	t1 := now
	if window.T1 != nil {
		t1 = *window.T1
	}

	clip := func(start, end int64) int64 {
		s := start
		if s < window.T0 {
			s = window.T0
		}
		e := end
		if e > t1 {
			e = t1
		}
		if e <= s {
			return 0
		}
		return e - s
	}

	for _, ev := range events {
		switch {
		case eventlog.IsRunningStart(ev.Kind):
			openSince[ev.TaskID] = ev.At
		case eventlog.IsRunningEnd(ev.Kind):
			if start, ok := openSince[ev.TaskID]; ok {
				exclusive[ev.TaskID] += clip(start, ev.At)
				delete(openSince, ev.TaskID)
			}
		}
	}

	for taskID, start := range openSince {
		end := now
		if end > t1 {
			end = t1
		}
		exclusive[taskID] += clip(start, end)
	}

	inclusive := rollUp(parentMap, exclusive)
	return &Totals{Exclusive: exclusive, Inclusive: inclusive}
}

// rollUp computes inclusive(t) = exclusive(t) + sum(inclusive(children))
// via post-order traversal of the current parent forest.
func rollUp(parentMap map[string]*string, exclusive map[string]int64) map[string]int64 {
	children := make(map[string][]string)
	var roots []string
	ids := make([]string, 0, len(parentMap))
	for id := range parentMap {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic traversal order
	for _, id := range ids {
		parent := parentMap[id]
		if parent == nil {
			roots = append(roots, id)
		} else {
			children[*parent] = append(children[*parent], id)
		}
	}

	inclusive := make(map[string]int64, len(parentMap))
	var visit func(id string) int64
	visit = func(id string) int64 {
		if v, ok := inclusive[id]; ok {
			return v
		}
		total := exclusive[id]
		for _, child := range children[id] {
			total += visit(child)
		}
		inclusive[id] = total
		return total
	}
	for _, id := range ids {
		visit(id)
	}
	_ = roots
	return inclusive
}
