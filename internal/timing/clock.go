package timing

import "time"

// Clock is read exactly once per command so every event a single intent
// produces shares the same `at`, and so tests can pin time for
// deterministic replay (spec.md §4.B, §5).
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock, truncated to unix seconds.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().Unix() }

// FixedClock returns a constant time, for tests.
type FixedClock int64

func (f FixedClock) Now() int64 { return int64(f) }
