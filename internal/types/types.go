// Package types holds the persisted domain records shared across the
// storage, repository, timing, replay, and advisor packages.
package types

// TaskStatus is the lifecycle state of a Task, governed exclusively by
// the timing state machine.
type TaskStatus string

const (
	TaskIdle    TaskStatus = "idle"
	TaskRunning TaskStatus = "running"
	TaskPaused  TaskStatus = "paused"
	TaskStopped TaskStatus = "stopped"
)

// EventKind identifies the shape of a TimeEvent's payload.
type EventKind string

const (
	EventStart      EventKind = "start"
	EventPause      EventKind = "pause"
	EventResume     EventKind = "resume"
	EventStop       EventKind = "stop"
	EventReparent   EventKind = "reparent"
	EventTagAdd     EventKind = "tag_add"
	EventTagRemove  EventKind = "tag_remove"
)

// Range selects the query window for an overview snapshot.
type Range string

const (
	RangeAll   Range = "all"
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeToday Range = "today"
)

// SuggestionTrigger identifies what provoked a RestSuggestion.
type SuggestionTrigger string

const (
	TriggerSubtaskEnd  SuggestionTrigger = "subtask_end"
	TriggerTaskSwitch  SuggestionTrigger = "task_switch"
)

// SuggestionStatus is the lifecycle of a RestSuggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionIgnored  SuggestionStatus = "ignored"
)

// Task is a node in the task forest. ParentID is nil for a root task.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	ParentID   *string    `json:"parent_id,omitempty"`
	Status     TaskStatus `json:"status"`
	CreatedAt  int64      `json:"created_at"`
	ArchivedAt *int64     `json:"archived_at,omitempty"`
}

// Archived reports whether the task has been soft-deleted.
func (t *Task) Archived() bool {
	return t != nil && t.ArchivedAt != nil
}

// Tag is a case-preserving, store-unique label.
type Tag struct {
	ID        int64
	Name      string
	CreatedAt int64
}

// TaskTag is the many-to-many association row between Task and Tag.
type TaskTag struct {
	TaskID string
	TagID  int64
}

// TimeEvent is an immutable record in the append-only event log.
type TimeEvent struct {
	Sequence int64
	TaskID   string
	Kind     EventKind
	At       int64
	Payload  string // JSON, schema depends on Kind; empty for start/pause/resume/stop
}

// ReparentPayload is the payload schema for EventReparent.
type ReparentPayload struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// TagPayload is the payload schema for EventTagAdd / EventTagRemove.
type TagPayload struct {
	Tag string `json:"tag"`
}

// RestSuggestion is an advisory, non-blocking record from the rule engine.
type RestSuggestion struct {
	ID             string            `json:"id"`
	TriggerType    SuggestionTrigger `json:"trigger_type"`
	TaskID         *string           `json:"task_id,omitempty"`
	FocusSeconds   int64             `json:"focus_seconds"`
	SwitchCount30m int               `json:"switch_count_30m"`
	DeviationRatio float64           `json:"deviation_ratio"`
	SuggestedMins  int               `json:"suggested_minutes"`
	Reasons        []string          `json:"reasons"`
	Status         SuggestionStatus  `json:"status"`
	CreatedAt      int64             `json:"created_at"`
}

// TaskView is a task enriched with its tag names and window-scoped
// durations, as returned in an OverviewSnapshot.
type TaskView struct {
	ID               string     `json:"id"`
	ParentID         *string    `json:"parent_id,omitempty"`
	Title            string     `json:"title"`
	Status           TaskStatus `json:"status"`
	CreatedAt        int64      `json:"created_at"`
	Tags             []string   `json:"tags"`
	InclusiveSeconds int64      `json:"inclusive_seconds"`
	ExclusiveSeconds int64      `json:"exclusive_seconds"`
}

// OverviewSnapshot is the result of get_overview.
type OverviewSnapshot struct {
	Range          Range           `json:"range"`
	GeneratedAt    int64           `json:"generated_at"`
	ActiveTaskID   *string         `json:"active_task_id,omitempty"`
	RestSuggestion *RestSuggestion `json:"rest_suggestion,omitempty"`
	Tasks          []TaskView      `json:"tasks"`
}
