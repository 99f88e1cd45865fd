// Package eventlog defines the append-only record shape and payload
// codecs for TimeEvent. It never touches storage directly; the storage
// layer assigns sequence numbers and persists what this package encodes.
package eventlog

import (
	"encoding/json"
	"fmt"

	"github.com/timefiles/timefiles/internal/types"
)

// Record is one event about to be appended. Sequence is assigned by the
// store on insert and is not set here.
type Record struct {
	TaskID  string
	Kind    types.EventKind
	At      int64
	Payload string
}

// Plain builds a Record for a payload-less kind (start/pause/resume/stop).
func Plain(taskID string, kind types.EventKind, at int64) Record {
	return Record{TaskID: taskID, Kind: kind, At: at}
}

// Reparent builds a Record carrying the old/new parent payload.
func Reparent(taskID string, at int64, from, to *string) (Record, error) {
	raw, err := json.Marshal(types.ReparentPayload{From: from, To: to})
	if err != nil {
		return Record{}, fmt.Errorf("encode reparent payload: %w", err)
	}
	return Record{TaskID: taskID, Kind: types.EventReparent, At: at, Payload: string(raw)}, nil
}

// Tag builds a Record for tag_add/tag_remove, kind must be one of those two.
func Tag(taskID string, kind types.EventKind, at int64, tagName string) (Record, error) {
	if kind != types.EventTagAdd && kind != types.EventTagRemove {
		return Record{}, fmt.Errorf("eventlog: Tag called with non-tag kind %q", kind)
	}
	raw, err := json.Marshal(types.TagPayload{Tag: tagName})
	if err != nil {
		return Record{}, fmt.Errorf("encode tag payload: %w", err)
	}
	return Record{TaskID: taskID, Kind: kind, At: at, Payload: string(raw)}, nil
}

// DecodeReparent parses a reparent event's payload.
func DecodeReparent(payload string) (types.ReparentPayload, error) {
	var p types.ReparentPayload
	if payload == "" {
		return p, fmt.Errorf("eventlog: empty reparent payload")
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return p, fmt.Errorf("decode reparent payload: %w", err)
	}
	return p, nil
}

// DecodeTag parses a tag_add/tag_remove event's payload.
func DecodeTag(payload string) (types.TagPayload, error) {
	var p types.TagPayload
	if payload == "" {
		return p, fmt.Errorf("eventlog: empty tag payload")
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return p, fmt.Errorf("decode tag payload: %w", err)
	}
	return p, nil
}

// IsRunningStart reports whether kind transitions a task into running.
func IsRunningStart(kind types.EventKind) bool {
	return kind == types.EventStart || kind == types.EventResume
}

// IsRunningEnd reports whether kind transitions a task out of running.
func IsRunningEnd(kind types.EventKind) bool {
	return kind == types.EventPause || kind == types.EventStop
}
