// Package timing implements the single-active-context state machine
// (spec.md §4.D): it is the only writer of start/pause/resume events and
// of user-requested stops. The one other writer of stop events is
// repository.ArchiveTask, which force-stops running or paused members of
// an archived subtree.
package timing

import "errors"

var (
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
	ErrArchived     = errors.New("archived")
	ErrInvalidInput = errors.New("invalid input")
)
