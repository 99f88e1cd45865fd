package core

import (
	"errors"

	"github.com/timefiles/timefiles/internal/repository"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/timing"
)

// mapRepositoryErr translates internal/repository's sentinel vocabulary
// into the Command Surface's closed core.Error shape.
func mapRepositoryErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInvalidInput):
		return invalidInput(err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return notFound(err.Error())
	case errors.Is(err, repository.ErrArchived):
		return archived(err.Error())
	case errors.Is(err, repository.ErrCycleDetected):
		return cycleDetected(err.Error())
	default:
		return internalError("repository", err)
	}
}

// mapTimingErr translates internal/timing's sentinel vocabulary into
// core.Error.
func mapTimingErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, timing.ErrInvalidInput):
		return invalidInput(err.Error())
	case errors.Is(err, timing.ErrNotFound):
		return notFound(err.Error())
	case errors.Is(err, timing.ErrArchived):
		return archived(err.Error())
	case errors.Is(err, timing.ErrInvalidState):
		return invalidState(err.Error())
	default:
		return mapRepositoryErr(err)
	}
}

// mapStorageNotFound translates a bare sqlite.ErrNotFound (surfaced when
// the Command Surface itself looks a row up, outside repository/timing)
// into core.Error.
func mapStorageNotFound(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sqlite.ErrNotFound) {
		return notFound(err.Error())
	}
	return storageError("storage", err)
}
