// Package core is the Command Surface of spec.md §4.G: the single entry
// point every collaborator (CLI, future daemon) drives the storage,
// repository, timing, replay, and rest-advisor packages through. It owns
// the write lock that keeps the single-active-context invariant from
// racing across concurrent callers.
package core

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timefiles/timefiles/internal/config"
	"github.com/timefiles/timefiles/internal/repository"
	"github.com/timefiles/timefiles/internal/replay"
	"github.com/timefiles/timefiles/internal/restadvisor"
	"github.com/timefiles/timefiles/internal/storage/sqlite"
	"github.com/timefiles/timefiles/internal/timing"
	"github.com/timefiles/timefiles/internal/types"
)

// Clock supplies the single timestamp a mutating command stamps every
// event it produces with.
type Clock interface {
	Now() int64
}

// Notifier is told about every committed mutation so collaborators (a
// TUI, a future daemon) can refresh without polling. Subscribers that
// are slow never block the committing command: Publish fans out on an
// errgroup and drops notifications a subscriber can't keep up
// with rather than stall the writer.
type Notifier interface {
	Subscribe() (ch <-chan struct{}, cancel func())
	Publish(ctx context.Context)
}

// chanNotifier is a buffered, multi-subscriber fan-out.
type chanNotifier struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// NewNotifier returns a Notifier ready to Subscribe/Publish.
func NewNotifier() Notifier {
	return &chanNotifier{subs: make(map[chan struct{}]struct{})}
}

func (n *chanNotifier) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	cancel := func() {
		n.mu.Lock()
		delete(n.subs, ch)
		n.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

func (n *chanNotifier) Publish(ctx context.Context) {
	n.mu.Lock()
	chans := make([]chan struct{}, 0, len(n.subs))
	for ch := range n.subs {
		chans = append(chans, ch)
	}
	n.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, ch := range chans {
		ch := ch
		g.Go(func() error {
			select {
			case ch <- struct{}{}:
			default:
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Engine is the Command Surface. One Engine owns one Store for the
// lifetime of the process.
type Engine struct {
	store    *sqlite.Store
	clock    Clock
	notifier Notifier
	tuning   restadvisor.Tuning
	writeMu  sync.Mutex
}

// New binds an Engine to an already-opened Store, tuning the rest advisor
// from cfg's PauseMergeSeconds/SwitchWindowSeconds (a nil cfg falls back
// to restadvisor.DefaultTuning).
func New(store *sqlite.Store, clock Clock, notifier Notifier, cfg *config.Config) *Engine {
	tuning := restadvisor.DefaultTuning()
	if cfg != nil {
		tuning = restadvisor.Tuning{
			PauseMergeSeconds:   cfg.PauseMergeSeconds,
			SwitchWindowSeconds: cfg.SwitchWindowSeconds,
		}
	}
	return &Engine{store: store, clock: clock, notifier: notifier, tuning: tuning}
}

// withWriteTx serializes every mutating command behind the Engine's write
// mutex, runs fn inside one transaction, and commits only if fn succeeds.
// On success it publishes a change notification after the commit.
func (e *Engine) withWriteTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx, now int64) error) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return storageError("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := e.clock.Now()
	if err := fn(ctx, tx, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit transaction", err)
	}
	committed = true
	if e.notifier != nil {
		e.notifier.Publish(ctx)
	}
	return nil
}

// CreateTask creates a new idle task, optionally under parentID.
func (e *Engine) CreateTask(ctx context.Context, title string, parentID *string) (string, error) {
	var id string
	err := e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		t, err := repository.CreateTask(ctx, tx, title, parentID, now)
		if err != nil {
			return mapRepositoryErr(err)
		}
		id = t.ID
		return nil
	})
	return id, err
}

// RenameTask sets a task's title.
func (e *Engine) RenameTask(ctx context.Context, id, title string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		return mapRepositoryErr(repository.RenameTask(ctx, tx, id, title))
	})
}

// ReparentTask moves id under newParentID (nil moves it to the root).
func (e *Engine) ReparentTask(ctx context.Context, id string, newParentID *string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		return mapRepositoryErr(repository.ReparentTask(ctx, tx, id, newParentID, now))
	})
}

// ArchiveTask recursively archives id and its subtree, force-stopping any
// running or paused member first.
func (e *Engine) ArchiveTask(ctx context.Context, id string) (*repository.ArchiveResult, error) {
	var result *repository.ArchiveResult
	err := e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		r, err := repository.ArchiveTask(ctx, tx, id, now)
		if err != nil {
			return mapRepositoryErr(err)
		}
		result = r
		return nil
	})
	return result, err
}

// DeleteTasks soft-deletes (default) or hard-deletes (hard=true) ids.
func (e *Engine) DeleteTasks(ctx context.Context, ids []string, hard bool) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		return mapRepositoryErr(repository.DeleteTasks(ctx, tx, ids, hard, now))
	})
}

// AddTagToTask idempotently tags id, creating the tag if absent.
func (e *Engine) AddTagToTask(ctx context.Context, id, tagName string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		return mapRepositoryErr(repository.AddTag(ctx, tx, id, tagName, now))
	})
}

// RemoveTagFromTask idempotently untags id.
func (e *Engine) RemoveTagFromTask(ctx context.Context, id, tagName string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		return mapRepositoryErr(repository.RemoveTag(ctx, tx, id, tagName, now))
	})
}

// StartTask begins (or restarts a stopped) task, pausing whatever else is
// running, then triggers the rest advisor for a task_switch.
func (e *Engine) StartTask(ctx context.Context, id string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		prev, err := sqlite.RunningTaskID(ctx, tx)
		if err != nil {
			return storageError("read running task", err)
		}
		if err := timing.New(tx).Start(ctx, id, now); err != nil {
			return mapTimingErr(err)
		}
		return e.triggerSwitch(ctx, tx, prev, id, now)
	})
}

// ResumeTask continues a paused task, pausing whatever else is running,
// then triggers the rest advisor for a task_switch.
func (e *Engine) ResumeTask(ctx context.Context, id string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		prev, err := sqlite.RunningTaskID(ctx, tx)
		if err != nil {
			return storageError("read running task", err)
		}
		if err := timing.New(tx).Resume(ctx, id, now); err != nil {
			return mapTimingErr(err)
		}
		return e.triggerSwitch(ctx, tx, prev, id, now)
	})
}

// triggerSwitch fires the rest advisor when the running task actually
// changed as a result of a start/resume (spec.md §4.F task_switch).
func (e *Engine) triggerSwitch(ctx context.Context, tx *sql.Tx, prev *string, next string, now int64) error {
	if prev != nil && *prev == next {
		return nil
	}
	if prev == nil {
		return nil
	}
	_, err := restadvisor.Trigger(ctx, tx, repository.NewID, types.TriggerTaskSwitch, *prev, now, e.tuning)
	if err != nil {
		return storageError("evaluate rest advisor", err)
	}
	return nil
}

// PauseTask suspends the running task.
func (e *Engine) PauseTask(ctx context.Context, id string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		return mapTimingErr(timing.New(tx).Pause(ctx, id, now))
	})
}

// StopTask finalizes id's current session. If id has a parent, the rest
// advisor is triggered for a subtask_end.
func (e *Engine) StopTask(ctx context.Context, id string) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		t, err := sqlite.GetTask(ctx, tx, id)
		if err != nil {
			return mapStorageNotFound(err)
		}
		if err := timing.New(tx).Stop(ctx, id, now); err != nil {
			return mapTimingErr(err)
		}
		if t.ParentID == nil {
			return nil
		}
		if _, err := restadvisor.Trigger(ctx, tx, repository.NewID, types.TriggerSubtaskEnd, id, now, e.tuning); err != nil {
			return storageError("evaluate rest advisor", err)
		}
		return nil
	})
}

// InsertSubtaskAndStart creates a new idle child under a running parent,
// pauses the parent, and starts the child.
func (e *Engine) InsertSubtaskAndStart(ctx context.Context, parentID, title string) (string, error) {
	var childID string
	err := e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, now int64) error {
		child, err := timing.New(tx).InsertSubtaskAndStart(ctx, parentID, title, now)
		if err != nil {
			return mapTimingErr(err)
		}
		childID = child.ID
		return nil
	})
	return childID, err
}

// RespondRestSuggestion accepts or ignores a pending suggestion.
func (e *Engine) RespondRestSuggestion(ctx context.Context, id string, accept bool) error {
	return e.withWriteTx(ctx, func(ctx context.Context, tx *sql.Tx, _ int64) error {
		if _, err := sqlite.GetSuggestion(ctx, tx, id); err != nil {
			return mapStorageNotFound(err)
		}
		status := types.SuggestionIgnored
		if accept {
			status = types.SuggestionAccepted
		}
		return storageError("set suggestion status", sqlite.SetSuggestionStatus(ctx, tx, id, status))
	})
}

// Ping is the liveness probe; it never touches the write lock.
func (e *Engine) Ping(ctx context.Context) (string, error) {
	if err := e.store.DB().PingContext(ctx); err != nil {
		return "", storageError("ping", err)
	}
	return "pong", nil
}

// GetOverview computes an OverviewSnapshot for rng without taking the
// write lock. It reads through the store's single shared connection, so
// it waits while a write transaction holds that connection; its queries
// are not wrapped in one transaction, so they do not share a snapshot.
func (e *Engine) GetOverview(ctx context.Context, rng types.Range) (*types.OverviewSnapshot, error) {
	db := e.store.DB()
	now := e.clock.Now()

	t0, err := windowStart(rng, now)
	if err != nil {
		return nil, err
	}
	totals, err := replay.Run(ctx, db, replay.Window{T0: t0}, now)
	if err != nil {
		return nil, storageError("replay", err)
	}

	tasks, err := sqlite.ListNonArchived(ctx, db)
	if err != nil {
		return nil, storageError("list tasks", err)
	}
	tagsByTask, err := sqlite.TagNamesByTask(ctx, db)
	if err != nil {
		return nil, storageError("list tags", err)
	}
	running, err := sqlite.RunningTaskID(ctx, db)
	if err != nil {
		return nil, storageError("find running task", err)
	}
	pending, err := sqlite.PendingSuggestion(ctx, db)
	if err != nil {
		return nil, storageError("find pending suggestion", err)
	}

	views := make([]types.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, types.TaskView{
			ID:               t.ID,
			ParentID:         t.ParentID,
			Title:            t.Title,
			Status:           t.Status,
			CreatedAt:        t.CreatedAt,
			Tags:             tagsByTask[t.ID],
			InclusiveSeconds: totals.Inclusive[t.ID],
			ExclusiveSeconds: totals.Exclusive[t.ID],
		})
	}

	return &types.OverviewSnapshot{
		Range:          rng,
		GeneratedAt:    now,
		ActiveTaskID:   running,
		RestSuggestion: pending,
		Tasks:          views,
	}, nil
}

// windowStart resolves a Range into a window start time per spec.md §4.G.
func windowStart(rng types.Range, now int64) (int64, error) {
	switch rng {
	case types.RangeAll:
		return 0, nil
	case types.RangeDay:
		return now - 86400, nil
	case types.RangeWeek:
		return now - 7*86400, nil
	case types.RangeToday:
		t := time.Unix(now, 0)
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return midnight.Unix(), nil
	default:
		return 0, invalidInput(fmt.Sprintf("unknown range %q", rng))
	}
}
