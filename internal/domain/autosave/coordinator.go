package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nomina/internal/domain/draft"
)

const (
	DefaultDelay = 5 * time.Second

	saveTimeout = 30 * time.Second
)

// Save outcome kinds carried on Result.
const (
	ResultSaved    = "saved"
	ResultConflict = "conflict" // duplicate key, soft success
	ResultSkipped  = "skipped"  // another save was in flight
	ResultFailed   = "failed"
)

type Result struct {
	PeriodID string
	Kind     string
	Err      error
	SavedAt  time.Time
}

// SaveFunc persists one draft snapshot. The coordinator is bound to a
// single period; the closure carries the period and company identity.
type SaveFunc func(ctx context.Context, employees []draft.Employee, removedIDs []string) error

type snapshot struct {
	employees  []draft.Employee
	removedIDs []string
}

// Coordinator serializes draft persistence for one editing surface:
// trailing debounce with a single pending timer, snapshot-at-fire, and an
// at-most-one-concurrent-save policy enforced through the shared Guard.
// A fire that finds a save in flight skips the cycle entirely; superseded
// snapshots are dropped, never applied out of order.
type Coordinator struct {
	periodID string
	delay    time.Duration
	save     SaveFunc
	guard    *Guard
	onResult func(Result)

	mu           sync.Mutex
	timer        *time.Timer
	pending      *snapshot
	generation   uint64
	closed       bool
	saving       bool
	lastSaveTime time.Time
	hasUnsaved   bool
}

func NewCoordinator(periodID string, delay time.Duration, guard *Guard, save SaveFunc, onResult func(Result)) *Coordinator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if guard == nil {
		guard = NewGuard()
	}
	if onResult == nil {
		onResult = func(Result) {}
	}
	return &Coordinator{
		periodID: periodID,
		delay:    delay,
		save:     save,
		guard:    guard,
		onResult: onResult,
	}
}

// ScheduleSave (re)arms the trailing debounce timer with a fresh snapshot.
// A call with nothing to persist is a logged no-op. A new call replaces
// any prior pending snapshot and restarts the delay.
func (c *Coordinator) ScheduleSave(employees []draft.Employee, removedIDs []string) {
	if len(employees) == 0 && len(removedIDs) == 0 {
		slog.Debug("auto-save skipped, nothing to persist", "periodId", c.periodID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = &snapshot{employees: employees, removedIDs: removedIDs}
	c.hasUnsaved = true

	if c.timer != nil {
		c.timer.Stop()
	}
	generation := c.generation
	c.timer = time.AfterFunc(c.delay, func() { c.fire(generation) })
}

func (c *Coordinator) fire(generation uint64) {
	c.mu.Lock()
	if c.closed || generation != c.generation || c.pending == nil {
		c.mu.Unlock()
		return
	}

	if !c.guard.TryAcquire(c.periodID) {
		// A save is already in flight: skip this cycle. The pending
		// snapshot stays, but only a later ScheduleSave re-arms it.
		c.mu.Unlock()
		c.onResult(Result{PeriodID: c.periodID, Kind: ResultSkipped})
		return
	}

	snap := c.pending
	c.pending = nil
	c.saving = true
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	err := c.save(ctx, snap.employees, snap.removedIDs)
	cancel()

	c.finish(generation, snap, err)
}

func (c *Coordinator) finish(generation uint64, snap *snapshot, err error) {
	c.guard.Release(c.periodID)

	c.mu.Lock()
	c.saving = false
	if c.closed || generation != c.generation {
		// The session ended while the save was in flight; the outcome
		// is discarded.
		c.mu.Unlock()
		return
	}

	result := Result{PeriodID: c.periodID}
	switch {
	case err == nil:
		result.Kind = ResultSaved
	case IsDuplicateKey(err):
		result.Kind = ResultConflict
		result.Err = err
	default:
		result.Kind = ResultFailed
		result.Err = err
	}

	if result.Kind == ResultFailed {
		// Leave the dirty flag set and restore the snapshot unless a
		// newer one arrived meanwhile; the next natural debounce or a
		// manual retry re-attempts. No tight retry loop.
		if c.pending == nil {
			c.pending = snap
		}
		c.mu.Unlock()
		c.onResult(result)
		return
	}

	c.lastSaveTime = time.Now()
	result.SavedAt = c.lastSaveTime
	if c.pending == nil {
		c.hasUnsaved = false
	}
	c.mu.Unlock()
	c.onResult(result)
}

// Flush bypasses the debounce and persists the pending snapshot now,
// waiting for the in-flight slot if another save holds it. Used by the
// finish-editing path.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.pending == nil {
		saving := c.saving
		c.mu.Unlock()
		if !saving {
			return nil
		}
		// Nothing new to persist, but a save is in flight: wait for the
		// slot so callers observe a settled state.
		if err := c.guard.Acquire(ctx, c.periodID); err != nil {
			return err
		}
		c.guard.Release(c.periodID)
		return nil
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	snap := c.pending
	c.pending = nil
	generation := c.generation
	c.saving = true
	c.mu.Unlock()

	if err := c.guard.Acquire(ctx, c.periodID); err != nil {
		c.mu.Lock()
		c.saving = false
		c.pending = snap
		c.mu.Unlock()
		return err
	}

	err := c.save(ctx, snap.employees, snap.removedIDs)
	c.finish(generation, snap, err)
	if err != nil && IsDuplicateKey(err) {
		return nil
	}
	return err
}

// Close cancels any pending timer and invalidates in-flight results.
// Called when the editing surface unmounts or the session ends.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) IsSaving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

func (c *Coordinator) LastSaveTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaveTime
}

func (c *Coordinator) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasUnsaved
}
