package autosave

import (
	"context"
	"sync"
)

// Guard is the shared in-flight registry: a named single-slot mutex keyed
// by period id. Two editing surfaces working on the same period share one
// guard, so at most one save is ever in flight per period process-wide.
type Guard struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewGuard() *Guard {
	return &Guard{slots: make(map[string]chan struct{})}
}

func (g *Guard) slot(periodID string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot, ok := g.slots[periodID]
	if !ok {
		slot = make(chan struct{}, 1)
		g.slots[periodID] = slot
	}
	return slot
}

// TryAcquire claims the period's save slot without blocking. A false
// return means a save is already in flight and this cycle must be skipped.
func (g *Guard) TryAcquire(periodID string) bool {
	select {
	case g.slot(periodID) <- struct{}{}:
		return true
	default:
		return false
	}
}

// Acquire blocks until the slot frees up or the context ends. Used by the
// immediate-save path, which must not silently skip.
func (g *Guard) Acquire(ctx context.Context, periodID string) error {
	select {
	case g.slot(periodID) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Guard) Release(periodID string) {
	select {
	case <-g.slot(periodID):
	default:
	}
}
