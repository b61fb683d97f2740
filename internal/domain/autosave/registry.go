package autosave

import (
	"sync"
	"time"
)

// Registry hands out one coordinator per period and owns the shared
// guard, so every surface editing the same period lands on the same
// debounce state and in-flight slot.
type Registry struct {
	mu     sync.Mutex
	delay  time.Duration
	guard  *Guard
	coords map[string]*Coordinator
}

func NewRegistry(delay time.Duration) *Registry {
	return &Registry{
		delay:  delay,
		guard:  NewGuard(),
		coords: make(map[string]*Coordinator),
	}
}

func (r *Registry) Guard() *Guard {
	return r.guard
}

// For returns the period's coordinator, creating it on first use. The
// save function and result callback bind on creation only.
func (r *Registry) For(periodID string, save SaveFunc, onResult func(Result)) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if coord, ok := r.coords[periodID]; ok {
		return coord
	}
	coord := NewCoordinator(periodID, r.delay, r.guard, save, onResult)
	r.coords[periodID] = coord
	return coord
}

// Drop closes and forgets the period's coordinator; pending timers are
// cancelled and late results discarded.
func (r *Registry) Drop(periodID string) {
	r.mu.Lock()
	coord, ok := r.coords[periodID]
	delete(r.coords, periodID)
	r.mu.Unlock()
	if ok {
		coord.Close()
	}
}
