package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"nomina/internal/domain/draft"
	"nomina/internal/domain/period"
)

// PeriodAPI is the slice of the period service the manager needs.
type PeriodAPI interface {
	Get(ctx context.Context, companyID, periodID string) (period.Period, error)
	Reopen(ctx context.Context, companyID, periodID string, actorCanReopen bool) (period.Period, error)
	FinishEdit(ctx context.Context, companyID, periodID string) (period.Period, error)
}

// ChangeSaver persists a full change set in one non-debounced operation.
type ChangeSaver interface {
	ApplyChanges(ctx context.Context, companyID, periodID string, changes ChangeSet) error
}

// Manager guards mutation of already-closed periods. At most one active
// session exists per period; everything here is in-memory.
type Manager struct {
	periods PeriodAPI
	saver   ChangeSaver

	mu     sync.Mutex
	active map[string]*Session
}

func NewManager(periods PeriodAPI, saver ChangeSaver) *Manager {
	return &Manager{
		periods: periods,
		saver:   saver,
		active:  make(map[string]*Session),
	}
}

// StartEdit reopens the period (unless it is already reabierto from an
// earlier discarded session) and opens the single editing session for it.
func (m *Manager) StartEdit(ctx context.Context, companyID, userID, periodID string, actorCanReopen bool) (Session, error) {
	m.mu.Lock()
	if s, exists := m.active[periodID]; exists && s.CompanyID == companyID {
		m.mu.Unlock()
		return Session{}, ErrSessionConflict
	}
	m.mu.Unlock()

	p, err := m.periods.Get(ctx, companyID, periodID)
	if err != nil {
		return Session{}, err
	}
	if p.Status != period.StatusReabierto {
		if _, err := m.periods.Reopen(ctx, companyID, periodID, actorCanReopen); err != nil {
			return Session{}, err
		}
	}

	s := &Session{
		ID:        uuid.NewString(),
		PeriodID:  periodID,
		CompanyID: companyID,
		UserID:    userID,
		StartedAt: time.Now(),
		Status:    StatusActive,
		Changes:   ChangeSet{FieldOverrides: map[string]map[string]float64{}},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.active[periodID]; exists {
		// Lost the race to another surface between the store round trip
		// and here.
		return Session{}, ErrSessionConflict
	}
	m.active[periodID] = s
	return *s, nil
}

// session resolves the period's active session for one company. A
// session opened by another company is invisible to the caller, not a
// distinguishable state. Callers hold m.mu.
func (m *Manager) session(companyID, periodID string) (*Session, bool) {
	s, ok := m.active[periodID]
	if !ok || s.CompanyID != companyID {
		return nil, false
	}
	return s, true
}

// Get returns a snapshot of the period's active session.
func (m *Manager) Get(companyID, periodID string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.session(companyID, periodID)
	if !ok {
		return Session{}, false
	}
	return *s, true
}

func (m *Manager) mutate(companyID, periodID string, apply func(*ChangeSet)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.session(companyID, periodID)
	if !ok || s.Status != StatusActive {
		return ErrNoActiveSession
	}
	apply(&s.Changes)
	s.HasUnsavedChanges = true
	return nil
}

func (m *Manager) AddEmployee(companyID, periodID, employeeID string) error {
	return m.mutate(companyID, periodID, func(c *ChangeSet) {
		for _, id := range c.AddedEmployees {
			if id == employeeID {
				return
			}
		}
		c.AddedEmployees = append(c.AddedEmployees, employeeID)
		c.RemovedEmployees = without(c.RemovedEmployees, employeeID)
	})
}

func (m *Manager) RemoveEmployee(companyID, periodID, employeeID string) error {
	return m.mutate(companyID, periodID, func(c *ChangeSet) {
		c.AddedEmployees = without(c.AddedEmployees, employeeID)
		for _, id := range c.RemovedEmployees {
			if id == employeeID {
				return
			}
		}
		c.RemovedEmployees = append(c.RemovedEmployees, employeeID)
	})
}

func (m *Manager) AddNovedad(companyID, periodID string, n draft.Novedad) error {
	return m.mutate(companyID, periodID, func(c *ChangeSet) {
		c.NovedadesAdded = append(c.NovedadesAdded, n)
	})
}

func (m *Manager) ModifyNovedad(companyID, periodID string, n draft.Novedad) error {
	return m.mutate(companyID, periodID, func(c *ChangeSet) {
		c.NovedadesModified = append(c.NovedadesModified, n)
	})
}

func (m *Manager) DeleteNovedad(companyID, periodID, novedadID string) error {
	return m.mutate(companyID, periodID, func(c *ChangeSet) {
		c.NovedadesDeleted = append(c.NovedadesDeleted, novedadID)
	})
}

func (m *Manager) OverrideField(companyID, periodID, employeeID, field string, value float64) error {
	return m.mutate(companyID, periodID, func(c *ChangeSet) {
		if c.FieldOverrides == nil {
			c.FieldOverrides = map[string]map[string]float64{}
		}
		if c.FieldOverrides[employeeID] == nil {
			c.FieldOverrides[employeeID] = map[string]float64{}
		}
		c.FieldOverrides[employeeID][field] = value
	})
}

// FinishEdit persists the accumulated diff immediately (no debounce) and,
// on success, moves the period to editado and drops the session. On
// failure the session stays active with its changes intact.
func (m *Manager) FinishEdit(ctx context.Context, companyID, periodID string) (period.Period, error) {
	m.mu.Lock()
	s, ok := m.session(companyID, periodID)
	if !ok || s.Status != StatusActive {
		m.mu.Unlock()
		return period.Period{}, ErrNoActiveSession
	}
	s.Status = StatusSaving
	changes := s.Changes
	m.mu.Unlock()

	if err := m.saver.ApplyChanges(ctx, companyID, periodID, changes); err != nil {
		m.mu.Lock()
		s.Status = StatusActive
		s.HasUnsavedChanges = true
		m.mu.Unlock()
		return period.Period{}, err
	}

	p, err := m.periods.FinishEdit(ctx, companyID, periodID)
	if err != nil {
		m.mu.Lock()
		s.Status = StatusActive
		m.mu.Unlock()
		return period.Period{}, err
	}

	m.mu.Lock()
	s.Status = StatusCompleted
	s.HasUnsavedChanges = false
	delete(m.active, periodID)
	m.mu.Unlock()
	return p, nil
}

// DiscardChanges drops the session without persisting anything. The
// period is left reabierto; re-closing it is a separate, explicit step.
func (m *Manager) DiscardChanges(companyID, periodID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.session(companyID, periodID)
	if !ok || s.Status != StatusActive {
		return ErrNoActiveSession
	}
	s.Status = StatusCancelled
	delete(m.active, periodID)
	return nil
}

func without(ids []string, remove string) []string {
	var out []string
	for _, id := range ids {
		if id != remove {
			out = append(out, id)
		}
	}
	return out
}
