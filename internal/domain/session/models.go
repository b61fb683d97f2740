package session

import (
	"time"

	"nomina/internal/domain/draft"
)

const (
	StatusActive    = "active"
	StatusSaving    = "saving"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ChangeSet is the structured diff accumulated while a reopened period is
// being edited. It is applied in one shot on finish, never incrementally.
type ChangeSet struct {
	AddedEmployees    []string                      `json:"addedEmployees"`
	RemovedEmployees  []string                      `json:"removedEmployees"`
	NovedadesAdded    []draft.Novedad               `json:"novedadesAdded"`
	NovedadesModified []draft.Novedad               `json:"novedadesModified"`
	NovedadesDeleted  []string                      `json:"novedadesDeleted"`
	FieldOverrides    map[string]map[string]float64 `json:"fieldOverrides"`
}

func (c ChangeSet) Empty() bool {
	return len(c.AddedEmployees) == 0 &&
		len(c.RemovedEmployees) == 0 &&
		len(c.NovedadesAdded) == 0 &&
		len(c.NovedadesModified) == 0 &&
		len(c.NovedadesDeleted) == 0 &&
		len(c.FieldOverrides) == 0
}

// Session is ephemeral: it exists only while a closed period is reopened
// for edits and is dropped, never persisted, on finish or discard.
type Session struct {
	ID                string    `json:"id"`
	PeriodID          string    `json:"periodId"`
	CompanyID         string    `json:"companyId"`
	UserID            string    `json:"userId"`
	StartedAt         time.Time `json:"startedAt"`
	Status            string    `json:"status"`
	Changes           ChangeSet `json:"changes"`
	HasUnsavedChanges bool      `json:"hasUnsavedChanges"`
}
