package session

import (
	"context"
	"fmt"

	"nomina/internal/domain/draft"
)

// DraftStore is the slice of the draft store the applier needs.
type DraftStore interface {
	ListDraftEmployees(ctx context.Context, companyID, periodID string) ([]draft.Employee, error)
	SaveDraftEmployees(ctx context.Context, companyID, periodID string, employees []draft.Employee, removedIDs []string) error
	CreateNovedad(ctx context.Context, companyID string, n draft.Novedad) (string, error)
	UpdateNovedad(ctx context.Context, companyID string, n draft.Novedad) error
	DeleteNovedad(ctx context.Context, companyID, novedadID string) error
}

// Applier translates a session ChangeSet into draft store operations:
// load the current line items, apply overrides and additions, recompute,
// persist the full snapshot, then settle the novedad diff.
type Applier struct {
	drafts DraftStore
	rules  draft.Rules
}

func NewApplier(drafts DraftStore, rules draft.Rules) *Applier {
	return &Applier{drafts: drafts, rules: rules}
}

func (a *Applier) ApplyChanges(ctx context.Context, companyID, periodID string, changes ChangeSet) error {
	if changes.Empty() {
		return nil
	}

	employees, err := a.drafts.ListDraftEmployees(ctx, companyID, periodID)
	if err != nil {
		return fmt.Errorf("load draft employees: %w", err)
	}

	byID := make(map[string]int, len(employees))
	for i, e := range employees {
		byID[e.EmployeeID] = i
	}

	for _, employeeID := range changes.AddedEmployees {
		if _, exists := byID[employeeID]; exists {
			continue
		}
		employees = append(employees, draft.Employee{EmployeeID: employeeID, WorkedDays: 30})
		byID[employeeID] = len(employees) - 1
	}

	for employeeID, overrides := range changes.FieldOverrides {
		i, exists := byID[employeeID]
		if !exists {
			continue
		}
		for field, value := range overrides {
			applyOverride(&employees[i], field, value)
		}
	}

	removed := make(map[string]bool, len(changes.RemovedEmployees))
	for _, id := range changes.RemovedEmployees {
		removed[id] = true
	}
	kept := employees[:0]
	for _, e := range employees {
		if !removed[e.EmployeeID] {
			kept = append(kept, e)
		}
	}

	computed := draft.ComputeAll(kept, a.rules)
	if err := a.drafts.SaveDraftEmployees(ctx, companyID, periodID, computed, changes.RemovedEmployees); err != nil {
		return err
	}

	for _, n := range changes.NovedadesAdded {
		n.PeriodID = periodID
		if _, err := a.drafts.CreateNovedad(ctx, companyID, n); err != nil {
			return err
		}
	}
	for _, n := range changes.NovedadesModified {
		n.PeriodID = periodID
		if err := a.drafts.UpdateNovedad(ctx, companyID, n); err != nil {
			return err
		}
	}
	for _, novedadID := range changes.NovedadesDeleted {
		if err := a.drafts.DeleteNovedad(ctx, companyID, novedadID); err != nil {
			return err
		}
	}
	return nil
}

func applyOverride(e *draft.Employee, field string, value float64) {
	switch field {
	case "baseSalary":
		e.BaseSalary = value
	case "workedDays":
		e.WorkedDays = value
	case "extraHours":
		e.ExtraHours = value
	case "incapacityDays":
		e.IncapacityDays = value
	case "bonuses":
		e.Bonuses = value
	case "absences":
		e.Absences = value
	}
}
