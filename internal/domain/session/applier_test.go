package session

import (
	"context"
	"testing"

	"nomina/internal/domain/draft"
)

type memDrafts struct {
	employees []draft.Employee

	saved        []draft.Employee
	savedRemoved []string
	created      []draft.Novedad
	updated      []draft.Novedad
	deleted      []string
}

func (m *memDrafts) ListDraftEmployees(ctx context.Context, companyID, periodID string) ([]draft.Employee, error) {
	return m.employees, nil
}

func (m *memDrafts) SaveDraftEmployees(ctx context.Context, companyID, periodID string, employees []draft.Employee, removedIDs []string) error {
	m.saved = employees
	m.savedRemoved = removedIDs
	return nil
}

func (m *memDrafts) CreateNovedad(ctx context.Context, companyID string, n draft.Novedad) (string, error) {
	m.created = append(m.created, n)
	return "nv-new", nil
}

func (m *memDrafts) UpdateNovedad(ctx context.Context, companyID string, n draft.Novedad) error {
	m.updated = append(m.updated, n)
	return nil
}

func (m *memDrafts) DeleteNovedad(ctx context.Context, companyID, novedadID string) error {
	m.deleted = append(m.deleted, novedadID)
	return nil
}

func testRules() draft.Rules {
	return draft.DefaultRules(1300000, 162000)
}

func TestApplierEmptyChangeSetIsNoOp(t *testing.T) {
	drafts := &memDrafts{}
	err := NewApplier(drafts, testRules()).ApplyChanges(context.Background(), "c1", "p1", ChangeSet{})
	if err != nil {
		t.Fatalf("empty change set failed: %v", err)
	}
	if drafts.saved != nil {
		t.Fatal("empty change set must not persist anything")
	}
}

func TestApplierAppliesOverridesAndAdditions(t *testing.T) {
	drafts := &memDrafts{employees: []draft.Employee{
		{EmployeeID: "e1", FullName: "Ana", BaseSalary: 2000000, WorkedDays: 30, HealthFund: "EPS", PensionFund: "AFP"},
		{EmployeeID: "e2", FullName: "Luis", BaseSalary: 1500000, WorkedDays: 30, HealthFund: "EPS", PensionFund: "AFP"},
	}}
	applier := NewApplier(drafts, testRules())

	err := applier.ApplyChanges(context.Background(), "c1", "p1", ChangeSet{
		AddedEmployees:   []string{"e3"},
		RemovedEmployees: []string{"e2"},
		FieldOverrides: map[string]map[string]float64{
			"e1": {"baseSalary": 2500000},
		},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	byID := map[string]draft.Employee{}
	for _, e := range drafts.saved {
		byID[e.EmployeeID] = e
	}

	if _, ok := byID["e2"]; ok {
		t.Fatal("removed employee must not be persisted")
	}
	if len(drafts.savedRemoved) != 1 || drafts.savedRemoved[0] != "e2" {
		t.Fatalf("expected e2 in removed ids, got %v", drafts.savedRemoved)
	}

	e1, ok := byID["e1"]
	if !ok {
		t.Fatal("existing employee missing from snapshot")
	}
	if e1.BaseSalary != 2500000 {
		t.Fatalf("override not applied, baseSalary=%v", e1.BaseSalary)
	}
	if e1.NetPay.IsZero() {
		t.Fatal("snapshot must be recomputed before persisting")
	}

	e3, ok := byID["e3"]
	if !ok {
		t.Fatal("added employee missing from snapshot")
	}
	if e3.WorkedDays != 30 {
		t.Fatalf("added employee must default to a full period, got %v days", e3.WorkedDays)
	}
}

func TestApplierSettlesNovedadDiff(t *testing.T) {
	drafts := &memDrafts{}
	applier := NewApplier(drafts, testRules())

	err := applier.ApplyChanges(context.Background(), "c1", "p1", ChangeSet{
		NovedadesAdded:    []draft.Novedad{{EmployeeID: "e1", Tipo: draft.NovedadHorasExtra, Hours: 4}},
		NovedadesModified: []draft.Novedad{{ID: "nv1", EmployeeID: "e1", Tipo: draft.NovedadBonificacion, Amount: 50000}},
		NovedadesDeleted:  []string{"nv2"},
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if len(drafts.created) != 1 || drafts.created[0].Tipo != draft.NovedadHorasExtra {
		t.Fatalf("expected one created novedad, got %v", drafts.created)
	}
	if len(drafts.updated) != 1 || drafts.updated[0].ID != "nv1" {
		t.Fatalf("expected one updated novedad, got %v", drafts.updated)
	}
	if len(drafts.deleted) != 1 || drafts.deleted[0] != "nv2" {
		t.Fatalf("expected one deleted novedad, got %v", drafts.deleted)
	}
}
