package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"

	"nomina/internal/domain/draft"
	"nomina/internal/domain/period"
)

type fakePeriods struct{ p period.Period }

func (f *fakePeriods) GetPeriod(ctx context.Context, companyID, periodID string) (period.Period, error) {
	return f.p, nil
}

type fakeDrafts struct{ employees []draft.Employee }

func (f *fakeDrafts) ListDraftEmployees(ctx context.Context, companyID, periodID string) ([]draft.Employee, error) {
	return f.employees, nil
}

func sampleService() *Service {
	return NewService(
		&fakePeriods{p: period.Period{ID: "p1", Label: "Enero 2026", DisplayStatus: period.DisplayCerrado}},
		&fakeDrafts{employees: []draft.Employee{
			{
				EmployeeID: "e1", FullName: "Ana Gomez", BaseSalary: 2000000, WorkedDays: 30,
				GrossPay:   decimal.NewFromInt(2000000),
				Deductions: decimal.NewFromInt(160000),
				NetPay:     decimal.NewFromInt(1840000),
				Status:     draft.EmployeeStatusValid,
			},
			{
				EmployeeID: "e2", FullName: "Luis Rojas", BaseSalary: 1500000, WorkedDays: 30,
				Status: draft.EmployeeStatusError, Errors: []string{"missing funds"},
			},
		}},
	)
}

func TestPeriodSummaryPDF(t *testing.T) {
	out, err := sampleService().PeriodSummaryPDF(context.Background(), "c1", "p1")
	if err != nil {
		t.Fatalf("pdf generation failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", out[:min(8, len(out))])
	}
}

func TestPayrollCSV(t *testing.T) {
	out, err := sampleService().PayrollCSV(context.Background(), "c1", "p1")
	if err != nil {
		t.Fatalf("csv generation failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[1][1] != "Ana Gomez" || records[1][12] != "1840000.00" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[2][14] != draft.EmployeeStatusError {
		t.Fatalf("error status must survive export, got %v", records[2])
	}
}
