package draft

import (
	"testing"

	"github.com/shopspring/decimal"
)

func sampleEmployees() []Employee {
	inputs := []Employee{
		{EmployeeID: "e1", BaseSalary: 1300000, WorkedDays: 30, HealthFund: "h", PensionFund: "p"},
		{EmployeeID: "e2", BaseSalary: 4200000, WorkedDays: 28, ExtraHours: 10, HealthFund: "h", PensionFund: "p"},
		{EmployeeID: "e3", BaseSalary: 2000000, WorkedDays: 30, Bonuses: 250000},
	}
	return ComputeAll(inputs, testRules)
}

func TestAggregateEmptySetIsAllZero(t *testing.T) {
	summary := Aggregate(nil)

	if summary.TotalEmployees != 0 || summary.ValidEmployees != 0 {
		t.Fatalf("expected zero counts, got %+v", summary)
	}
	for _, total := range []decimal.Decimal{
		summary.TotalGrossPay, summary.TotalDeductions, summary.TotalNetPay,
		summary.EmployerContributions, summary.TotalPayrollCost, summary.DeductionRate,
	} {
		if !total.IsZero() {
			t.Fatalf("expected all-zero totals, got %+v", summary)
		}
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	employees := sampleEmployees()

	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	reference := Aggregate(employees)
	for _, perm := range permutations {
		shuffled := make([]Employee, len(employees))
		for i, j := range perm {
			shuffled[i] = employees[j]
		}
		got := Aggregate(shuffled)

		if got.TotalEmployees != reference.TotalEmployees || got.ValidEmployees != reference.ValidEmployees {
			t.Fatalf("counts differ for %v: %+v vs %+v", perm, got, reference)
		}
		if !got.TotalGrossPay.Equal(reference.TotalGrossPay) ||
			!got.TotalDeductions.Equal(reference.TotalDeductions) ||
			!got.TotalNetPay.Equal(reference.TotalNetPay) ||
			!got.EmployerContributions.Equal(reference.EmployerContributions) ||
			!got.TotalPayrollCost.Equal(reference.TotalPayrollCost) {
			t.Fatalf("totals differ for permutation %v", perm)
		}
	}
}

func TestAggregateTotalsMatchLineItems(t *testing.T) {
	employees := sampleEmployees()
	summary := Aggregate(employees)

	gross, deductions, net, employer := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	valid := 0
	for _, e := range employees {
		gross = gross.Add(e.GrossPay)
		deductions = deductions.Add(e.Deductions)
		net = net.Add(e.NetPay)
		employer = employer.Add(e.EmployerContributions)
		if e.Status == EmployeeStatusValid {
			valid++
		}
	}

	if summary.TotalEmployees != len(employees) {
		t.Fatalf("expected %d employees, got %d", len(employees), summary.TotalEmployees)
	}
	if summary.ValidEmployees != valid {
		t.Fatalf("expected %d valid employees, got %d", valid, summary.ValidEmployees)
	}
	if summary.ValidEmployees > summary.TotalEmployees {
		t.Fatal("validEmployees must not exceed totalEmployees")
	}
	if !summary.TotalGrossPay.Equal(gross) || !summary.TotalDeductions.Equal(deductions) || !summary.TotalNetPay.Equal(net) {
		t.Fatalf("summary totals do not match line items: %+v", summary)
	}
	if !summary.TotalPayrollCost.Equal(net.Add(employer)) {
		t.Fatalf("payroll cost %s != net %s + employer %s", summary.TotalPayrollCost, net, employer)
	}
}

func TestAggregateCountsWarnings(t *testing.T) {
	employees := sampleEmployees()
	summary := Aggregate(employees)

	// e3 has no funds configured.
	if summary.Warnings[WarningMissingFunds] != 1 {
		t.Fatalf("expected one missing-funds warning, got %+v", summary.Warnings)
	}
	if summary.ValidEmployees != 2 {
		t.Fatalf("expected two valid employees, got %d", summary.ValidEmployees)
	}
}
