package draft

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

var testRules = DefaultRules(1300000, 162000)

func TestComputeNetEqualsGrossMinusDeductions(t *testing.T) {
	e := Compute(Employee{
		EmployeeID:  "e1",
		BaseSalary:  2600000,
		WorkedDays:  30,
		HealthFund:  "eps-sura",
		PensionFund: "porvenir",
	}, testRules)

	if e.Status != EmployeeStatusValid {
		t.Fatalf("expected valid employee, got %s with errors %v", e.Status, e.Errors)
	}
	if !e.NetPay.Equal(e.GrossPay.Sub(e.Deductions)) {
		t.Fatalf("net %s != gross %s - deductions %s", e.NetPay, e.GrossPay, e.Deductions)
	}
	// At exactly two minimum wages the transport allowance still applies.
	if !e.TransportAllowance.Equal(decimal.NewFromInt(162000)) {
		t.Fatalf("expected full transport allowance, got %s", e.TransportAllowance)
	}
}

func TestComputeNoTransportAllowanceAboveThreshold(t *testing.T) {
	e := Compute(Employee{
		EmployeeID:  "e1",
		BaseSalary:  5000000,
		WorkedDays:  30,
		HealthFund:  "eps-sura",
		PensionFund: "porvenir",
	}, testRules)

	if !e.TransportAllowance.IsZero() {
		t.Fatalf("expected no transport allowance, got %s", e.TransportAllowance)
	}
	// IBC equals gross when there is no allowance to exclude.
	if !e.IBC.Equal(e.GrossPay) {
		t.Fatalf("expected IBC %s to equal gross %s", e.IBC, e.GrossPay)
	}
}

func TestComputeCoercesMalformedNumbers(t *testing.T) {
	e := Compute(Employee{
		EmployeeID:  "e1",
		BaseSalary:  math.NaN(),
		WorkedDays:  math.Inf(1),
		Bonuses:     -500,
		HealthFund:  "eps-sura",
		PensionFund: "porvenir",
	}, testRules)

	for _, field := range []decimal.Decimal{e.GrossPay, e.Deductions, e.NetPay, e.IBC} {
		if !field.IsZero() {
			t.Fatalf("expected zeroed money fields, got %+v", e)
		}
	}
	if len(e.Warnings) < 3 {
		t.Fatalf("expected coercion warnings, got %v", e.Warnings)
	}
	// A NaN salary coerces to zero, which is a blocking validation error.
	if e.Status != EmployeeStatusError {
		t.Fatalf("expected error status, got %s", e.Status)
	}
}

func TestComputeMissingFundsIsRowError(t *testing.T) {
	e := Compute(Employee{EmployeeID: "e1", BaseSalary: 1500000, WorkedDays: 30}, testRules)
	if e.Status != EmployeeStatusError {
		t.Fatalf("expected error status, got %s", e.Status)
	}
	if len(e.Errors) == 0 {
		t.Fatal("expected validation errors")
	}
}

func TestComputeValidIffNoErrors(t *testing.T) {
	cases := []Employee{
		{EmployeeID: "a", BaseSalary: 1300000, WorkedDays: 30, HealthFund: "h", PensionFund: "p"},
		{EmployeeID: "b", BaseSalary: 0, WorkedDays: 30, HealthFund: "h", PensionFund: "p"},
		{EmployeeID: "c", BaseSalary: 1300000, WorkedDays: 45, HealthFund: "h", PensionFund: "p"},
	}
	for _, input := range cases {
		e := Compute(input, testRules)
		valid := e.Status == EmployeeStatusValid
		if valid != (len(e.Errors) == 0) {
			t.Fatalf("employee %s: status %s inconsistent with errors %v", e.EmployeeID, e.Status, e.Errors)
		}
	}
}

func TestComputeAbsencesReducePayableDays(t *testing.T) {
	full := Compute(Employee{EmployeeID: "e1", BaseSalary: 3000000, WorkedDays: 30, HealthFund: "h", PensionFund: "p"}, testRules)
	absent := Compute(Employee{EmployeeID: "e1", BaseSalary: 3000000, WorkedDays: 30, Absences: 5, HealthFund: "h", PensionFund: "p"}, testRules)

	if !absent.GrossPay.LessThan(full.GrossPay) {
		t.Fatalf("expected absences to reduce gross: %s vs %s", absent.GrossPay, full.GrossPay)
	}
}
