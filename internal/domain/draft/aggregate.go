package draft

import "github.com/shopspring/decimal"

// Aggregate folds a set of computed line items into the period summary.
// It is pure and order-independent: the same multiset of employees always
// yields the same totals. An empty set yields all-zero totals.
func Aggregate(employees []Employee) Summary {
	summary := Summary{
		TotalGrossPay:         decimal.Zero,
		TotalDeductions:       decimal.Zero,
		TotalNetPay:           decimal.Zero,
		EmployerContributions: decimal.Zero,
		TotalPayrollCost:      decimal.Zero,
		DeductionRate:         decimal.Zero,
		Warnings:              map[string]int{},
	}

	for _, e := range employees {
		summary.TotalEmployees++
		if e.Status == EmployeeStatusValid {
			summary.ValidEmployees++
		}
		summary.TotalGrossPay = summary.TotalGrossPay.Add(e.GrossPay)
		summary.TotalDeductions = summary.TotalDeductions.Add(e.Deductions)
		summary.TotalNetPay = summary.TotalNetPay.Add(e.NetPay)
		summary.EmployerContributions = summary.EmployerContributions.Add(e.EmployerContributions)
		for _, warning := range e.Warnings {
			summary.Warnings[warning]++
		}
	}

	summary.TotalPayrollCost = summary.TotalNetPay.Add(summary.EmployerContributions)

	// Guard the rate against an all-zero payroll; a zero rate beats a
	// division blow-up.
	if summary.TotalGrossPay.IsPositive() {
		summary.DeductionRate = summary.TotalDeductions.Div(summary.TotalGrossPay).Round(4)
	}

	return summary
}
