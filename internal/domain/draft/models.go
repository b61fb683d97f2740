package draft

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EmployeeStatusValid = "valid"
	EmployeeStatusError = "error"

	WarningMalformedNumeric = "malformed_numeric"
	WarningNegativeNet      = "negative_net"
	WarningMissingFunds     = "missing_funds"

	NovedadHorasExtra   = "horas_extra"
	NovedadIncapacidad  = "incapacidad"
	NovedadBonificacion = "bonificacion"
	NovedadAusencia     = "ausencia"
	NovedadVacaciones   = "vacaciones"
	NovedadLicencia     = "licencia"
)

// Employee is one payroll line item inside a draft period. Input fields
// come from the editing UI as plain numbers; the computed money fields are
// owned by Compute and never mutated directly.
type Employee struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employeeId"`
	FullName       string  `json:"fullName"`
	BaseSalary     float64 `json:"baseSalary"`
	WorkedDays     float64 `json:"workedDays"`
	ExtraHours     float64 `json:"extraHours"`
	IncapacityDays float64 `json:"incapacityDays"`
	Bonuses        float64 `json:"bonuses"`
	Absences       float64 `json:"absences"`
	HealthFund     string  `json:"healthFund"`
	PensionFund    string  `json:"pensionFund"`

	GrossPay              decimal.Decimal `json:"grossPay"`
	Deductions            decimal.Decimal `json:"deductions"`
	NetPay                decimal.Decimal `json:"netPay"`
	TransportAllowance    decimal.Decimal `json:"transportAllowance"`
	EmployerContributions decimal.Decimal `json:"employerContributions"`
	IBC                   decimal.Decimal `json:"ibc"`

	Status   string   `json:"status"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// Summary is the period-level aggregate derived from the employee set.
// It is recomputed on every mutation and never persisted as source of truth.
type Summary struct {
	TotalEmployees        int             `json:"totalEmployees"`
	ValidEmployees        int             `json:"validEmployees"`
	TotalGrossPay         decimal.Decimal `json:"totalGrossPay"`
	TotalDeductions       decimal.Decimal `json:"totalDeductions"`
	TotalNetPay           decimal.Decimal `json:"totalNetPay"`
	EmployerContributions decimal.Decimal `json:"employerContributions"`
	TotalPayrollCost      decimal.Decimal `json:"totalPayrollCost"`
	DeductionRate         decimal.Decimal `json:"deductionRate"`
	Warnings              map[string]int  `json:"warnings"`
}

// Novedad is an ad hoc payroll adjustment attached to an employee within
// a period: overtime, incapacity, bonus, absence and the like.
type Novedad struct {
	ID          string     `json:"id"`
	PeriodID    string     `json:"periodId"`
	EmployeeID  string     `json:"employeeId"`
	Tipo        string     `json:"tipo"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Days        float64    `json:"days"`
	Hours       float64    `json:"hours"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func ValidNovedadTipo(tipo string) bool {
	switch tipo {
	case NovedadHorasExtra, NovedadIncapacidad, NovedadBonificacion,
		NovedadAusencia, NovedadVacaciones, NovedadLicencia:
		return true
	}
	return false
}
