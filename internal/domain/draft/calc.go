package draft

import (
	"math"

	"github.com/shopspring/decimal"
)

// Statutory rates. Employee deductions are health and pension on the IBC;
// the employer side adds health, pension, ARL and caja de compensación.
var (
	rateHealthEmployee  = decimal.NewFromFloat(0.04)
	ratePensionEmployee = decimal.NewFromFloat(0.04)
	rateHealthEmployer  = decimal.NewFromFloat(0.085)
	ratePensionEmployer = decimal.NewFromFloat(0.12)
	rateARL             = decimal.NewFromFloat(0.00522)
	rateCaja            = decimal.NewFromFloat(0.04)

	extraHourSurcharge = decimal.NewFromFloat(1.25)
	incapacityRate     = decimal.NewFromFloat(2.0 / 3.0)

	daysPerMonth  = decimal.NewFromInt(30)
	hoursPerMonth = decimal.NewFromInt(240)
)

// Rules carries the company-level calculation parameters that change
// year to year by decree.
type Rules struct {
	MinimumWage        decimal.Decimal
	TransportAllowance decimal.Decimal
}

func DefaultRules(minimumWage, transportAllowance int64) Rules {
	return Rules{
		MinimumWage:        decimal.NewFromInt(minimumWage),
		TransportAllowance: decimal.NewFromInt(transportAllowance),
	}
}

// sanitize coerces NaN, infinities and negatives to zero. The editing UI
// has been observed to feed unparsed values through; totals must never
// carry a NaN.
func sanitize(value float64, warnings *[]string) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		*warnings = append(*warnings, WarningMalformedNumeric)
		return decimal.Zero
	}
	if value < 0 {
		*warnings = append(*warnings, WarningMalformedNumeric)
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}

// Compute fills the computed fields of a line item from its inputs. It
// never panics and never produces NaN; problems land in Errors (blocking,
// status becomes "error") or Warnings (coerced, row stays countable).
func Compute(e Employee, rules Rules) Employee {
	e.Errors = nil
	e.Warnings = nil

	baseSalary := sanitize(e.BaseSalary, &e.Warnings)
	workedDays := sanitize(e.WorkedDays, &e.Warnings)
	extraHours := sanitize(e.ExtraHours, &e.Warnings)
	incapacityDays := sanitize(e.IncapacityDays, &e.Warnings)
	bonuses := sanitize(e.Bonuses, &e.Warnings)
	absences := sanitize(e.Absences, &e.Warnings)

	if baseSalary.IsZero() {
		e.Errors = append(e.Errors, "salario base requerido")
	}
	if workedDays.GreaterThan(daysPerMonth) {
		e.Errors = append(e.Errors, "dias trabajados mayores a 30")
	}
	if e.HealthFund == "" || e.PensionFund == "" {
		e.Errors = append(e.Errors, "fondo de salud y pension requeridos")
		e.Warnings = append(e.Warnings, WarningMissingFunds)
	}

	payableDays := workedDays.Sub(absences)
	if payableDays.IsNegative() {
		payableDays = decimal.Zero
	}

	dailyRate := baseSalary.Div(daysPerMonth)
	hourlyRate := baseSalary.Div(hoursPerMonth)

	basePay := dailyRate.Mul(payableDays)
	extraPay := hourlyRate.Mul(extraHourSurcharge).Mul(extraHours)
	incapacityPay := dailyRate.Mul(incapacityRate).Mul(incapacityDays)

	// Transport allowance applies below two minimum wages, prorated by
	// payable days.
	transport := decimal.Zero
	if baseSalary.LessThanOrEqual(rules.MinimumWage.Mul(decimal.NewFromInt(2))) && payableDays.IsPositive() {
		transport = rules.TransportAllowance.Div(daysPerMonth).Mul(payableDays)
	}

	gross := basePay.Add(extraPay).Add(incapacityPay).Add(bonuses).Add(transport)

	// IBC excludes the transport allowance.
	ibc := gross.Sub(transport)
	if ibc.IsNegative() {
		ibc = decimal.Zero
	}

	deductions := ibc.Mul(rateHealthEmployee).Add(ibc.Mul(ratePensionEmployee))
	employer := ibc.Mul(rateHealthEmployer.Add(ratePensionEmployer).Add(rateARL).Add(rateCaja))

	e.GrossPay = gross.Round(2)
	e.Deductions = deductions.Round(2)
	e.NetPay = e.GrossPay.Sub(e.Deductions)
	e.TransportAllowance = transport.Round(2)
	e.EmployerContributions = employer.Round(2)
	e.IBC = ibc.Round(2)

	if e.NetPay.IsNegative() {
		e.Warnings = append(e.Warnings, WarningNegativeNet)
	}

	if len(e.Errors) == 0 {
		e.Status = EmployeeStatusValid
	} else {
		e.Status = EmployeeStatusError
	}
	return e
}

// ComputeAll recomputes every line item against the same rules.
func ComputeAll(employees []Employee, rules Rules) []Employee {
	out := make([]Employee, len(employees))
	for i, e := range employees {
		out[i] = Compute(e, rules)
	}
	return out
}
