// Package reports renders a closed or in-progress period as a PDF
// summary or a CSV register for download.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"nomina/internal/domain/draft"
	"nomina/internal/domain/period"
)

// DraftReader is the slice of the draft store the reports need.
type DraftReader interface {
	ListDraftEmployees(ctx context.Context, companyID, periodID string) ([]draft.Employee, error)
}

type PeriodReader interface {
	GetPeriod(ctx context.Context, companyID, periodID string) (period.Period, error)
}

type Service struct {
	periods PeriodReader
	drafts  DraftReader
}

func NewService(periods PeriodReader, drafts DraftReader) *Service {
	return &Service{periods: periods, drafts: drafts}
}

// PeriodSummaryPDF renders the period totals and a per-employee table.
// The document is returned in memory; handlers stream it directly.
func (s *Service) PeriodSummaryPDF(ctx context.Context, companyID, periodID string) ([]byte, error) {
	p, err := s.periods.GetPeriod(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	employees, err := s.drafts.ListDraftEmployees(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	summary := draft.Aggregate(employees)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Resumen de Nomina")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Periodo: %s (%s a %s)", p.Label,
		p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Estado: %s", p.DisplayStatus))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Empleados: %d (%d validos)", summary.TotalEmployees, summary.ValidEmployees))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Devengado total: %s", summary.TotalGrossPay.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Deducciones: %s", summary.TotalDeductions.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Neto a pagar: %s", summary.TotalNetPay.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Costo total de nomina: %s", summary.TotalPayrollCost.StringFixed(2)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{60, 32, 20, 32, 32, 32, 32, 20}
	headers := []string{"Empleado", "Salario base", "Dias", "Devengado", "Deducciones", "Neto", "Aportes patron", "Estado"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, e := range employees {
		pdf.CellFormat(widths[0], 6, e.FullName, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.2f", e.BaseSalary), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.1f", e.WorkedDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, e.GrossPay.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, e.Deductions.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, e.NetPay.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 6, e.EmployerContributions.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[7], 6, e.Status, "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PayrollCSV exports the period's employee lines as a flat register.
func (s *Service) PayrollCSV(ctx context.Context, companyID, periodID string) ([]byte, error) {
	if _, err := s.periods.GetPeriod(ctx, companyID, periodID); err != nil {
		return nil, err
	}
	employees, err := s.drafts.ListDraftEmployees(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{
		"employee_id", "full_name", "base_salary", "worked_days", "extra_hours",
		"incapacity_days", "bonuses", "absences", "transport_allowance",
		"gross_pay", "ibc", "deductions", "net_pay", "employer_contributions", "status",
	}); err != nil {
		return nil, err
	}
	for _, e := range employees {
		record := []string{
			e.EmployeeID,
			e.FullName,
			fmt.Sprintf("%.2f", e.BaseSalary),
			fmt.Sprintf("%.1f", e.WorkedDays),
			fmt.Sprintf("%.1f", e.ExtraHours),
			fmt.Sprintf("%.1f", e.IncapacityDays),
			fmt.Sprintf("%.2f", e.Bonuses),
			fmt.Sprintf("%.1f", e.Absences),
			e.TransportAllowance.StringFixed(2),
			e.GrossPay.StringFixed(2),
			e.IBC.StringFixed(2),
			e.Deductions.StringFixed(2),
			e.NetPay.StringFixed(2),
			e.EmployerContributions.StringFixed(2),
			e.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
