package draft

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNovedadNotFound = errors.New("novedad not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// SaveDraftEmployees persists the full draft snapshot in one transaction:
// upserts every line item, removes the explicitly deleted ones, and
// refreshes the period's employee counter.
func (s *Store) SaveDraftEmployees(ctx context.Context, companyID, periodID string, employees []Employee, removedIDs []string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, e := range employees {
		if _, err := tx.Exec(ctx, `
      INSERT INTO payroll_employees (
        period_id, employee_id, full_name, base_salary, worked_days,
        extra_hours, incapacity_days, bonuses, absences, health_fund,
        pension_fund, gross_pay, deductions, net_pay, transport_allowance,
        employer_contributions, ibc, status, errors
      )
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
      ON CONFLICT (period_id, employee_id) DO UPDATE SET
        full_name = EXCLUDED.full_name,
        base_salary = EXCLUDED.base_salary,
        worked_days = EXCLUDED.worked_days,
        extra_hours = EXCLUDED.extra_hours,
        incapacity_days = EXCLUDED.incapacity_days,
        bonuses = EXCLUDED.bonuses,
        absences = EXCLUDED.absences,
        health_fund = EXCLUDED.health_fund,
        pension_fund = EXCLUDED.pension_fund,
        gross_pay = EXCLUDED.gross_pay,
        deductions = EXCLUDED.deductions,
        net_pay = EXCLUDED.net_pay,
        transport_allowance = EXCLUDED.transport_allowance,
        employer_contributions = EXCLUDED.employer_contributions,
        ibc = EXCLUDED.ibc,
        status = EXCLUDED.status,
        errors = EXCLUDED.errors,
        updated_at = now()
    `, periodID, e.EmployeeID, e.FullName, e.BaseSalary, e.WorkedDays,
			e.ExtraHours, e.IncapacityDays, e.Bonuses, e.Absences, e.HealthFund,
			e.PensionFund, e.GrossPay, e.Deductions, e.NetPay, e.TransportAllowance,
			e.EmployerContributions, e.IBC, e.Status, e.Errors); err != nil {
			return err
		}
	}

	for _, employeeID := range removedIDs {
		if _, err := tx.Exec(ctx, `
      DELETE FROM payroll_employees WHERE period_id = $1 AND employee_id = $2
    `, periodID, employeeID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
    UPDATE payroll_periods
    SET employees_count = (SELECT COUNT(1) FROM payroll_employees WHERE period_id = $1),
        last_activity_at = now()
    WHERE company_id = $2 AND id = $1
  `, periodID, companyID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) ListDraftEmployees(ctx context.Context, companyID, periodID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT pe.id, pe.employee_id, pe.full_name, pe.base_salary, pe.worked_days,
           pe.extra_hours, pe.incapacity_days, pe.bonuses, pe.absences,
           pe.health_fund, pe.pension_fund, pe.gross_pay, pe.deductions,
           pe.net_pay, pe.transport_allowance, pe.employer_contributions,
           pe.ibc, pe.status, pe.errors
    FROM payroll_employees pe
    JOIN payroll_periods p ON pe.period_id = p.id
    WHERE p.company_id = $1 AND pe.period_id = $2
    ORDER BY pe.full_name
  `, companyID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.BaseSalary,
			&e.WorkedDays, &e.ExtraHours, &e.IncapacityDays, &e.Bonuses,
			&e.Absences, &e.HealthFund, &e.PensionFund, &e.GrossPay,
			&e.Deductions, &e.NetPay, &e.TransportAllowance,
			&e.EmployerContributions, &e.IBC, &e.Status, &e.Errors); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) CreateNovedad(ctx context.Context, companyID string, n Novedad) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO novedades (period_id, employee_id, tipo, description, amount, days, hours, start_date, end_date)
    SELECT $2, $3, $4, $5, $6, $7, $8, $9, $10
    FROM payroll_periods WHERE company_id = $1 AND id = $2
    RETURNING id
  `, companyID, n.PeriodID, n.EmployeeID, n.Tipo, n.Description, n.Amount,
		n.Days, n.Hours, n.StartDate, n.EndDate).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNovedadNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateNovedad(ctx context.Context, companyID string, n Novedad) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE novedades nv
    SET tipo = $1, description = $2, amount = $3, days = $4, hours = $5,
        start_date = $6, end_date = $7
    FROM payroll_periods p
    WHERE nv.id = $8 AND nv.period_id = p.id AND p.company_id = $9
  `, n.Tipo, n.Description, n.Amount, n.Days, n.Hours, n.StartDate, n.EndDate, n.ID, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNovedadNotFound
	}
	return nil
}

func (s *Store) DeleteNovedad(ctx context.Context, companyID, novedadID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM novedades nv
    USING payroll_periods p
    WHERE nv.id = $1 AND nv.period_id = p.id AND p.company_id = $2
  `, novedadID, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNovedadNotFound
	}
	return nil
}

// CountValidEmployees counts the draft rows that currently compute clean.
// The period close guard refuses to close a period with none.
func (s *Store) CountValidEmployees(ctx context.Context, companyID, periodID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT count(*)
    FROM payroll_employees pe
    JOIN payroll_periods p ON pe.period_id = p.id
    WHERE p.company_id = $1 AND pe.period_id = $2 AND pe.status = 'valid'
  `, companyID, periodID).Scan(&count)
	return count, err
}

func (s *Store) ListNovedades(ctx context.Context, companyID, periodID string) ([]Novedad, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT nv.id, nv.period_id, nv.employee_id, nv.tipo, nv.description,
           nv.amount, nv.days, nv.hours, nv.start_date, nv.end_date, nv.created_at
    FROM novedades nv
    JOIN payroll_periods p ON nv.period_id = p.id
    WHERE p.company_id = $1 AND nv.period_id = $2
    ORDER BY nv.created_at
  `, companyID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var novedades []Novedad
	for rows.Next() {
		var n Novedad
		if err := rows.Scan(&n.ID, &n.PeriodID, &n.EmployeeID, &n.Tipo,
			&n.Description, &n.Amount, &n.Days, &n.Hours, &n.StartDate,
			&n.EndDate, &n.CreatedAt); err != nil {
			return nil, err
		}
		novedades = append(novedades, n)
	}
	return novedades, rows.Err()
}
