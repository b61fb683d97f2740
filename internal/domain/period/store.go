package period

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Settings is the per-company payroll configuration the detector needs.
type Settings struct {
	Periodicity string
	FiscalStart time.Time
}

// translateNotFound maps the driver's empty-result to the package
// sentinel so callers never match on pgx internals.
func translateNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPeriodNotFound
	}
	return err
}

const periodColumns = `
    id, company_id, label, start_date, end_date, period_type, status,
    reported_to_dian, employees_count, last_activity_at, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.CompanyID, &p.Label, &p.StartDate, &p.EndDate,
		&p.Type, &p.Status, &p.ReportedToDian, &p.EmployeesCount,
		&p.LastActivityAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Period{}, err
	}
	p.DisplayStatus = DisplayState(p.Status)
	return p, nil
}

func (s *Store) GetPeriod(ctx context.Context, companyID, periodID string) (Period, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+periodColumns+`
    FROM payroll_periods
    WHERE company_id = $1 AND id = $2
  `, companyID, periodID)
	p, err := scanPeriod(row)
	return p, translateNotFound(err)
}

func (s *Store) ListPeriods(ctx context.Context, companyID string, limit, offset int) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+periodColumns+`
    FROM payroll_periods
    WHERE company_id = $1
    ORDER BY start_date DESC
    LIMIT $2 OFFSET $3
  `, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) CountPeriods(ctx context.Context, companyID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payroll_periods WHERE company_id = $1", companyID).Scan(&count)
	return count, err
}

func (s *Store) CreatePeriod(ctx context.Context, companyID string, rng Range) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_periods (company_id, label, start_date, end_date, period_type, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, companyID, rng.Label, rng.StartDate, rng.EndDate, rng.Type, StatusBorrador).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateStatus(ctx context.Context, companyID, periodID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_periods
    SET status = $1, updated_at = now()
    WHERE company_id = $2 AND id = $3
  `, status, companyID, periodID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

// UpdateActivity bumps the draft activity timestamp; called by the
// auto-save path after every successful persist.
func (s *Store) UpdateActivity(ctx context.Context, companyID, periodID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE payroll_periods
    SET last_activity_at = now()
    WHERE company_id = $1 AND id = $2
  `, companyID, periodID)
	return err
}

func (s *Store) MarkReported(ctx context.Context, companyID, periodID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_periods
    SET reported_to_dian = TRUE, updated_at = now()
    WHERE company_id = $1 AND id = $2
  `, companyID, periodID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

// OpenPeriods returns periods still accepting draft mutations, oldest first.
func (s *Store) OpenPeriods(ctx context.Context, companyID string) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+periodColumns+`
    FROM payroll_periods
    WHERE company_id = $1 AND status IN ($2, $3)
    ORDER BY start_date ASC
  `, companyID, StatusBorrador, StatusReabierto)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) LatestPeriod(ctx context.Context, companyID string) (Period, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+periodColumns+`
    FROM payroll_periods
    WHERE company_id = $1
    ORDER BY end_date DESC
    LIMIT 1
  `, companyID)
	p, err := scanPeriod(row)
	return p, translateNotFound(err)
}

// DeleteDuplicateOpenPeriods removes open periods sharing an exact date
// range with an older sibling, keeping the earliest created one. Returns
// the number of rows removed.
func (s *Store) DeleteDuplicateOpenPeriods(ctx context.Context, companyID string) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM payroll_periods p
    USING payroll_periods keep
    WHERE p.company_id = $1
      AND keep.company_id = p.company_id
      AND keep.start_date = p.start_date
      AND keep.end_date = p.end_date
      AND p.status IN ($2, $3)
      AND keep.status IN ($2, $3)
      AND keep.created_at < p.created_at
  `, companyID, StatusBorrador, StatusReabierto)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CountOverlappingPeriods counts distinct pairs of periods whose date
// ranges intersect; anything above zero means the timeline is inconsistent.
func (s *Store) CountOverlappingPeriods(ctx context.Context, companyID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM payroll_periods a
    JOIN payroll_periods b
      ON a.company_id = b.company_id AND a.id < b.id
     AND a.start_date <= b.end_date AND b.start_date <= a.end_date
    WHERE a.company_id = $1
  `, companyID).Scan(&count)
	return count, err
}

func (s *Store) CompanySettings(ctx context.Context, companyID string) (Settings, error) {
	var out Settings
	err := s.DB.QueryRow(ctx, `
    SELECT periodicity, fiscal_start
    FROM company_settings
    WHERE company_id = $1
  `, companyID).Scan(&out.Periodicity, &out.FiscalStart)
	return out, translateNotFound(err)
}

func (s *Store) ListCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM companies ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
