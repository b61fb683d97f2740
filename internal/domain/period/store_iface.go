package period

import "context"

type StoreAPI interface {
	GetPeriod(ctx context.Context, companyID, periodID string) (Period, error)
	ListPeriods(ctx context.Context, companyID string, limit, offset int) ([]Period, error)
	CountPeriods(ctx context.Context, companyID string) (int, error)
	CreatePeriod(ctx context.Context, companyID string, rng Range) (string, error)
	UpdateStatus(ctx context.Context, companyID, periodID, status string) error
	UpdateActivity(ctx context.Context, companyID, periodID string) error
	MarkReported(ctx context.Context, companyID, periodID string) error
	OpenPeriods(ctx context.Context, companyID string) ([]Period, error)
	LatestPeriod(ctx context.Context, companyID string) (Period, error)
	DeleteDuplicateOpenPeriods(ctx context.Context, companyID string) (int, error)
	CountOverlappingPeriods(ctx context.Context, companyID string) (int, error)
	CompanySettings(ctx context.Context, companyID string) (Settings, error)
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
