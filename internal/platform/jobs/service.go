// Package jobs runs background maintenance work: the periodic period
// detection sweep and any one-off tasks the handlers enqueue. Every run
// lands in job_runs for inspection.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nomina/internal/domain/detect"
	"nomina/internal/domain/period"
	"nomina/internal/platform/config"
	"nomina/internal/platform/metrics"
	"nomina/internal/platform/realtime"
)

const (
	JobDetectionSweep = "period_detection_sweep"
	JobReportExport   = "report_export"
)

type Service struct {
	DB       *pgxpool.Pool
	Cfg      config.Config
	detector *detect.Detector
	periods  period.StoreAPI
	hub      *realtime.Hub
	metrics  *metrics.Collector
	queue    chan job
}

type job struct {
	Type      string
	CompanyID string
	Run       func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, detector *detect.Detector, periods period.StoreAPI, hub *realtime.Hub, collector *metrics.Collector) *Service {
	return &Service{
		DB:       db,
		Cfg:      cfg,
		detector: detector,
		periods:  periods,
		hub:      hub,
		metrics:  collector,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.DetectionInterval > 0 {
		go s.scheduleDetection(ctx, s.Cfg.DetectionInterval)
	}
}

func (s *Service) Enqueue(jobType, companyID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, CompanyID: companyID, Run: run}:
	default:
		slog.Warn("job queue full", "job_type", jobType, "company_id", companyID)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, companyID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, CompanyID: companyID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "job_type", j.Type, "company_id", j.CompanyID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (company_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.CompanyID, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

// scheduleDetection re-runs classification for every company on a
// timer. A sweep that uncovers duplicates triggers the cleanup inside
// the detector; the resulting action is pushed to connected clients so
// open dashboards refresh without polling.
func (s *Service) scheduleDetection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			companies, err := s.periods.ListCompanyIDs(ctx)
			if err != nil {
				slog.Warn("detection sweep company lookup failed", "err", err)
				continue
			}
			for _, companyID := range companies {
				company := companyID
				s.Enqueue(JobDetectionSweep, company, func(ctx context.Context) (any, error) {
					res := s.detector.Detect(ctx, company)
					if s.metrics != nil {
						s.metrics.RecordDetection()
					}
					if s.hub != nil && res.Action != detect.ActionResume {
						s.hub.Publish(company, realtime.Event{
							EventType: realtime.EventUpdate,
							Table:     "payroll_periods",
							New:       res,
						})
					}
					return res, nil
				})
			}
		}
	}
}
