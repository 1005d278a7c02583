package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"carepay/internal/domain/payroll"
	"carepay/internal/platform/config"
	"carepay/internal/platform/metrics"
)

const JobPayRun = "pay_run"

// PayRunner is the slice of the payroll service the scheduler needs.
type PayRunner interface {
	RunPayRun(ctx context.Context, tenantID string) (payroll.PayRunSummary, error)
}

// Service runs background pay runs on a fixed interval and records every
// run in job_runs for audit. Jobs go through a bounded queue worked by a
// single goroutine, so two schedulers can never run the same tenant's pay
// run concurrently.
type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Runner  PayRunner
	Metrics *metrics.Collector
	queue   chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, runner PayRunner, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Runner:  runner,
		Metrics: collector,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.PayRunInterval > 0 {
		go s.schedulePayRuns(ctx, s.Cfg.PayRunInterval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

// RunNow executes a pay run for one tenant synchronously, bypassing the
// queue. Used by the HTTP trigger endpoint.
func (s *Service) RunNow(ctx context.Context, tenantID string) (payroll.PayRunSummary, error) {
	out, err := s.runJob(ctx, job{Type: JobPayRun, TenantID: tenantID, Run: func(ctx context.Context) (any, error) {
		return s.payRun(ctx, tenantID)
	}})
	summary, _ := out.(payroll.PayRunSummary)
	return summary, err
}

func (s *Service) payRun(ctx context.Context, tenantID string) (payroll.PayRunSummary, error) {
	summary, err := s.Runner.RunPayRun(ctx, tenantID)
	if err == nil && s.Metrics != nil {
		s.Metrics.RecordPayRun(summary.EmployeesPaid, summary.Failures)
	}
	return summary, err
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.TenantID, j.Type, "running").Scan(&runID); err != nil {
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

func (s *Service) schedulePayRuns(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := s.listTenants(ctx)
			if err != nil {
				slog.Warn("pay run scheduler tenant lookup failed", "err", err)
				continue
			}
			for _, tenantID := range tenants {
				tenant := tenantID
				s.Enqueue(JobPayRun, tenant, func(ctx context.Context) (any, error) {
					return s.payRun(ctx, tenant)
				})
			}
		}
	}
}

func (s *Service) listTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants`)
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
	return ids, nil
}
