package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetEmployee(ctx context.Context, userID, tenantID string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, employment_type, pay_level, pay_point
    FROM employees
    WHERE id = $1 AND tenant_id = $2
  `, userID, tenantID).Scan(&e.ID, &e.TenantID, &e.EmploymentType, &e.PayLevel, &e.PayPoint)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) GetPayScale(ctx context.Context, tenantID string, level, payPoint int) (PayScale, bool, error) {
	var p PayScale
	err := s.DB.QueryRow(ctx, `
    SELECT tenant_id, level, pay_point, hourly_rate
    FROM pay_scales
    WHERE tenant_id = $1 AND level = $2 AND pay_point = $3
  `, tenantID, level, payPoint).Scan(&p.TenantID, &p.Level, &p.PayPoint, &p.HourlyRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayScale{}, false, nil
	}
	if err != nil {
		return PayScale{}, false, err
	}
	return p, true, nil
}

func (s *Store) ListPaidTimesheets(ctx context.Context, userID, tenantID string, from, to time.Time) ([]Timesheet, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT user_id, tenant_id, pay_period_start, total_earnings, status
    FROM timesheets
    WHERE user_id = $1 AND tenant_id = $2
      AND status = $3
      AND pay_period_start >= $4 AND pay_period_start <= $5
    ORDER BY pay_period_start
  `, userID, tenantID, TimesheetStatusPaid, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timesheets []Timesheet
	for rows.Next() {
		var ts Timesheet
		if err := rows.Scan(&ts.UserID, &ts.TenantID, &ts.PayPeriodStart, &ts.TotalEarnings, &ts.Status); err != nil {
			return nil, err
		}
		timesheets = append(timesheets, ts)
	}
	return timesheets, rows.Err()
}

func (s *Store) SumApprovedTimesheetEarnings(ctx context.Context, userID, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(total_earnings), 0)
    FROM timesheets
    WHERE user_id = $1 AND tenant_id = $2
      AND status = $3
      AND pay_period_start >= $4 AND pay_period_start <= $5
  `, userID, tenantID, TimesheetStatusApproved, from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *Store) ListActiveEmployeeIDs(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id
    FROM employees
    WHERE tenant_id = $1 AND status = 'active'
    ORDER BY id
  `, tenantID)
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
