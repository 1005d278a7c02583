package payroll

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"carepay/internal/money"
)

// PayRunSummary reports one tenant's batch pay run.
type PayRunSummary struct {
	TenantID      string          `json:"tenantId"`
	Period        Period          `json:"period"`
	EmployeesPaid int             `json:"employeesPaid"`
	Skipped       int             `json:"skipped"`
	Failures      int             `json:"failures"`
	TotalGross    decimal.Decimal `json:"totalGross"`
	TotalNet      decimal.Decimal `json:"totalNet"`
}

// RunPayRun calculates the current fortnight for every active employee of
// a tenant and commits the leave accruals. Gross for each employee is the
// sum of their approved timesheets inside the period; employees with no
// approved time are skipped. Each employee is independent, so one failure
// is recorded and the run continues.
func (s *Service) RunPayRun(ctx context.Context, tenantID string) (PayRunSummary, error) {
	period := CurrentPeriod(s.now())
	summary := PayRunSummary{TenantID: tenantID, Period: period, TotalGross: decimal.Zero, TotalNet: decimal.Zero}

	ids, err := s.store.ListActiveEmployeeIDs(ctx, tenantID)
	if err != nil {
		return summary, err
	}

	for _, userID := range ids {
		gross, err := s.store.SumApprovedTimesheetEarnings(ctx, userID, tenantID, period.Start, period.End)
		if err != nil {
			return summary, err
		}
		if gross.IsZero() {
			summary.Skipped++
			continue
		}

		calc, err := s.Calculate(ctx, userID, tenantID, gross)
		if err != nil {
			slog.Warn("pay run calculation failed", "tenantId", tenantID, "userId", userID, "err", err)
			summary.Failures++
			continue
		}

		if _, err := s.UpdateLeaveBalances(ctx, userID, tenantID, calc.LeaveAccrued); err != nil {
			slog.Warn("leave balance update failed", "tenantId", tenantID, "userId", userID, "err", err)
			summary.Failures++
			continue
		}

		summary.EmployeesPaid++
		summary.TotalGross = money.Round(summary.TotalGross.Add(calc.GrossPay))
		summary.TotalNet = money.Round(summary.TotalNet.Add(calc.NetPay))
	}

	return summary, nil
}
