package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StoreAPI is the storage surface the calculator consumes. Production
// code uses the pgx Store; tests inject a fake.
type StoreAPI interface {
	GetEmployee(ctx context.Context, userID, tenantID string) (Employee, error)
	GetPayScale(ctx context.Context, tenantID string, level, payPoint int) (PayScale, bool, error)
	ListPaidTimesheets(ctx context.Context, userID, tenantID string, from, to time.Time) ([]Timesheet, error)
	SumApprovedTimesheetEarnings(ctx context.Context, userID, tenantID string, from, to time.Time) (decimal.Decimal, error)
	ListActiveEmployeeIDs(ctx context.Context, tenantID string) ([]string, error)
}
