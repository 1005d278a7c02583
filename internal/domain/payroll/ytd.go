package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"carepay/internal/money"
)

// FinancialYearStart returns July 1 of the financial year containing asOf.
func FinancialYearStart(asOf time.Time) time.Time {
	year := asOf.Year()
	if asOf.Month() < time.July {
		year--
	}
	return time.Date(year, time.July, 1, 0, 0, 0, 0, asOf.Location())
}

// LiveYearToDateGross recomputes year-to-date gross earnings from the paid
// timesheet ledger. Caller-supplied YTD figures are never trusted: the
// ledger is the authority, which also makes repeated payroll runs for the
// same period idempotent.
func (s *Service) LiveYearToDateGross(ctx context.Context, userID, tenantID string, asOf time.Time) (decimal.Decimal, error) {
	timesheets, err := s.store.ListPaidTimesheets(ctx, userID, tenantID, FinancialYearStart(asOf), asOf)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, ts := range timesheets {
		if ts.Status != TimesheetStatusPaid {
			continue
		}
		total = total.Add(ts.TotalEarnings)
	}
	return money.Round(total), nil
}
