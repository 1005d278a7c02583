package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFinancialYearStart(t *testing.T) {
	cases := []struct {
		asOf time.Time
		want time.Time
	}{
		{time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC), time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.June, 30, 23, 59, 0, 0, time.UTC), time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := FinancialYearStart(tc.asOf); !got.Equal(tc.want) {
			t.Fatalf("FinancialYearStart(%v) = %v, want %v", tc.asOf, got, tc.want)
		}
	}
}

func TestLiveYearToDateGrossSumsPaidOnly(t *testing.T) {
	asOf := time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.timesheets = []Timesheet{
		{UserID: "u1", TenantID: "t1", PayPeriodStart: time.Date(2026, time.July, 6, 0, 0, 0, 0, time.UTC), TotalEarnings: decimal.RequireFromString("1600"), Status: TimesheetStatusPaid},
		{UserID: "u1", TenantID: "t1", PayPeriodStart: time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC), TotalEarnings: decimal.RequireFromString("1550.50"), Status: TimesheetStatusPaid},
		{UserID: "u1", TenantID: "t1", PayPeriodStart: time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC), TotalEarnings: decimal.RequireFromString("1600"), Status: TimesheetStatusApproved},
		// Previous financial year, must be excluded by the window.
		{UserID: "u1", TenantID: "t1", PayPeriodStart: time.Date(2026, time.June, 8, 0, 0, 0, 0, time.UTC), TotalEarnings: decimal.RequireFromString("900"), Status: TimesheetStatusPaid},
	}

	svc := newTestService(store).WithClock(func() time.Time { return asOf })
	got, err := svc.LiveYearToDateGross(context.Background(), "u1", "t1", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StringFixed(2) != "3150.50" {
		t.Fatalf("expected 3150.50, got %s", got.StringFixed(2))
	}
}
