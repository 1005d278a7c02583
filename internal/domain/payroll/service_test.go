package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"carepay/internal/domain/award"
	"carepay/internal/domain/leave"
	"carepay/internal/domain/tax"
)

type fakeStore struct {
	employees  map[string]Employee
	scales     map[string]PayScale
	timesheets []Timesheet
	activeIDs  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: map[string]Employee{},
		scales:    map[string]PayScale{},
	}
}

func (f *fakeStore) addEmployee(e Employee) {
	f.employees[e.TenantID+"/"+e.ID] = e
}

func (f *fakeStore) addScale(p PayScale) {
	f.scales[fmt.Sprintf("%s/%d/%d", p.TenantID, p.Level, p.PayPoint)] = p
}

func (f *fakeStore) GetEmployee(ctx context.Context, userID, tenantID string) (Employee, error) {
	e, ok := f.employees[tenantID+"/"+userID]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeStore) GetPayScale(ctx context.Context, tenantID string, level, payPoint int) (PayScale, bool, error) {
	p, ok := f.scales[fmt.Sprintf("%s/%d/%d", tenantID, level, payPoint)]
	return p, ok, nil
}

func (f *fakeStore) ListPaidTimesheets(ctx context.Context, userID, tenantID string, from, to time.Time) ([]Timesheet, error) {
	var out []Timesheet
	for _, ts := range f.timesheets {
		if ts.UserID != userID || ts.TenantID != tenantID || ts.Status != TimesheetStatusPaid {
			continue
		}
		if ts.PayPeriodStart.Before(from) || ts.PayPeriodStart.After(to) {
			continue
		}
		out = append(out, ts)
	}
	return out, nil
}

func (f *fakeStore) SumApprovedTimesheetEarnings(ctx context.Context, userID, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ts := range f.timesheets {
		if ts.UserID != userID || ts.TenantID != tenantID || ts.Status != TimesheetStatusApproved {
			continue
		}
		if ts.PayPeriodStart.Before(from) || ts.PayPeriodStart.After(to) {
			continue
		}
		total = total.Add(ts.TotalEarnings)
	}
	return total, nil
}

func (f *fakeStore) ListActiveEmployeeIDs(ctx context.Context, tenantID string) ([]string, error) {
	return f.activeIDs, nil
}

type fakeBalances struct {
	balances map[string]leave.Balance
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{balances: map[string]leave.Balance{}}
}

func (f *fakeBalances) GetBalance(ctx context.Context, userID, tenantID string) (leave.Balance, bool, error) {
	b, ok := f.balances[tenantID+"/"+userID]
	return b, ok, nil
}

func (f *fakeBalances) UpsertAccrual(ctx context.Context, userID, tenantID string, accrued leave.Accrued) (leave.Balance, error) {
	key := tenantID + "/" + userID
	b, ok := f.balances[key]
	if !ok {
		b = leave.Balance{UserID: userID, TenantID: tenantID}
	}
	b.AnnualLeave = b.AnnualLeave.Add(accrued.Annual)
	b.SickLeave = b.SickLeave.Add(accrued.Sick)
	b.PersonalLeave = b.PersonalLeave.Add(accrued.Personal)
	b.LongServiceLeave = b.LongServiceLeave.Add(accrued.LongService)
	b.LastUpdated = time.Now()
	f.balances[key] = b
	return b, nil
}

type staticBrackets []tax.Bracket

func (s staticBrackets) BracketsFor(ctx context.Context, taxYear int) ([]tax.Bracket, error) {
	return s, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func maxed(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func testTaxCalculator() *tax.Calculator {
	brackets := staticBrackets{
		{TaxYear: 2026, MinIncome: dec("0"), MaxIncome: maxed("18200"), Rate: dec("0"), BaseTax: dec("0")},
		{TaxYear: 2026, MinIncome: dec("18200"), MaxIncome: maxed("45000"), Rate: dec("0.19"), BaseTax: dec("0")},
		{TaxYear: 2026, MinIncome: dec("45000"), MaxIncome: maxed("120000"), Rate: dec("0.325"), BaseTax: dec("5092")},
		{TaxYear: 2026, MinIncome: dec("120000"), MaxIncome: maxed("180000"), Rate: dec("0.37"), BaseTax: dec("29467")},
		{TaxYear: 2026, MinIncome: dec("180000"), Rate: dec("0.45"), BaseTax: dec("51667")},
	}
	return tax.NewCalculator(tax.Rules{TaxYear: 2026, PeriodsPerYear: 26, TaxFreeThreshold: dec("18200")}, brackets)
}

func testAwardCalculator() *award.Calculator {
	return award.NewCalculator(award.Rules{
		PublicHolidayLoading:    dec("1.5"),
		SaturdayLoading:         dec("0.25"),
		SundayLoading:           dec("0.5"),
		SleepoverAllowance:      dec("64.55"),
		BrokenShiftAllowance:    dec("21.21"),
		BrokenShiftMinSpanHours: dec("10"),
		BrokenShiftMaxPaidHours: dec("9"),
	})
}

func testAccrualCalculator() *leave.Calculator {
	return leave.NewCalculator(leave.RateTable{
		leave.FullTime: leave.Rates{
			Annual:      dec("0.0769"),
			Sick:        dec("0.0384"),
			Personal:    dec("0.0192"),
			LongService: dec("0.0167"),
		},
		leave.PartTime: leave.Rates{
			Annual:      dec("0.0769"),
			Sick:        dec("0.0384"),
			Personal:    dec("0.0192"),
			LongService: dec("0.0167"),
		},
		leave.Casual: leave.Rates{},
	})
}

func testServiceWith(store StoreAPI, balances leave.BalanceStore) *Service {
	rules := Rules{
		MedicareLevyRate:   dec("0.02"),
		SuperGuaranteeRate: dec("0.115"),
		MinimumHourlyRate:  dec("24.10"),
	}
	return NewService(store, balances, testTaxCalculator(), testAwardCalculator(), testAccrualCalculator(), rules)
}

func newTestService(store StoreAPI) *Service {
	return testServiceWith(store, newFakeBalances())
}

func TestCalculateFirstPayRunOfYear(t *testing.T) {
	store := newFakeStore()
	store.addEmployee(Employee{ID: "u1", TenantID: "t1", EmploymentType: leave.FullTime, PayLevel: 2, PayPoint: 1})
	store.addScale(PayScale{TenantID: "t1", Level: 2, PayPoint: 1, HourlyRate: dec("40")})

	svc := newTestService(store).WithClock(func() time.Time {
		return time.Date(2026, time.July, 17, 9, 0, 0, 0, time.UTC)
	})

	got, err := svc.Calculate(context.Background(), "u1", "t1", dec("1600"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TaxWithheld.StringFixed(2) != "171.00" {
		t.Fatalf("expected withholding 171.00, got %s", got.TaxWithheld.StringFixed(2))
	}
	if got.MedicareLevy.StringFixed(2) != "32.00" {
		t.Fatalf("expected levy 32.00, got %s", got.MedicareLevy.StringFixed(2))
	}
	if got.SuperContribution.StringFixed(2) != "184.00" {
		t.Fatalf("expected super 184.00, got %s", got.SuperContribution.StringFixed(2))
	}
	if got.NetPay.StringFixed(2) != "1397.00" {
		t.Fatalf("expected net 1397.00, got %s", got.NetPay.StringFixed(2))
	}
	if !got.HoursWorked.Equal(dec("40")) {
		t.Fatalf("expected 40 hours, got %s", got.HoursWorked)
	}
	if got.LeaveAccrued.Annual.StringFixed(4) != "3.0760" {
		t.Fatalf("expected annual accrual 3.0760, got %s", got.LeaveAccrued.Annual.StringFixed(4))
	}
}

func TestCalculateUnknownEmployee(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.Calculate(context.Background(), "missing", "t1", dec("1600"))
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestCalculateRejectsNegativeGross(t *testing.T) {
	store := newFakeStore()
	store.addEmployee(Employee{ID: "u1", TenantID: "t1", EmploymentType: leave.FullTime})
	svc := newTestService(store)
	_, err := svc.Calculate(context.Background(), "u1", "t1", dec("-1"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculateMissingPayScaleUsesMinimumWage(t *testing.T) {
	store := newFakeStore()
	store.addEmployee(Employee{ID: "u1", TenantID: "t1", EmploymentType: leave.PartTime, PayLevel: 9, PayPoint: 9})

	svc := newTestService(store).WithClock(func() time.Time {
		return time.Date(2026, time.July, 17, 9, 0, 0, 0, time.UTC)
	})

	got, err := svc.Calculate(context.Background(), "u1", "t1", dec("964"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 964 / 24.10 = 40 hours at the statutory minimum.
	if !got.HoursWorked.Equal(dec("40")) {
		t.Fatalf("expected 40 hours at minimum wage, got %s", got.HoursWorked)
	}
}

func TestCalculateRejectsZeroHourlyRate(t *testing.T) {
	store := newFakeStore()
	store.addEmployee(Employee{ID: "u1", TenantID: "t1", EmploymentType: leave.FullTime, PayLevel: 1, PayPoint: 1})
	store.addScale(PayScale{TenantID: "t1", Level: 1, PayPoint: 1, HourlyRate: dec("0")})

	svc := newTestService(store)
	_, err := svc.Calculate(context.Background(), "u1", "t1", dec("1600"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addEmployee(Employee{ID: "u1", TenantID: "t1", EmploymentType: leave.FullTime, PayLevel: 2, PayPoint: 1})
	store.addScale(PayScale{TenantID: "t1", Level: 2, PayPoint: 1, HourlyRate: dec("40")})
	store.timesheets = []Timesheet{
		{UserID: "u1", TenantID: "t1", PayPeriodStart: time.Date(2026, time.July, 6, 0, 0, 0, 0, time.UTC), TotalEarnings: dec("1600"), Status: TimesheetStatusPaid},
	}

	svc := newTestService(store).WithClock(func() time.Time {
		return time.Date(2026, time.August, 14, 9, 0, 0, 0, time.UTC)
	})

	first, err := svc.Calculate(context.Background(), "u1", "t1", dec("1600"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Calculate(context.Background(), "u1", "t1", dec("1600"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.TaxWithheld.Equal(second.TaxWithheld) || !first.NetPay.Equal(second.NetPay) ||
		!first.HoursWorked.Equal(second.HoursWorked) || !first.LeaveAccrued.Annual.Equal(second.LeaveAccrued.Annual) {
		t.Fatalf("repeated calculation diverged: %+v vs %+v", first, second)
	}
}

func TestUpdateLeaveBalancesAccumulates(t *testing.T) {
	balances := newFakeBalances()
	svc := testServiceWith(newFakeStore(), balances)
	accrued := leave.Accrued{Annual: dec("3.076"), Sick: dec("1.536"), Personal: dec("0.768"), LongService: dec("0.668")}

	if _, err := svc.UpdateLeaveBalances(context.Background(), "u1", "t1", accrued); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.UpdateLeaveBalances(context.Background(), "u1", "t1", accrued)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AnnualLeave.StringFixed(3) != "6.152" {
		t.Fatalf("expected accumulated annual 6.152, got %s", got.AnnualLeave.StringFixed(3))
	}
}

func TestAccrueLeaveUsesEmploymentType(t *testing.T) {
	store := newFakeStore()
	store.addEmployee(Employee{ID: "u1", TenantID: "t1", EmploymentType: leave.FullTime})
	store.addEmployee(Employee{ID: "u2", TenantID: "t1", EmploymentType: leave.Casual})
	svc := testServiceWith(store, newFakeBalances())

	got, err := svc.AccrueLeave(context.Background(), "u1", "t1", dec("40"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AnnualLeave.StringFixed(4) != "3.0760" {
		t.Fatalf("expected annual 3.0760, got %s", got.AnnualLeave.StringFixed(4))
	}

	got, err = svc.AccrueLeave(context.Background(), "u2", "t1", dec("40"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AnnualLeave.IsZero() {
		t.Fatalf("expected zero accrual for casual, got %s", got.AnnualLeave)
	}

	if _, err := svc.AccrueLeave(context.Background(), "u1", "t1", dec("-5")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative hours, got %v", err)
	}
	if _, err := svc.AccrueLeave(context.Background(), "ghost", "t1", dec("10")); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestUpdateLeaveBalancesRejectsNegativeAccrual(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.UpdateLeaveBalances(context.Background(), "u1", "t1", leave.Accrued{Annual: dec("-1")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunPayRun(t *testing.T) {
	store := newFakeStore()
	store.addEmployee(Employee{ID: "u1", TenantID: "t1", EmploymentType: leave.FullTime, PayLevel: 2, PayPoint: 1})
	store.addEmployee(Employee{ID: "u2", TenantID: "t1", EmploymentType: leave.Casual, PayLevel: 1, PayPoint: 1})
	store.addScale(PayScale{TenantID: "t1", Level: 2, PayPoint: 1, HourlyRate: dec("40")})
	store.addScale(PayScale{TenantID: "t1", Level: 1, PayPoint: 1, HourlyRate: dec("32")})
	store.activeIDs = []string{"u1", "u2"}
	store.timesheets = []Timesheet{
		{UserID: "u1", TenantID: "t1", PayPeriodStart: time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC), TotalEarnings: dec("1600"), Status: TimesheetStatusApproved},
	}

	balances := newFakeBalances()
	svc := testServiceWith(store, balances).WithClock(func() time.Time {
		return time.Date(2026, time.August, 21, 9, 0, 0, 0, time.UTC)
	})

	summary, err := svc.RunPayRun(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.EmployeesPaid != 1 || summary.Skipped != 1 || summary.Failures != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.TotalGross.StringFixed(2) != "1600.00" {
		t.Fatalf("expected total gross 1600.00, got %s", summary.TotalGross.StringFixed(2))
	}
	b, ok, err := balances.GetBalance(context.Background(), "u1", "t1")
	if err != nil || !ok {
		t.Fatalf("expected balance for u1, ok=%v err=%v", ok, err)
	}
	if b.AnnualLeave.IsZero() {
		t.Fatal("expected annual leave accrued for u1")
	}
}
