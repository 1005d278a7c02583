package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"carepay/internal/domain/award"
	"carepay/internal/domain/leave"
	"carepay/internal/domain/tax"
	"carepay/internal/money"
)

// Service orchestrates one employee's pay-period calculation. It is
// stateless apart from its collaborators: every run is a pure function of
// the stored ledger and the injected ruleset, so runs for different
// employees can proceed in parallel.
type Service struct {
	store    StoreAPI
	balances leave.BalanceStore
	tax      *tax.Calculator
	award    *award.Calculator
	accrual  *leave.Calculator
	rules    Rules
	now      func() time.Time
}

func NewService(store StoreAPI, balances leave.BalanceStore, taxCalc *tax.Calculator, awardCalc *award.Calculator, accrual *leave.Calculator, rules Rules) *Service {
	return &Service{
		store:    store,
		balances: balances,
		tax:      taxCalc,
		award:    awardCalc,
		accrual:  accrual,
		rules:    rules,
		now:      time.Now,
	}
}

// WithClock overrides the service clock; tests pin the financial year with it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Calculate produces the pay-period result for one employee. Leave
// accrual is returned but not persisted; callers commit it separately via
// UpdateLeaveBalances once the run is accepted.
func (s *Service) Calculate(ctx context.Context, userID, tenantID string, grossPay decimal.Decimal) (Calculation, error) {
	if grossPay.IsNegative() {
		return Calculation{}, fmt.Errorf("gross pay %s: %w", grossPay, ErrInvalidInput)
	}

	employee, err := s.store.GetEmployee(ctx, userID, tenantID)
	if err != nil {
		return Calculation{}, err
	}

	liveYTD, err := s.LiveYearToDateGross(ctx, userID, tenantID, s.now())
	if err != nil {
		return Calculation{}, fmt.Errorf("year-to-date gross: %w", err)
	}

	withheld, err := s.tax.Withholding(ctx, liveYTD.Add(grossPay), grossPay)
	if err != nil {
		return Calculation{}, fmt.Errorf("withholding: %w", err)
	}

	levy := money.Round(grossPay.Mul(s.rules.MedicareLevyRate))
	// All of gross is treated as ordinary time earnings for now.
	super := money.Round(grossPay.Mul(s.rules.SuperGuaranteeRate))
	net := money.Round(grossPay.Sub(withheld).Sub(levy))

	hourlyRate, err := s.hourlyRate(ctx, employee)
	if err != nil {
		return Calculation{}, err
	}
	hours := money.RoundHours(grossPay.Div(hourlyRate))

	return Calculation{
		GrossPay:          money.Round(grossPay),
		TaxWithheld:       withheld,
		MedicareLevy:      levy,
		SuperContribution: super,
		NetPay:            net,
		HoursWorked:       hours,
		LeaveAccrued:      s.accrual.Accrue(employee.EmploymentType, hours),
	}, nil
}

// ShiftAllowances applies the award rules to a single shift.
func (s *Service) ShiftAllowances(shift award.Shift) (award.Breakdown, error) {
	return s.award.Calculate(shift)
}

// UpdateLeaveBalances commits a previously calculated accrual. The store
// applies it as a single atomic increment.
func (s *Service) UpdateLeaveBalances(ctx context.Context, userID, tenantID string, accrued leave.Accrued) (leave.Balance, error) {
	for _, v := range []decimal.Decimal{accrued.Annual, accrued.Sick, accrued.Personal, accrued.LongService} {
		if v.IsNegative() {
			return leave.Balance{}, fmt.Errorf("negative accrual: %w", ErrInvalidInput)
		}
	}
	return s.balances.UpsertAccrual(ctx, userID, tenantID, accrued)
}

// AccrueLeave computes the accrual for hours worked at the employee's
// employment type and commits it in one step.
func (s *Service) AccrueLeave(ctx context.Context, userID, tenantID string, hoursWorked decimal.Decimal) (leave.Balance, error) {
	if hoursWorked.IsNegative() {
		return leave.Balance{}, fmt.Errorf("hours worked %s: %w", hoursWorked, ErrInvalidInput)
	}
	employee, err := s.store.GetEmployee(ctx, userID, tenantID)
	if err != nil {
		return leave.Balance{}, err
	}
	return s.UpdateLeaveBalances(ctx, userID, tenantID, s.accrual.Accrue(employee.EmploymentType, hoursWorked))
}

// LeaveBalance returns the stored balance, reporting absence without error.
func (s *Service) LeaveBalance(ctx context.Context, userID, tenantID string) (leave.Balance, bool, error) {
	return s.balances.GetBalance(ctx, userID, tenantID)
}

func (s *Service) hourlyRate(ctx context.Context, employee Employee) (decimal.Decimal, error) {
	scale, found, err := s.store.GetPayScale(ctx, employee.TenantID, employee.PayLevel, employee.PayPoint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pay scale lookup: %w", err)
	}
	if !found {
		// No scale row for this level/point: statutory minimum wage applies.
		return s.rules.MinimumHourlyRate, nil
	}
	if !scale.HourlyRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("hourly rate %s for level %d point %d: %w",
			scale.HourlyRate, employee.PayLevel, employee.PayPoint, ErrInvalidInput)
	}
	return scale.HourlyRate, nil
}
