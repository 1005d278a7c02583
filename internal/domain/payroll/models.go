package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"carepay/internal/domain/leave"
)

// Employee is the read-only slice of the employment record the engine
// needs. PayLevel and PayPoint key into the tenant's pay scale.
type Employee struct {
	ID             string               `json:"id"`
	TenantID       string               `json:"tenantId"`
	EmploymentType leave.EmploymentType `json:"employmentType"`
	PayLevel       int                  `json:"payLevel"`
	PayPoint       int                  `json:"payPoint"`
}

type PayScale struct {
	TenantID   string          `json:"tenantId"`
	Level      int             `json:"level"`
	PayPoint   int             `json:"payPoint"`
	HourlyRate decimal.Decimal `json:"hourlyRate"`
}

type Timesheet struct {
	UserID         string          `json:"userId"`
	TenantID       string          `json:"tenantId"`
	PayPeriodStart time.Time       `json:"payPeriodStart"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	Status         string          `json:"status"`
}

// Calculation is one employee's pay-period result. Every monetary field is
// rounded to cents before it leaves the engine.
type Calculation struct {
	GrossPay          decimal.Decimal `json:"grossPay"`
	TaxWithheld       decimal.Decimal `json:"taxWithheld"`
	MedicareLevy      decimal.Decimal `json:"medicareLevy"`
	SuperContribution decimal.Decimal `json:"superContribution"`
	NetPay            decimal.Decimal `json:"netPay"`
	HoursWorked       decimal.Decimal `json:"hoursWorked"`
	LeaveAccrued      leave.Accrued   `json:"leaveAccrued"`
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Rules carries the flat statutory rates the orchestrator applies.
// MinimumHourlyRate is the fallback when no pay-scale row exists for an
// employee's level and point.
type Rules struct {
	MedicareLevyRate   decimal.Decimal
	SuperGuaranteeRate decimal.Decimal
	MinimumHourlyRate  decimal.Decimal
}
