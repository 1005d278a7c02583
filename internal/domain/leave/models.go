package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmploymentType determines which accrual-rate row applies. Anything the
// engine does not recognise is treated as casual, which accrues nothing.
type EmploymentType string

const (
	FullTime EmploymentType = "full-time"
	PartTime EmploymentType = "part-time"
	Casual   EmploymentType = "casual"
)

// Rates are per-hour-worked accrual rates for each leave category.
type Rates struct {
	Annual      decimal.Decimal `json:"annual"`
	Sick        decimal.Decimal `json:"sick"`
	Personal    decimal.Decimal `json:"personal"`
	LongService decimal.Decimal `json:"longService"`
}

// RateTable maps employment type to its accrual rates.
type RateTable map[EmploymentType]Rates

// Accrued is the leave earned in one pay period, in hours.
type Accrued struct {
	Annual      decimal.Decimal `json:"annual"`
	Sick        decimal.Decimal `json:"sick"`
	Personal    decimal.Decimal `json:"personal"`
	LongService decimal.Decimal `json:"longService"`
}

// Balance is the stored running total per (user, tenant). Created on the
// first accrual and only ever incremented by the engine.
type Balance struct {
	UserID           string          `json:"userId"`
	TenantID         string          `json:"tenantId"`
	AnnualLeave      decimal.Decimal `json:"annualLeave"`
	SickLeave        decimal.Decimal `json:"sickLeave"`
	PersonalLeave    decimal.Decimal `json:"personalLeave"`
	LongServiceLeave decimal.Decimal `json:"longServiceLeave"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}
