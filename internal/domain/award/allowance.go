package award

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"carepay/internal/money"
)

var ErrInvalidShift = errors.New("invalid shift data")

const (
	AllowancePublicHoliday = "public_holiday"
	AllowanceSaturday      = "saturday_penalty"
	AllowanceSunday        = "sunday_penalty"
	AllowanceSleepover     = "sleepover"
	AllowanceBrokenShift   = "broken_shift"
)

// Rules holds the award's penalty loadings and flat allowance amounts.
// Award rates change with each determination, so they are injected from
// the versioned ruleset rather than written as literals here.
type Rules struct {
	PublicHolidayLoading    decimal.Decimal
	SaturdayLoading         decimal.Decimal
	SundayLoading           decimal.Decimal
	SleepoverAllowance      decimal.Decimal
	BrokenShiftAllowance    decimal.Decimal
	BrokenShiftMinSpanHours decimal.Decimal
	BrokenShiftMaxPaidHours decimal.Decimal
}

// Shift is a single rostered shift as supplied by the scheduling side.
// UnpaidBreakMinutes is zero for an unbroken shift; paid hours are the
// wall-clock span minus the unpaid break.
type Shift struct {
	StartTime          time.Time       `json:"startTime"`
	EndTime            time.Time       `json:"endTime"`
	BaseRate           decimal.Decimal `json:"baseRate"`
	UnpaidBreakMinutes int             `json:"unpaidBreakMinutes"`
	IsPublicHoliday    bool            `json:"isPublicHoliday"`
	IsWeekend          bool            `json:"isWeekend"`
	IsSleepover        bool            `json:"isSleepover"`
}

type Allowance struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type Breakdown struct {
	BasePayment  decimal.Decimal `json:"basePayment"`
	Allowances   []Allowance     `json:"allowances"`
	TotalPayment decimal.Decimal `json:"totalPayment"`
}

type Calculator struct {
	rules Rules
}

func NewCalculator(rules Rules) *Calculator {
	return &Calculator{rules: rules}
}

// Calculate applies the award's penalty rules to one shift. The first
// three rules are mutually exclusive and evaluated in order: public
// holiday overrides Saturday, which overrides Sunday. Sleepover and
// broken-shift allowances stack independently. Each component is rounded
// before summation so rounding error cannot compound across components.
func (c *Calculator) Calculate(shift Shift) (Breakdown, error) {
	if shift.EndTime.Before(shift.StartTime) {
		return Breakdown{}, ErrInvalidShift
	}
	if shift.BaseRate.IsNegative() || shift.UnpaidBreakMinutes < 0 {
		return Breakdown{}, ErrInvalidShift
	}

	span := decimal.NewFromFloat(shift.EndTime.Sub(shift.StartTime).Hours())
	paid := span.Sub(decimal.NewFromInt(int64(shift.UnpaidBreakMinutes)).Div(decimal.NewFromInt(60)))
	if paid.IsNegative() {
		return Breakdown{}, ErrInvalidShift
	}

	base := money.Round(paid.Mul(shift.BaseRate))
	out := Breakdown{BasePayment: base, Allowances: []Allowance{}}

	switch {
	case shift.IsPublicHoliday:
		out.Allowances = append(out.Allowances, Allowance{
			Type:        AllowancePublicHoliday,
			Amount:      money.Round(base.Mul(c.rules.PublicHolidayLoading)),
			Description: "Public holiday penalty",
		})
	case shift.IsWeekend && shift.StartTime.Weekday() == time.Saturday:
		out.Allowances = append(out.Allowances, Allowance{
			Type:        AllowanceSaturday,
			Amount:      money.Round(base.Mul(c.rules.SaturdayLoading)),
			Description: "Saturday penalty",
		})
	case shift.IsWeekend && shift.StartTime.Weekday() == time.Sunday:
		out.Allowances = append(out.Allowances, Allowance{
			Type:        AllowanceSunday,
			Amount:      money.Round(base.Mul(c.rules.SundayLoading)),
			Description: "Sunday penalty",
		})
	}

	if shift.IsSleepover {
		out.Allowances = append(out.Allowances, Allowance{
			Type:        AllowanceSleepover,
			Amount:      money.Round(c.rules.SleepoverAllowance),
			Description: "Sleepover allowance",
		})
	}

	if span.GreaterThan(c.rules.BrokenShiftMinSpanHours) && paid.LessThan(c.rules.BrokenShiftMaxPaidHours) {
		out.Allowances = append(out.Allowances, Allowance{
			Type:        AllowanceBrokenShift,
			Amount:      money.Round(c.rules.BrokenShiftAllowance),
			Description: "Broken shift allowance",
		})
	}

	out.TotalPayment = base
	for _, a := range out.Allowances {
		out.TotalPayment = out.TotalPayment.Add(a.Amount)
	}
	out.TotalPayment = money.Round(out.TotalPayment)
	return out, nil
}
