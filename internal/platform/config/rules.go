package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"carepay/internal/domain/award"
	"carepay/internal/domain/leave"
	"carepay/internal/domain/payroll"
	"carepay/internal/domain/tax"
)

// Ruleset is the versioned statutory configuration the engine runs under:
// tax brackets, levy and super rates, award loadings and the leave accrual
// table. Award and tax figures change with each determination, so they are
// data, not code.
type Ruleset struct {
	Version string
	Tax     tax.Rules
	Award   award.Rules
	Leave   leave.RateTable
	Payroll payroll.Rules
}

type rulesetFile struct {
	Version            string                   `yaml:"version" validate:"required"`
	TaxYear            int                      `yaml:"taxYear" validate:"gte=2000"`
	PayPeriodsPerYear  int                      `yaml:"payPeriodsPerYear" validate:"gt=0"`
	TaxFreeThreshold   float64                  `yaml:"taxFreeThreshold" validate:"gte=0"`
	MedicareLevyRate   float64                  `yaml:"medicareLevyRate" validate:"gte=0,lt=1"`
	SuperGuaranteeRate float64                  `yaml:"superGuaranteeRate" validate:"gte=0,lt=1"`
	MinimumHourlyRate  float64                  `yaml:"minimumHourlyRate" validate:"gt=0"`
	Brackets           []bracketRow             `yaml:"brackets" validate:"required,min=2,dive"`
	Award              awardRow                 `yaml:"award" validate:"required"`
	LeaveAccrual       map[string]leaveRatesRow `yaml:"leaveAccrual" validate:"required,dive"`
}

type bracketRow struct {
	Min  float64  `yaml:"min" validate:"gte=0"`
	Max  *float64 `yaml:"max"`
	Rate float64  `yaml:"rate" validate:"gte=0,lte=1"`
	Base float64  `yaml:"base" validate:"gte=0"`
}

type awardRow struct {
	PublicHolidayLoading    float64 `yaml:"publicHolidayLoading" validate:"gte=0"`
	SaturdayLoading         float64 `yaml:"saturdayLoading" validate:"gte=0"`
	SundayLoading           float64 `yaml:"sundayLoading" validate:"gte=0"`
	SleepoverAllowance      float64 `yaml:"sleepoverAllowance" validate:"gte=0"`
	BrokenShiftAllowance    float64 `yaml:"brokenShiftAllowance" validate:"gte=0"`
	BrokenShiftMinSpanHours float64 `yaml:"brokenShiftMinSpanHours" validate:"gt=0"`
	BrokenShiftMaxPaidHours float64 `yaml:"brokenShiftMaxPaidHours" validate:"gt=0"`
}

type leaveRatesRow struct {
	Annual      float64 `yaml:"annual" validate:"gte=0"`
	Sick        float64 `yaml:"sick" validate:"gte=0"`
	Personal    float64 `yaml:"personal" validate:"gte=0"`
	LongService float64 `yaml:"longService" validate:"gte=0"`
}

// defaultRules are the 2025-26 SCHADS-era statutory figures, used when no
// ruleset file is configured and as the seed for the lazy bracket table.
func defaultRules() rulesetFile {
	upper := func(v float64) *float64 { return &v }
	return rulesetFile{
		Version:            "2025-26",
		TaxYear:            2026,
		PayPeriodsPerYear:  26,
		TaxFreeThreshold:   18200,
		MedicareLevyRate:   0.02,
		SuperGuaranteeRate: 0.115,
		MinimumHourlyRate:  24.10,
		Brackets: []bracketRow{
			{Min: 0, Max: upper(18200), Rate: 0, Base: 0},
			{Min: 18200, Max: upper(45000), Rate: 0.19, Base: 0},
			{Min: 45000, Max: upper(120000), Rate: 0.325, Base: 5092},
			{Min: 120000, Max: upper(180000), Rate: 0.37, Base: 29467},
			{Min: 180000, Rate: 0.45, Base: 51667},
		},
		Award: awardRow{
			PublicHolidayLoading:    1.5,
			SaturdayLoading:         0.25,
			SundayLoading:           0.5,
			SleepoverAllowance:      64.55,
			BrokenShiftAllowance:    21.21,
			BrokenShiftMinSpanHours: 10,
			BrokenShiftMaxPaidHours: 9,
		},
		LeaveAccrual: map[string]leaveRatesRow{
			string(leave.FullTime): {Annual: 0.0769, Sick: 0.0384, Personal: 0.0192, LongService: 0.0167},
			string(leave.PartTime): {Annual: 0.0769, Sick: 0.0384, Personal: 0.0192, LongService: 0.0167},
			string(leave.Casual):   {},
		},
	}
}

// LoadRuleset returns the compiled ruleset. An empty path selects the
// built-in defaults; otherwise the YAML file is decoded, validated and
// compiled. A file that fails validation is a startup error, never a
// silently degraded pay run.
func LoadRuleset(path string) (Ruleset, error) {
	file := defaultRules()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Ruleset{}, fmt.Errorf("read ruleset: %w", err)
		}
		file = rulesetFile{}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Ruleset{}, fmt.Errorf("parse ruleset: %w", err)
		}
	}
	return compileRuleset(file)
}

func compileRuleset(file rulesetFile) (Ruleset, error) {
	if err := validator.New().Struct(file); err != nil {
		return Ruleset{}, fmt.Errorf("invalid ruleset: %w", err)
	}

	brackets := make([]tax.Bracket, len(file.Brackets))
	for i, row := range file.Brackets {
		brackets[i] = tax.Bracket{
			TaxYear:   file.TaxYear,
			MinIncome: decimal.NewFromFloat(row.Min),
			Rate:      decimal.NewFromFloat(row.Rate),
			BaseTax:   decimal.NewFromFloat(row.Base),
		}
		if row.Max != nil {
			brackets[i].MaxIncome = decimal.NullDecimal{Decimal: decimal.NewFromFloat(*row.Max), Valid: true}
		}
	}
	if err := tax.ValidateBrackets(brackets); err != nil {
		return Ruleset{}, fmt.Errorf("invalid ruleset: %w", err)
	}

	table := leave.RateTable{}
	for employmentType, row := range file.LeaveAccrual {
		table[leave.EmploymentType(employmentType)] = leave.Rates{
			Annual:      decimal.NewFromFloat(row.Annual),
			Sick:        decimal.NewFromFloat(row.Sick),
			Personal:    decimal.NewFromFloat(row.Personal),
			LongService: decimal.NewFromFloat(row.LongService),
		}
	}

	return Ruleset{
		Version: file.Version,
		Tax: tax.Rules{
			TaxYear:          file.TaxYear,
			PeriodsPerYear:   file.PayPeriodsPerYear,
			TaxFreeThreshold: decimal.NewFromFloat(file.TaxFreeThreshold),
			Defaults:         brackets,
		},
		Award: award.Rules{
			PublicHolidayLoading:    decimal.NewFromFloat(file.Award.PublicHolidayLoading),
			SaturdayLoading:         decimal.NewFromFloat(file.Award.SaturdayLoading),
			SundayLoading:           decimal.NewFromFloat(file.Award.SundayLoading),
			SleepoverAllowance:      decimal.NewFromFloat(file.Award.SleepoverAllowance),
			BrokenShiftAllowance:    decimal.NewFromFloat(file.Award.BrokenShiftAllowance),
			BrokenShiftMinSpanHours: decimal.NewFromFloat(file.Award.BrokenShiftMinSpanHours),
			BrokenShiftMaxPaidHours: decimal.NewFromFloat(file.Award.BrokenShiftMaxPaidHours),
		},
		Leave: table,
		Payroll: payroll.Rules{
			MedicareLevyRate:   decimal.NewFromFloat(file.MedicareLevyRate),
			SuperGuaranteeRate: decimal.NewFromFloat(file.SuperGuaranteeRate),
			MinimumHourlyRate:  decimal.NewFromFloat(file.MinimumHourlyRate),
		},
	}, nil
}
