package tax

import (
	"context"

	"github.com/shopspring/decimal"

	"carepay/internal/money"
)

// BracketSource supplies the ordered bracket set for a tax year. The pgx
// Store is the production implementation; tests inject a static one.
type BracketSource interface {
	BracketsFor(ctx context.Context, taxYear int) ([]Bracket, error)
}

// Calculator estimates per-pay-period PAYG withholding from an annualised
// run-rate. This is deliberately an approximation in the style of the
// simplified withholding tables, not a marginal-rate reconciliation.
type Calculator struct {
	rules Rules
	table BracketSource
}

func NewCalculator(rules Rules, table BracketSource) *Calculator {
	return &Calculator{rules: rules, table: table}
}

// Withholding returns the amount to withhold from one pay period.
// annualIncome is the year-to-date gross including the current period;
// the annualised estimate is the larger of that figure and the current
// period's gross at run-rate, so a first pay run of the year still lands
// in the right bracket and a high YTD lifts the estimate later on.
func (c *Calculator) Withholding(ctx context.Context, annualIncome, periodGross decimal.Decimal) (decimal.Decimal, error) {
	annualised := decimal.Max(annualIncome, periodGross.Mul(decimal.NewFromInt(int64(c.rules.PeriodsPerYear))))
	if annualised.LessThanOrEqual(c.rules.TaxFreeThreshold) {
		return decimal.Zero, nil
	}

	brackets, err := c.table.BracketsFor(ctx, c.rules.TaxYear)
	if err != nil {
		return decimal.Zero, err
	}

	annual, err := annualTax(brackets, annualised)
	if err != nil {
		return decimal.Zero, err
	}
	return money.Round(annual.Div(decimal.NewFromInt(int64(c.rules.PeriodsPerYear)))), nil
}

// annualTax selects the single highest bracket whose MinIncome is strictly
// below the annualised income. BaseTax already accumulates the lower
// brackets, so only that one bracket contributes.
func annualTax(brackets []Bracket, annualised decimal.Decimal) (decimal.Decimal, error) {
	idx := -1
	for i := range brackets {
		if brackets[i].MinIncome.LessThan(annualised) {
			idx = i
		}
	}
	if idx < 0 {
		return decimal.Zero, ErrBracketConfig
	}

	b := brackets[idx]
	top := annualised
	if b.MaxIncome.Valid && b.MaxIncome.Decimal.LessThan(annualised) {
		top = b.MaxIncome.Decimal
	}
	return b.BaseTax.Add(top.Sub(b.MinIncome).Mul(b.Rate)), nil
}
