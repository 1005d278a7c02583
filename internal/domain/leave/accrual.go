package leave

import (
	"github.com/shopspring/decimal"

	"carepay/internal/money"
)

// Calculator converts hours worked into accrued leave using the injected
// rate table.
type Calculator struct {
	table RateTable
}

func NewCalculator(table RateTable) *Calculator {
	return &Calculator{table: table}
}

// Accrue returns the leave earned for hoursWorked. Accrual is linear in
// hours within a category. An employment type with no row in the table
// falls back to the casual row; casuals trade accrual for loading, so the
// fallback accrues nothing rather than failing the pay run.
func (c *Calculator) Accrue(employmentType EmploymentType, hoursWorked decimal.Decimal) Accrued {
	rates, ok := c.table[employmentType]
	if !ok {
		rates = c.table[Casual]
	}
	return Accrued{
		Annual:      money.RoundHours(hoursWorked.Mul(rates.Annual)),
		Sick:        money.RoundHours(hoursWorked.Mul(rates.Sick)),
		Personal:    money.RoundHours(hoursWorked.Mul(rates.Personal)),
		LongService: money.RoundHours(hoursWorked.Mul(rates.LongService)),
	}
}
