package tax

import (
	"github.com/shopspring/decimal"
)

// Bracket is one row of the progressive withholding table. BaseTax is the
// cumulative tax owed below MinIncome, so a single bracket is enough to
// compute the full annual liability. MaxIncome is invalid on the unbounded
// top bracket.
type Bracket struct {
	TaxYear   int                 `json:"taxYear"`
	MinIncome decimal.Decimal     `json:"minIncome"`
	MaxIncome decimal.NullDecimal `json:"maxIncome"`
	Rate      decimal.Decimal     `json:"rate"`
	BaseTax   decimal.Decimal     `json:"baseTax"`
}

// Rules carries the withholding constants for one tax year. Defaults are
// the statutory brackets seeded on first access when the table is empty.
type Rules struct {
	TaxYear          int
	PeriodsPerYear   int
	TaxFreeThreshold decimal.Decimal
	Defaults         []Bracket
}

// ValidateBrackets checks a loaded set covers [0, unbounded) with no gaps,
// no overlaps and exactly one open-ended top bracket. Any violation is a
// configuration defect and must not silently produce wrong tax.
func ValidateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return ErrBracketConfig
	}
	if !brackets[0].MinIncome.IsZero() {
		return ErrBracketConfig
	}
	for i, b := range brackets {
		last := i == len(brackets)-1
		if b.Rate.IsNegative() || b.BaseTax.IsNegative() {
			return ErrBracketConfig
		}
		if last {
			if b.MaxIncome.Valid {
				return ErrBracketConfig
			}
			continue
		}
		if !b.MaxIncome.Valid {
			return ErrBracketConfig
		}
		if !b.MaxIncome.Decimal.GreaterThan(b.MinIncome) {
			return ErrBracketConfig
		}
		if !brackets[i+1].MinIncome.Equal(b.MaxIncome.Decimal) {
			return ErrBracketConfig
		}
	}
	return nil
}
