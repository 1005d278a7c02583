package tax

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB       *pgxpool.Pool
	defaults []Bracket
}

func NewStore(db *pgxpool.Pool, defaults []Bracket) *Store {
	return &Store{DB: db, defaults: defaults}
}

// BracketsFor returns the ordered bracket set for a tax year, lazily
// seeding the statutory defaults on first access. Seeding uses
// ON CONFLICT DO NOTHING so a concurrent first access racing the insert is
// benign. An empty table after seeding, or a set that fails validation,
// surfaces as ErrBracketConfig.
func (s *Store) BracketsFor(ctx context.Context, taxYear int) ([]Bracket, error) {
	brackets, err := s.listBrackets(ctx, taxYear)
	if err != nil {
		return nil, err
	}
	if len(brackets) == 0 {
		if err := s.insertBrackets(ctx, s.defaultsFor(taxYear)); err != nil {
			return nil, fmt.Errorf("seed tax brackets: %w", err)
		}
		brackets, err = s.listBrackets(ctx, taxYear)
		if err != nil {
			return nil, err
		}
	}
	if len(brackets) == 0 {
		return nil, fmt.Errorf("tax year %d: %w", taxYear, ErrBracketConfig)
	}
	if err := ValidateBrackets(brackets); err != nil {
		return nil, fmt.Errorf("tax year %d: %w", taxYear, err)
	}
	return brackets, nil
}

func (s *Store) listBrackets(ctx context.Context, taxYear int) ([]Bracket, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT tax_year, min_income, max_income, rate, base_tax
    FROM tax_brackets
    WHERE tax_year = $1
    ORDER BY min_income
  `, taxYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brackets []Bracket
	for rows.Next() {
		var b Bracket
		if err := rows.Scan(&b.TaxYear, &b.MinIncome, &b.MaxIncome, &b.Rate, &b.BaseTax); err != nil {
			return nil, err
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

func (s *Store) insertBrackets(ctx context.Context, brackets []Bracket) error {
	for _, b := range brackets {
		_, err := s.DB.Exec(ctx, `
      INSERT INTO tax_brackets (tax_year, min_income, max_income, rate, base_tax)
      VALUES ($1,$2,$3,$4,$5)
      ON CONFLICT (tax_year, min_income) DO NOTHING
    `, b.TaxYear, b.MinIncome, b.MaxIncome, b.Rate, b.BaseTax)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) defaultsFor(taxYear int) []Bracket {
	out := make([]Bracket, len(s.defaults))
	for i, b := range s.defaults {
		b.TaxYear = taxYear
		out[i] = b
	}
	return out
}
