package leave

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BalanceStore is the persistence surface the payroll service commits
// accruals through. The pgx Store is the production implementation.
type BalanceStore interface {
	GetBalance(ctx context.Context, userID, tenantID string) (Balance, bool, error)
	UpsertAccrual(ctx context.Context, userID, tenantID string, accrued Accrued) (Balance, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetBalance(ctx context.Context, userID, tenantID string) (Balance, bool, error) {
	var b Balance
	err := s.DB.QueryRow(ctx, `
    SELECT user_id, tenant_id, annual_leave, sick_leave, personal_leave, long_service_leave, last_updated
    FROM leave_balances
    WHERE user_id = $1 AND tenant_id = $2
  `, userID, tenantID).Scan(&b.UserID, &b.TenantID, &b.AnnualLeave, &b.SickLeave, &b.PersonalLeave, &b.LongServiceLeave, &b.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, false, nil
	}
	if err != nil {
		return Balance{}, false, err
	}
	return b, true, nil
}

// UpsertAccrual adds the accrual to the stored balance in one statement.
// The increment happens inside the UPDATE, so concurrent pay runs for the
// same employee cannot lose each other's accrual, and a retry after a
// partial failure never double-applies a read-modify-write.
func (s *Store) UpsertAccrual(ctx context.Context, userID, tenantID string, accrued Accrued) (Balance, error) {
	var b Balance
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_balances (user_id, tenant_id, annual_leave, sick_leave, personal_leave, long_service_leave)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (user_id, tenant_id)
    DO UPDATE SET annual_leave = leave_balances.annual_leave + EXCLUDED.annual_leave,
                  sick_leave = leave_balances.sick_leave + EXCLUDED.sick_leave,
                  personal_leave = leave_balances.personal_leave + EXCLUDED.personal_leave,
                  long_service_leave = leave_balances.long_service_leave + EXCLUDED.long_service_leave,
                  last_updated = now()
    RETURNING user_id, tenant_id, annual_leave, sick_leave, personal_leave, long_service_leave, last_updated
  `, userID, tenantID, accrued.Annual, accrued.Sick, accrued.Personal, accrued.LongService).
		Scan(&b.UserID, &b.TenantID, &b.AnnualLeave, &b.SickLeave, &b.PersonalLeave, &b.LongServiceLeave, &b.LastUpdated)
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}
