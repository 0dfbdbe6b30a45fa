package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// QuotaGuard serializes quota checks with the inserts they protect. The
// insert callback runs inside the same transaction as the count, so two
// concurrent creations cannot both pass the check and jointly exceed the
// tenant limit.
type QuotaGuard interface {
	ReserveUserSlot(ctx context.Context, tenantID string, insert func(pgx.Tx) error) error
	ReserveProjectSlot(ctx context.Context, tenantID string, insert func(pgx.Tx) error) error
}

type pgQuotaGuard struct {
	pool *pgxpool.Pool
}

// NewQuotaGuard returns a Postgres-backed guard.
func NewQuotaGuard(pool *pgxpool.Pool) QuotaGuard {
	return &pgQuotaGuard{pool: pool}
}

func (g *pgQuotaGuard) ReserveUserSlot(ctx context.Context, tenantID string, insert func(pgx.Tx) error) error {
	return g.reserve(ctx, tenantID,
		`SELECT max_users FROM tenants WHERE id=$1 FOR UPDATE`,
		`SELECT COUNT(*) FROM users WHERE tenant_id=$1 AND is_active`,
		"user limit reached for this tenant",
		insert)
}

func (g *pgQuotaGuard) ReserveProjectSlot(ctx context.Context, tenantID string, insert func(pgx.Tx) error) error {
	return g.reserve(ctx, tenantID,
		`SELECT max_projects FROM tenants WHERE id=$1 FOR UPDATE`,
		`SELECT COUNT(*) FROM projects WHERE tenant_id=$1 AND status != 'archived'`,
		"project limit reached for this tenant",
		insert)
}

// reserve locks the tenant row, compares the live count against the limit,
// and runs the insert in the same transaction. A NULL limit is unlimited.
func (g *pgQuotaGuard) reserve(ctx context.Context, tenantID, limitQuery, countQuery, exceededMsg string, insert func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, g.pool, func(tx pgx.Tx) error {
		var limit *int
		if err := tx.QueryRow(ctx, limitQuery, tenantID).Scan(&limit); err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("tenant", nil)
			}
			return err
		}

		if limit != nil {
			var count int
			if err := tx.QueryRow(ctx, countQuery, tenantID).Scan(&count); err != nil {
				return err
			}
			if count >= *limit {
				return apperrors.NewQuotaExceeded(exceededMsg)
			}
		}

		return insert(tx)
	})
}
