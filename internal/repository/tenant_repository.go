package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/taskboard/internal/domain"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// TenantFilter narrows and pages the tenant listing.
type TenantFilter struct {
	Status *domain.TenantStatus
	Plan   *domain.SubscriptionPlan
	Page   int
	Limit  int
}

// TenantWithCounts is a listing row enriched with resource counts.
type TenantWithCounts struct {
	domain.Tenant
	TotalUsers    int
	TotalProjects int
}

// TenantRepository defines persistence access for tenants.
type TenantRepository interface {
	CreateWithAdmin(ctx context.Context, tenant *domain.Tenant, admin *domain.User) error
	Update(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	List(ctx context.Context, filter TenantFilter) ([]TenantWithCounts, int, error)
	GetStats(ctx context.Context, id string) (*domain.TenantStats, error)
}

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository returns a Postgres-backed implementation.
func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

const tenantColumns = `id, name, subdomain, status, subscription_plan, max_users, max_projects, created_at, updated_at`

// CreateWithAdmin inserts the tenant and its first admin user in one
// transaction so a half-registered tenant can never exist.
func (r *tenantRepository) CreateWithAdmin(ctx context.Context, tenant *domain.Tenant, admin *domain.User) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const tenantQuery = `
            INSERT INTO tenants (id, name, subdomain, status, subscription_plan, max_users, max_projects)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING created_at, updated_at`

		if err := tx.QueryRow(ctx, tenantQuery,
			tenant.ID,
			tenant.Name,
			tenant.Subdomain,
			tenant.Status,
			tenant.Plan,
			tenant.MaxUsers,
			tenant.MaxProjects,
		).Scan(&tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return err
		}

		const adminQuery = `
            INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, is_active)
            VALUES ($1, $2, $3, $4, $5, $6, TRUE)
            RETURNING created_at, updated_at`

		admin.TenantID = tenant.ID
		return tx.QueryRow(ctx, adminQuery,
			admin.ID,
			admin.TenantID,
			admin.Email,
			admin.PasswordHash,
			admin.FullName,
			admin.Role,
		).Scan(&admin.CreatedAt, &admin.UpdatedAt)
	})
	if isUniqueViolation(err) {
		return apperrors.NewConflict("subdomain or admin email already exists", nil)
	}
	return err
}

func (r *tenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	const query = `
        UPDATE tenants
        SET name=$1, status=$2, subscription_plan=$3, max_users=$4, max_projects=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		tenant.Name,
		tenant.Status,
		tenant.Plan,
		tenant.MaxUsers,
		tenant.MaxProjects,
		tenant.ID,
	).Scan(&tenant.UpdatedAt)
	if err == pgx.ErrNoRows {
		return pgx.ErrNoRows
	}
	return err
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE id=$1`
	return r.scanTenant(r.pool.QueryRow(ctx, query, id))
}

func (r *tenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	const query = `SELECT ` + tenantColumns + ` FROM tenants WHERE LOWER(subdomain)=$1`
	return r.scanTenant(r.pool.QueryRow(ctx, query, strings.ToLower(subdomain)))
}

func (r *tenantRepository) scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Subdomain,
		&t.Status,
		&t.Plan,
		&t.MaxUsers,
		&t.MaxProjects,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepository) List(ctx context.Context, filter TenantFilter) ([]TenantWithCounts, int, error) {
	conditions := make([]string, 0, 2)
	params := make([]any, 0, 4)

	if filter.Status != nil {
		params = append(params, *filter.Status)
		conditions = append(conditions, "t.status=$"+strconv.Itoa(len(params)))
	}
	if filter.Plan != nil {
		params = append(params, *filter.Plan)
		conditions = append(conditions, "t.subscription_plan=$"+strconv.Itoa(len(params)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tenants t"+where, params...).Scan(&total); err != nil {
		return nil, 0, err
	}

	params = append(params, filter.Limit)
	limitArg := strconv.Itoa(len(params))
	params = append(params, (filter.Page-1)*filter.Limit)
	offsetArg := strconv.Itoa(len(params))

	query := `
        SELECT t.id, t.name, t.subdomain, t.status, t.subscription_plan,
               t.max_users, t.max_projects, t.created_at, t.updated_at,
               COALESCE(u.total_users, 0), COALESCE(p.total_projects, 0)
        FROM tenants t
        LEFT JOIN (
            SELECT tenant_id, COUNT(*) AS total_users FROM users GROUP BY tenant_id
        ) u ON u.tenant_id = t.id
        LEFT JOIN (
            SELECT tenant_id, COUNT(*) AS total_projects FROM projects GROUP BY tenant_id
        ) p ON p.tenant_id = t.id` +
		where + `
        ORDER BY t.created_at DESC
        LIMIT $` + limitArg + ` OFFSET $` + offsetArg

	rows, err := r.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tenants := make([]TenantWithCounts, 0)
	for rows.Next() {
		var t TenantWithCounts
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Subdomain,
			&t.Status,
			&t.Plan,
			&t.MaxUsers,
			&t.MaxProjects,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.TotalUsers,
			&t.TotalProjects,
		); err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, t)
	}
	return tenants, total, rows.Err()
}

func (r *tenantRepository) GetStats(ctx context.Context, id string) (*domain.TenantStats, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM users WHERE tenant_id=$1),
            (SELECT COUNT(*) FROM projects WHERE tenant_id=$1),
            (SELECT COUNT(*) FROM tasks WHERE tenant_id=$1)`

	var stats domain.TenantStats
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&stats.TotalUsers,
		&stats.TotalProjects,
		&stats.TotalTasks,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

