package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/taskboard/internal/domain"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// UserWithTenant is a listing row joined with the owning tenant.
type UserWithTenant struct {
	domain.User
	TenantName *string
	Subdomain  *string
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error)
	List(ctx context.Context, tenantID string) ([]UserWithTenant, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, tenant_id, email, password_hash, full_name, role, is_active, created_at, updated_at`

// CreateTx inserts a user within the caller's transaction so creation can
// share the quota guard's atomic unit.
func (r *userRepository) CreateTx(ctx context.Context, tx pgx.Tx, user *domain.User) error {
	const query = `
        INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, query,
		user.ID,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return apperrors.NewConflict("email already exists in this tenant", nil)
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users
        SET email=$1, password_hash=$2, full_name=$3, role=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.IsActive,
		user.ID,
	)
	if isUniqueViolation(err) {
		return apperrors.NewConflict("email already exists in this tenant", nil)
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail looks a user up within a tenant, case-insensitively on email.
func (r *userRepository) GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE tenant_id=$1 AND LOWER(email)=$2`
	return r.scanUser(r.pool.QueryRow(ctx, query, tenantID, strings.ToLower(email)))
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users joined with tenant metadata, newest first. An empty
// tenantID lists across all tenants.
func (r *userRepository) List(ctx context.Context, tenantID string) ([]UserWithTenant, error) {
	query := `
        SELECT u.id, u.tenant_id, u.email, u.password_hash, u.full_name, u.role, u.is_active,
               u.created_at, u.updated_at, t.name, t.subdomain
        FROM users u
        LEFT JOIN tenants t ON u.tenant_id = t.id`
	params := []any{}

	if tenantID != "" {
		query += " WHERE u.tenant_id = $1"
		params = append(params, tenantID)
	}
	query += " ORDER BY u.created_at DESC"

	rows, err := r.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]UserWithTenant, 0)
	for rows.Next() {
		var u UserWithTenant
		if err := rows.Scan(
			&u.ID,
			&u.TenantID,
			&u.Email,
			&u.PasswordHash,
			&u.FullName,
			&u.Role,
			&u.IsActive,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.TenantName,
			&u.Subdomain,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
