package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/taskboard/internal/domain"
)

// ProjectRepository defines persistence access for projects.
type ProjectRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, tenantID string) ([]domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed implementation.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id, tenant_id, name, description, status, created_by, created_at, updated_at`

// CreateTx inserts a project within the caller's transaction so creation
// can share the quota guard's atomic unit.
func (r *projectRepository) CreateTx(ctx context.Context, tx pgx.Tx, project *domain.Project) error {
	const query = `
        INSERT INTO projects (id, tenant_id, name, description, status, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	return tx.QueryRow(ctx, query,
		project.ID,
		project.TenantID,
		project.Name,
		project.Description,
		project.Status,
		project.CreatedBy,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects
        SET name=$1, description=$2, status=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		project.Name,
		project.Description,
		project.Status,
		project.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects WHERE id=$1`

	var p domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.TenantID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns non-archived projects newest first. An empty tenantID lists
// across all tenants.
func (r *projectRepository) List(ctx context.Context, tenantID string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE status != 'archived'`
	params := []any{}

	if tenantID != "" {
		query += " AND tenant_id = $1"
		params = append(params, tenantID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID,
			&p.TenantID,
			&p.Name,
			&p.Description,
			&p.Status,
			&p.CreatedBy,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
