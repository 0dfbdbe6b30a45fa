package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/repository"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// TenantService exposes tenant directory operations.
type TenantService struct {
	tenants repository.TenantRepository
}

// NewTenantService builds the service.
func NewTenantService(tenants repository.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

// TenantListInput carries listing filters and pagination.
type TenantListInput struct {
	Status string
	Plan   string
	Page   int
	Limit  int
}

// TenantPage is a page of the tenant directory.
type TenantPage struct {
	Tenants      []repository.TenantWithCounts
	CurrentPage  int
	TotalPages   int
	TotalTenants int
	Limit        int
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// List pages through all tenants with per-tenant counts. The route is
// gated to super_admin; no tenant scoping applies here.
func (s *TenantService) List(ctx context.Context, input TenantListInput) (*TenantPage, error) {
	filter := repository.TenantFilter{Page: input.Page, Limit: input.Limit}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	if input.Status != "" {
		status := domain.TenantStatus(input.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", nil)
		}
		filter.Status = &status
	}
	if input.Plan != "" {
		plan := domain.SubscriptionPlan(input.Plan)
		if !plan.Valid() {
			return nil, apperrors.NewValidationError("invalid subscription plan", nil)
		}
		filter.Plan = &plan
	}

	tenants, total, err := s.tenants.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	if totalPages < 1 {
		totalPages = 1
	}
	return &TenantPage{
		Tenants:      tenants,
		CurrentPage:  filter.Page,
		TotalPages:   totalPages,
		TotalTenants: total,
		Limit:        filter.Limit,
	}, nil
}

// TenantDetail is a tenant plus its resource counts.
type TenantDetail struct {
	Tenant *domain.Tenant
	Stats  *domain.TenantStats
}

// Get returns a tenant with stats. Non-super callers may only view their
// own tenant.
func (s *TenantService) Get(ctx context.Context, principal *auth.Principal, tenantID string) (*TenantDetail, error) {
	if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpTenantView); err != nil {
		return nil, err
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("tenant", nil)
		}
		return nil, err
	}

	stats, err := s.tenants.GetStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &TenantDetail{Tenant: tenant, Stats: stats}, nil
}

// TenantUpdateInput carries optional field updates. Nil fields are left
// untouched.
type TenantUpdateInput struct {
	Name        *string
	Status      *string
	Plan        *string
	MaxUsers    *int
	MaxProjects *int
}

// Update applies a field-by-field allow-list. Name is open to the tenant's
// own admin; status, plan and limits are platform-operator fields.
func (s *TenantService) Update(ctx context.Context, principal *auth.Principal, tenantID string, input TenantUpdateInput) (*domain.Tenant, error) {
	if principal.Role != domain.RoleSuperAdmin && principal.TenantID != tenantID {
		return nil, apperrors.NewForbidden("cross-tenant access is not allowed")
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("tenant", nil)
		}
		return nil, err
	}

	updated := false

	if input.Name != nil {
		if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpTenantUpdateName); err != nil {
			return nil, err
		}
		tenant.Name = *input.Name
		updated = true
	}

	if input.Status != nil {
		status := domain.TenantStatus(*input.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", nil)
		}
		if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpTenantUpdateStatus); err != nil {
			return nil, err
		}
		tenant.Status = status
		updated = true
	}

	if input.Plan != nil {
		plan := domain.SubscriptionPlan(*input.Plan)
		if !plan.Valid() {
			return nil, apperrors.NewValidationError("invalid subscription plan", nil)
		}
		if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpTenantUpdatePlan); err != nil {
			return nil, err
		}
		tenant.Plan = plan
		updated = true
	}

	if input.MaxUsers != nil {
		if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpTenantUpdateLimits); err != nil {
			return nil, err
		}
		tenant.MaxUsers = input.MaxUsers
		updated = true
	}

	if input.MaxProjects != nil {
		if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpTenantUpdateLimits); err != nil {
			return nil, err
		}
		tenant.MaxProjects = input.MaxProjects
		updated = true
	}

	if !updated {
		return nil, apperrors.NewValidationError("no valid fields to update", nil)
	}

	if err := s.tenants.Update(ctx, tenant); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("tenant", nil)
		}
		return nil, err
	}
	return tenant, nil
}
