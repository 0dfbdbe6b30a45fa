package dto

import (
	"time"

	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/repository"
)

// TenantResponse is the public view of a tenant.
type TenantResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Subdomain   string                  `json:"subdomain"`
	Status      domain.TenantStatus     `json:"status"`
	Plan        domain.SubscriptionPlan `json:"subscriptionPlan"`
	MaxUsers    *int                    `json:"maxUsers"`
	MaxProjects *int                    `json:"maxProjects"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// NewTenantResponse maps a domain tenant onto the wire shape.
func NewTenantResponse(t *domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:          t.ID,
		Name:        t.Name,
		Subdomain:   t.Subdomain,
		Status:      t.Status,
		Plan:        t.Plan,
		MaxUsers:    t.MaxUsers,
		MaxProjects: t.MaxProjects,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TenantSummary is a directory row with resource counts.
type TenantSummary struct {
	TenantResponse
	UserCount    int `json:"userCount"`
	ProjectCount int `json:"projectCount"`
}

// NewTenantSummary maps a directory row.
func NewTenantSummary(row repository.TenantWithCounts) TenantSummary {
	return TenantSummary{
		TenantResponse: NewTenantResponse(&row.Tenant),
		UserCount:      row.TotalUsers,
		ProjectCount:   row.TotalProjects,
	}
}

// TenantListResponse is a page of the tenant directory.
type TenantListResponse struct {
	Tenants    []TenantSummary `json:"tenants"`
	Pagination Pagination      `json:"pagination"`
}

// Pagination describes the current page.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	Limit       int `json:"limit"`
}

// TenantDetailResponse is a tenant plus aggregate stats.
type TenantDetailResponse struct {
	TenantResponse
	Stats TenantStatsResponse `json:"stats"`
}

// TenantStatsResponse aggregates per-tenant resource counts.
type TenantStatsResponse struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
	TotalTasks    int `json:"totalTasks"`
}

// UpdateTenantRequest carries optional field updates; absent fields are
// left untouched.
type UpdateTenantRequest struct {
	Name        *string `json:"name"`
	Status      *string `json:"status"`
	Plan        *string `json:"subscriptionPlan"`
	MaxUsers    *int    `json:"maxUsers"`
	MaxProjects *int    `json:"maxProjects"`
}
