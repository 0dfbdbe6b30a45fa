package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/repository"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

func seedTenant(tenants *fakeTenantRepo, id string) *domain.Tenant {
	tenant := &domain.Tenant{
		ID:        id,
		Name:      "Acme",
		Subdomain: "acme-" + id,
		Status:    domain.TenantStatusActive,
		Plan:      domain.PlanFree,
	}
	tenants.tenants[id] = tenant
	return tenant
}

func TestTenantListPaginationDefaults(t *testing.T) {
	tenants := newFakeTenantRepo()
	tenants.listRows = []repository.TenantWithCounts{}
	tenants.listTotal = 25
	svc := NewTenantService(tenants)

	page, err := svc.List(context.Background(), TenantListInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalTenants)
}

func TestTenantListCapsLimit(t *testing.T) {
	tenants := newFakeTenantRepo()
	svc := NewTenantService(tenants)

	page, err := svc.List(context.Background(), TenantListInput{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
}

func TestTenantListInvalidFilters(t *testing.T) {
	svc := NewTenantService(newFakeTenantRepo())

	_, err := svc.List(context.Background(), TenantListInput{Status: "frozen"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.List(context.Background(), TenantListInput{Plan: "platinum"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTenantGetOwnTenant(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-1")
	tenants.stats["tenant-1"] = &domain.TenantStats{TotalUsers: 4, TotalProjects: 2, TotalTasks: 9}
	svc := NewTenantService(tenants)

	detail, err := svc.Get(context.Background(), userPrincipal("user-1", "tenant-1"), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", detail.Tenant.ID)
	assert.Equal(t, 9, detail.Stats.TotalTasks)
}

func TestTenantGetCrossTenantDenied(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-2")
	svc := NewTenantService(tenants)

	_, err := svc.Get(context.Background(), adminPrincipal("tenant-1"), "tenant-2")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, "cross-tenant access is not allowed", domainErr.Message)
}

func TestTenantUpdateNameByTenantAdmin(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-1")
	svc := NewTenantService(tenants)

	name := "Acme Rebranded"
	tenant, err := svc.Update(context.Background(), adminPrincipal("tenant-1"), "tenant-1", TenantUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Rebranded", tenant.Name)
}

func TestTenantUpdatePlanRequiresSuperAdmin(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-1")
	svc := NewTenantService(tenants)

	plan := "enterprise"
	_, err := svc.Update(context.Background(), adminPrincipal("tenant-1"), "tenant-1", TenantUpdateInput{Plan: &plan})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, "insufficient permissions", domainErr.Message)
}

func TestTenantUpdateSuperAdminSetsOperatorFields(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-1")
	svc := NewTenantService(tenants)

	status := "suspended"
	plan := "pro"
	maxUsers := 40
	tenant, err := svc.Update(context.Background(), superPrincipal(), "tenant-1", TenantUpdateInput{
		Status:   &status,
		Plan:     &plan,
		MaxUsers: &maxUsers,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TenantStatusSuspended, tenant.Status)
	assert.Equal(t, domain.PlanPro, tenant.Plan)
	require.NotNil(t, tenant.MaxUsers)
	assert.Equal(t, 40, *tenant.MaxUsers)
}

func TestTenantUpdateInvalidEnum(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-1")
	svc := NewTenantService(tenants)

	status := "paused"
	_, err := svc.Update(context.Background(), superPrincipal(), "tenant-1", TenantUpdateInput{Status: &status})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTenantUpdateCrossTenantDenied(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-2")
	svc := NewTenantService(tenants)

	name := "Hijack"
	_, err := svc.Update(context.Background(), adminPrincipal("tenant-1"), "tenant-2", TenantUpdateInput{Name: &name})
	require.Error(t, err)
	assert.Equal(t, "cross-tenant access is not allowed", apperrors.ToDomainError(err).Message)
}

func TestTenantUpdateNoFields(t *testing.T) {
	tenants := newFakeTenantRepo()
	seedTenant(tenants, "tenant-1")
	svc := NewTenantService(tenants)

	_, err := svc.Update(context.Background(), superPrincipal(), "tenant-1", TenantUpdateInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTenantUpdateMissingTenant(t *testing.T) {
	svc := NewTenantService(newFakeTenantRepo())

	name := "Ghost"
	_, err := svc.Update(context.Background(), superPrincipal(), "ghost", TenantUpdateInput{Name: &name})
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}
