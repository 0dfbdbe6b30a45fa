package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskboard/internal/domain"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

func TestAuthorizeSuperAdminBypassesTenantCheck(t *testing.T) {
	err := Authorize(domain.RoleSuperAdmin, "tenant-a", "tenant-b", OpTenantUpdatePlan)
	assert.NoError(t, err)
}

func TestAuthorizeCrossTenantDenied(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleTenantAdmin, domain.RoleUser} {
		err := Authorize(role, "tenant-a", "tenant-b", OpProjectView)
		require.Error(t, err)

		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, 403, domainErr.HTTPStatus)
		assert.Equal(t, "cross-tenant access is not allowed", domainErr.Message)
	}
}

func TestAuthorizeCrossTenantCheckedBeforeRole(t *testing.T) {
	// A tenant_admin hitting another tenant's resource must see the
	// cross-tenant denial even for operations their role would allow.
	err := Authorize(domain.RoleTenantAdmin, "tenant-a", "tenant-b", OpUserCreate)
	require.Error(t, err)
	assert.Equal(t, "cross-tenant access is not allowed", apperrors.ToDomainError(err).Message)
}

func TestAuthorizeRoleTable(t *testing.T) {
	cases := []struct {
		name    string
		role    domain.Role
		op      Operation
		allowed bool
	}{
		{"tenant_admin creates users", domain.RoleTenantAdmin, OpUserCreate, true},
		{"user cannot create users", domain.RoleUser, OpUserCreate, false},
		{"user cannot list users", domain.RoleUser, OpUserList, false},
		{"user views own tenant", domain.RoleUser, OpTenantView, true},
		{"tenant_admin renames tenant", domain.RoleTenantAdmin, OpTenantUpdateName, true},
		{"user cannot rename tenant", domain.RoleUser, OpTenantUpdateName, false},
		{"tenant_admin cannot change plan", domain.RoleTenantAdmin, OpTenantUpdatePlan, false},
		{"tenant_admin cannot change status", domain.RoleTenantAdmin, OpTenantUpdateStatus, false},
		{"tenant_admin cannot change limits", domain.RoleTenantAdmin, OpTenantUpdateLimits, false},
		{"user creates projects", domain.RoleUser, OpProjectCreate, true},
		{"user archives projects", domain.RoleUser, OpProjectArchive, true},
		{"user deletes tasks", domain.RoleUser, OpTaskDelete, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.role, "tenant-a", "tenant-a", tc.op)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, 403, domainErr.HTTPStatus)
			assert.Equal(t, "insufficient permissions", domainErr.Message)
		})
	}
}

func TestCanManageUsers(t *testing.T) {
	assert.True(t, CanManageUsers(domain.RoleSuperAdmin))
	assert.True(t, CanManageUsers(domain.RoleTenantAdmin))
	assert.False(t, CanManageUsers(domain.RoleUser))
}
