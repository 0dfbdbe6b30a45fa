package auth

import (
	"github.com/spec-kit/taskboard/internal/domain"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// Operation identifies an access-controlled action on a tenant-scoped
// resource. Field-level gates on tenant and user mutation get their own
// operations so each PATCHed field is checked individually.
type Operation string

const (
	OpTenantView         Operation = "tenant.view"
	OpTenantUpdateName   Operation = "tenant.update_name"
	OpTenantUpdateStatus Operation = "tenant.update_status"
	OpTenantUpdatePlan   Operation = "tenant.update_plan"
	OpTenantUpdateLimits Operation = "tenant.update_limits"

	OpUserList   Operation = "user.list"
	OpUserCreate Operation = "user.create"
	// OpUserManage covers mutation of another user's administrative
	// fields: email, role, isActive, deactivation.
	OpUserManage Operation = "user.manage"

	OpProjectList    Operation = "project.list"
	OpProjectView    Operation = "project.view"
	OpProjectCreate  Operation = "project.create"
	OpProjectUpdate  Operation = "project.update"
	OpProjectArchive Operation = "project.archive"

	OpTaskList   Operation = "task.list"
	OpTaskCreate Operation = "task.create"
	OpTaskUpdate Operation = "task.update"
	OpTaskDelete Operation = "task.delete"
)

// rolePermissions lists the non-super roles permitted per operation.
// Operations absent from the map are super_admin only.
var rolePermissions = map[Operation][]domain.Role{
	OpTenantView:       {domain.RoleTenantAdmin, domain.RoleUser},
	OpTenantUpdateName: {domain.RoleTenantAdmin},

	OpUserList:   {domain.RoleTenantAdmin},
	OpUserCreate: {domain.RoleTenantAdmin},
	OpUserManage: {domain.RoleTenantAdmin},

	OpProjectList:    {domain.RoleTenantAdmin, domain.RoleUser},
	OpProjectView:    {domain.RoleTenantAdmin, domain.RoleUser},
	OpProjectCreate:  {domain.RoleTenantAdmin, domain.RoleUser},
	OpProjectUpdate:  {domain.RoleTenantAdmin, domain.RoleUser},
	OpProjectArchive: {domain.RoleTenantAdmin, domain.RoleUser},

	OpTaskList:   {domain.RoleTenantAdmin, domain.RoleUser},
	OpTaskCreate: {domain.RoleTenantAdmin, domain.RoleUser},
	OpTaskUpdate: {domain.RoleTenantAdmin, domain.RoleUser},
	OpTaskDelete: {domain.RoleTenantAdmin, domain.RoleUser},
}

// Authorize decides whether a caller may perform op against a resource
// owned by targetTenantID. Rules evaluate in order: super_admin bypasses
// everything, then tenant match, then the role table. A denial is always
// surfaced to the caller as a 403, never applied as a silent filter.
func Authorize(role domain.Role, callerTenantID, targetTenantID string, op Operation) error {
	if role == domain.RoleSuperAdmin {
		return nil
	}
	if targetTenantID != callerTenantID {
		return apperrors.NewForbidden("cross-tenant access is not allowed")
	}
	for _, allowed := range rolePermissions[op] {
		if role == allowed {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient permissions")
}

// CanManageUsers reports whether the role may mutate other users'
// administrative fields within its tenant.
func CanManageUsers(role domain.Role) bool {
	return role == domain.RoleSuperAdmin || role == domain.RoleTenantAdmin
}
