package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/config"
	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/events"
	"github.com/spec-kit/taskboard/internal/repository"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// UserService manages accounts within a tenant.
type UserService struct {
	users      repository.UserRepository
	quota      QuotaGuard
	dispatcher events.Dispatcher
	bcryptCost int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Quota      QuotaGuard
	Dispatcher events.Dispatcher
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		quota:      deps.Quota,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// List returns users visible to the caller. super_admin may pass an
// explicit tenant filter or none at all; everyone else is forced to their
// own tenant regardless of the filter.
func (s *UserService) List(ctx context.Context, principal *auth.Principal, tenantFilter string) ([]repository.UserWithTenant, error) {
	tenantID := principal.TenantID
	if principal.Role == domain.RoleSuperAdmin {
		tenantID = tenantFilter
	}
	return s.users.List(ctx, tenantID)
}

// UserCreateInput describes the user creation payload.
type UserCreateInput struct {
	TenantID  string
	Email     string
	Password  string
	FullName  string
	Role      string
	IPAddress string
}

// Create adds a user to a tenant, enforcing the active-user quota
// atomically with the insert. super_admin may target any tenant; a
// tenant_admin always creates within their own.
func (s *UserService) Create(ctx context.Context, principal *auth.Principal, input UserCreateInput) (*domain.User, error) {
	tenantID := principal.TenantID
	if principal.Role == domain.RoleSuperAdmin && input.TenantID != "" {
		tenantID = input.TenantID
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpUserCreate); err != nil {
		return nil, err
	}

	role := domain.Role(input.Role)
	if role != domain.RoleTenantAdmin && role != domain.RoleUser {
		return nil, apperrors.NewValidationError("invalid role", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         role,
		IsActive:     true,
	}

	err = s.quota.ReserveUserSlot(ctx, tenantID, func(tx pgx.Tx) error {
		return s.users.CreateTx(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventUserCreated,
		TenantID:   &tenantID,
		ActorID:    &principal.UserID,
		EntityType: "user",
		EntityID:   user.ID,
		IPAddress:  optional(input.IPAddress),
	})
	return user, nil
}

// UserUpdateInput carries optional field updates. Nil fields are left
// untouched.
type UserUpdateInput struct {
	Email    *string
	FullName *string
	Role     *string
	IsActive *bool
	Password *string
}

// Update applies a field-by-field allow-list. A plain user may change only
// their own fullName and password; email, role and isActive require a
// tenant_admin or super_admin.
func (s *UserService) Update(ctx context.Context, principal *auth.Principal, userID string, input UserUpdateInput) (*domain.User, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	isSelf := principal.UserID == target.ID
	if principal.Role != domain.RoleSuperAdmin {
		if target.TenantID != principal.TenantID {
			return nil, apperrors.NewForbidden("cross-tenant access is not allowed")
		}
		if !isSelf && principal.Role != domain.RoleTenantAdmin {
			return nil, apperrors.NewForbidden("only tenant admins can manage other users")
		}
	}

	canManage := auth.CanManageUsers(principal.Role)
	updated := false

	if input.Email != nil {
		if !canManage {
			return nil, apperrors.NewForbidden("you cannot change email")
		}
		target.Email = *input.Email
		updated = true
	}

	if input.FullName != nil {
		target.FullName = *input.FullName
		updated = true
	}

	if input.Role != nil {
		role := domain.Role(*input.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", nil)
		}
		if !canManage {
			return nil, apperrors.NewForbidden("you cannot change roles")
		}
		target.Role = role
		updated = true
	}

	if input.IsActive != nil {
		if !canManage {
			return nil, apperrors.NewForbidden("you cannot change active status")
		}
		target.IsActive = *input.IsActive
		updated = true
	}

	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		target.PasswordHash = hash
		updated = true
	}

	if !updated {
		return nil, apperrors.NewValidationError("no valid fields to update", nil)
	}

	if err := s.users.Update(ctx, target); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return target, nil
}

// Deactivate soft-deletes a user by flipping isActive off. Users are never
// hard-deleted.
func (s *UserService) Deactivate(ctx context.Context, principal *auth.Principal, userID, ip string) error {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, target.TenantID, auth.OpUserManage); err != nil {
		return err
	}

	if !target.IsActive {
		return apperrors.NewValidationError("user is already inactive", nil)
	}

	target.IsActive = false
	if err := s.users.Update(ctx, target); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventUserDeactivated,
		TenantID:   &target.TenantID,
		ActorID:    &principal.UserID,
		EntityType: "user",
		EntityID:   target.ID,
		IPAddress:  optional(ip),
	})
	return nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.OccurredAt = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
