package service

import (
	"context"
	"strings"
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

// AuthService coordinates tenant registration and session flows.
type AuthService struct {
	tenants    repository.TenantRepository
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	revoked    *auth.RevocationStore
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	TenantRepo repository.TenantRepository
	UserRepo   repository.UserRepository
	Revoked    *auth.RevocationStore
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		tenants:    deps.TenantRepo,
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		revoked:    deps.Revoked,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterTenantInput describes the self-service registration payload.
type RegisterTenantInput struct {
	TenantName    string
	Subdomain     string
	AdminEmail    string
	AdminPassword string
	AdminFullName string
	IPAddress     string
}

// RegisterTenant creates an active free-plan tenant together with its
// first tenant_admin account.
func (s *AuthService) RegisterTenant(ctx context.Context, input RegisterTenantInput) (*domain.Tenant, *domain.User, error) {
	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))

	if _, err := s.tenants.GetBySubdomain(ctx, subdomain); err == nil {
		return nil, nil, apperrors.NewConflict("subdomain or admin email already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(input.AdminPassword, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	maxUsers, maxProjects := domain.PlanLimits(domain.PlanFree)
	tenant := &domain.Tenant{
		ID:          uuid.NewString(),
		Name:        input.TenantName,
		Subdomain:   subdomain,
		Status:      domain.TenantStatusActive,
		Plan:        domain.PlanFree,
		MaxUsers:    &maxUsers,
		MaxProjects: &maxProjects,
	}
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        input.AdminEmail,
		PasswordHash: hash,
		FullName:     input.AdminFullName,
		Role:         domain.RoleTenantAdmin,
		IsActive:     true,
	}

	if err := s.tenants.CreateWithAdmin(ctx, tenant, admin); err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventTenantRegistered,
		TenantID:   &tenant.ID,
		ActorID:    &admin.ID,
		EntityType: "tenant",
		EntityID:   tenant.ID,
		IPAddress:  optional(input.IPAddress),
	})
	return tenant, admin, nil
}

// LoginInput carries credentials plus a tenant reference, either by id or
// by subdomain.
type LoginInput struct {
	Email     string
	Password  string
	TenantID  string
	Subdomain string
	IPAddress string
}

// LoginResult is the issued session.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
	ExpiresIn int
}

// Login authenticates a user within a tenant. Tenant-inactive and
// account-inactive are reported distinctly; every other failure collapses
// into a generic invalid-credentials error to avoid account enumeration.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	var tenant *domain.Tenant
	var err error
	if input.TenantID != "" {
		tenant, err = s.tenants.GetByID(ctx, input.TenantID)
	} else {
		tenant, err = s.tenants.GetBySubdomain(ctx, strings.ToLower(strings.TrimSpace(input.Subdomain)))
	}
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("tenant", nil)
		}
		return nil, err
	}

	if tenant.Status != domain.TenantStatusActive {
		return nil, apperrors.NewForbidden("tenant is not active")
	}

	user, err := s.users.GetByEmail(ctx, tenant.ID, input.Email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("account is inactive")
	}
	if err := auth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventUserLoggedIn,
		TenantID:   &user.TenantID,
		ActorID:    &user.ID,
		EntityType: "user",
		EntityID:   user.ID,
		IPAddress:  optional(input.IPAddress),
	})
	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
		ExpiresIn: int(s.tokenMgr.TTL().Seconds()),
	}, nil
}

// MeResult is the current-session snapshot: the caller plus their tenant
// with its quota fields.
type MeResult struct {
	User   *domain.User
	Tenant *domain.Tenant
	Usage  *domain.TenantStats
}

// Me returns the authenticated caller's profile and tenant.
func (s *AuthService) Me(ctx context.Context, principal *auth.Principal) (*MeResult, error) {
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	result := &MeResult{User: user}
	if user.TenantID != "" {
		tenant, err := s.tenants.GetByID(ctx, user.TenantID)
		if err != nil && err != pgx.ErrNoRows {
			return nil, err
		}
		result.Tenant = tenant
		if tenant != nil {
			usage, err := s.tenants.GetStats(ctx, tenant.ID)
			if err != nil {
				return nil, err
			}
			result.Usage = usage
		}
	}
	return result, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal, ip string) error {
	if err := s.revoked.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:       events.EventUserLoggedOut,
		TenantID:   &principal.TenantID,
		ActorID:    &principal.UserID,
		EntityType: "user",
		EntityID:   principal.UserID,
		IPAddress:  optional(ip),
	})
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.OccurredAt = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
