package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard/internal/api/dto"
	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/service"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// AuthHandler exposes tenant registration and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// RegisterTenant handles POST /auth/register-tenant.
func (h *AuthHandler) RegisterTenant(c *fiber.Ctx) error {
	var req dto.RegisterTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantName == "" || req.Subdomain == "" || req.AdminEmail == "" || req.AdminPassword == "" {
		return apperrors.NewValidationError("tenantName, subdomain, adminEmail and adminPassword are required", nil)
	}
	if len(req.AdminPassword) < 8 {
		return apperrors.NewValidationError("adminPassword must be at least 8 characters", nil)
	}

	tenant, admin, err := h.auth.RegisterTenant(c.Context(), service.RegisterTenantInput{
		TenantName:    req.TenantName,
		Subdomain:     req.Subdomain,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
		AdminFullName: req.AdminFullName,
		IPAddress:     c.IP(),
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.OKMessage("tenant registered", dto.RegisterTenantResponse{
		Tenant: dto.NewTenantResponse(tenant),
		Admin:  dto.NewUserResponse(admin),
	}))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password are required", nil)
	}
	if req.TenantID == "" && req.Subdomain == "" {
		return apperrors.NewValidationError("tenantId or subdomain is required", nil)
	}

	result, err := h.auth.Login(c.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		TenantID:  req.TenantID,
		Subdomain: req.Subdomain,
		IPAddress: c.IP(),
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.OK(dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		ExpiresIn: result.ExpiresIn,
		User:      dto.NewUserResponse(result.User),
	}))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	result, err := h.auth.Me(c.Context(), principal)
	if err != nil {
		return err
	}

	resp := dto.MeResponse{User: dto.NewUserResponse(result.User)}
	if result.Tenant != nil {
		tenant := dto.NewTenantResponse(result.Tenant)
		resp.Tenant = &tenant
	}
	if result.Usage != nil {
		resp.Usage = &dto.TenantStatsResponse{
			TotalUsers:    result.Usage.TotalUsers,
			TotalProjects: result.Usage.TotalProjects,
			TotalTasks:    result.Usage.TotalTasks,
		}
	}
	return c.JSON(dto.OK(resp))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.auth.Logout(c.Context(), principal, c.IP()); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("logged out", nil))
}
