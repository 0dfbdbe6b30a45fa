package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard/internal/api/dto"
	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/service"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// TenantsHandler exposes tenant directory and settings endpoints.
type TenantsHandler struct {
	tenants *service.TenantService
}

// NewTenantsHandler constructs handler.
func NewTenantsHandler(tenantService *service.TenantService) *TenantsHandler {
	return &TenantsHandler{tenants: tenantService}
}

// List handles GET /tenants. Route-gated to super_admin.
func (h *TenantsHandler) List(c *fiber.Ctx) error {
	page, err := h.tenants.List(c.Context(), service.TenantListInput{
		Status: c.Query("status"),
		Plan:   c.Query("subscriptionPlan"),
		Page:   c.QueryInt("page"),
		Limit:  c.QueryInt("limit"),
	})
	if err != nil {
		return err
	}

	tenants := make([]dto.TenantSummary, 0, len(page.Tenants))
	for _, row := range page.Tenants {
		tenants = append(tenants, dto.NewTenantSummary(row))
	}
	return c.JSON(dto.OK(dto.TenantListResponse{
		Tenants: tenants,
		Pagination: dto.Pagination{
			CurrentPage: page.CurrentPage,
			TotalPages:  page.TotalPages,
			TotalItems:  page.TotalTenants,
			Limit:       page.Limit,
		},
	}))
}

// Get handles GET /tenants/:tenantId.
func (h *TenantsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	detail, err := h.tenants.Get(c.Context(), principal, c.Params("tenantId"))
	if err != nil {
		return err
	}

	return c.JSON(dto.OK(dto.TenantDetailResponse{
		TenantResponse: dto.NewTenantResponse(detail.Tenant),
		Stats: dto.TenantStatsResponse{
			TotalUsers:    detail.Stats.TotalUsers,
			TotalProjects: detail.Stats.TotalProjects,
			TotalTasks:    detail.Stats.TotalTasks,
		},
	}))
}

// Update handles PUT /tenants/:tenantId.
func (h *TenantsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	tenant, err := h.tenants.Update(c.Context(), principal, c.Params("tenantId"), service.TenantUpdateInput{
		Name:        req.Name,
		Status:      req.Status,
		Plan:        req.Plan,
		MaxUsers:    req.MaxUsers,
		MaxProjects: req.MaxProjects,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("tenant updated", dto.NewTenantResponse(tenant)))
}
