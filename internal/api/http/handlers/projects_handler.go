package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard/internal/api/dto"
	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/service"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// ProjectsHandler exposes project endpoints.
type ProjectsHandler struct {
	projects *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projectService}
}

// List handles GET /projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	projects, err := h.projects.List(c.Context(), principal, c.Query("tenantId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewProjectList(projects)))
}

// Create handles POST /projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	project, err := h.projects.Create(c.Context(), principal, service.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
		IPAddress:   c.IP(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("project created", dto.NewProjectResponse(project)))
}

// Get handles GET /projects/:projectId.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	project, err := h.projects.Get(c.Context(), principal, c.Params("projectId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewProjectResponse(project)))
}

// Update handles PATCH /projects/:projectId.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	project, err := h.projects.Update(c.Context(), principal, c.Params("projectId"), service.ProjectUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("project updated", dto.NewProjectResponse(project)))
}

// Archive handles DELETE /projects/:projectId. Soft delete: the project
// moves to archived and drops out of listings and quota counts.
func (h *ProjectsHandler) Archive(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.projects.Archive(c.Context(), principal, c.Params("projectId"), c.IP()); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("project archived", nil))
}
