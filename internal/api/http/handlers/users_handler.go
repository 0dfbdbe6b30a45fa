package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard/internal/api/dto"
	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/service"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// UsersHandler exposes user management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	rows, err := h.users.List(c.Context(), principal, c.Query("tenantId"))
	if err != nil {
		return err
	}

	users := make([]dto.UserWithTenantResponse, 0, len(rows))
	for _, row := range rows {
		users = append(users, dto.NewUserWithTenantResponse(row))
	}
	return c.JSON(dto.OK(users))
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return apperrors.NewValidationError("email, password and role are required", nil)
	}
	if len(req.Password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	user, err := h.users.Create(c.Context(), principal, service.UserCreateInput{
		TenantID:  req.TenantID,
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Role:      req.Role,
		IPAddress: c.IP(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("user created", dto.NewUserResponse(user)))
}

// Update handles PATCH /users/:userId.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Password != nil && len(*req.Password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	user, err := h.users.Update(c.Context(), principal, c.Params("userId"), service.UserUpdateInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("user updated", dto.NewUserResponse(user)))
}

// Deactivate handles DELETE /users/:userId. Soft delete: the account is
// flagged inactive and its sessions stop passing auth.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.users.Deactivate(c.Context(), principal, c.Params("userId"), c.IP()); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("user deactivated", nil))
}
