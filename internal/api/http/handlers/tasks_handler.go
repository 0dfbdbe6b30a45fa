package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard/internal/api/dto"
	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/service"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// TasksHandler exposes task endpoints.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: taskService}
}

// List handles GET /tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	tasks, err := h.tasks.List(c.Context(), principal, service.TaskListInput{
		TenantID:  c.Query("tenantId"),
		ProjectID: c.Query("projectId"),
		Status:    c.Query("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewTaskList(tasks)))
}

// Create handles POST /tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProjectID == "" || req.Title == "" {
		return apperrors.NewValidationError("projectId and title are required", nil)
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Context(), principal, service.TaskCreateInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     dueDate,
		IPAddress:   c.IP(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("task created", dto.NewTaskResponse(task)))
}

// Update handles PATCH /tasks/:taskId. assignedTo and dueDate sent as
// explicit JSON null clear the field; omitting them leaves it untouched.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TaskUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}

	fields, err := rawFields(c.Body())
	if err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if raw, present := fields["assignedTo"]; present {
		if isNull(raw) {
			empty := ""
			input.AssignedTo = &empty
		} else {
			input.AssignedTo = req.AssignedTo
		}
	}
	if raw, present := fields["dueDate"]; present {
		if isNull(raw) {
			input.ClearDueDate = true
		} else {
			dueDate, err := parseDueDate(req.DueDate)
			if err != nil {
				return err
			}
			input.DueDate = dueDate
		}
	}

	task, err := h.tasks.Update(c.Context(), principal, c.Params("taskId"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("task updated", dto.NewTaskResponse(task)))
}

// Delete handles DELETE /tasks/:taskId. Hard delete.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.tasks.Delete(c.Context(), principal, c.Params("taskId"), c.IP()); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("task deleted", nil))
}

func parseDueDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, apperrors.NewValidationError("dueDate must be an RFC 3339 timestamp", nil)
	}
	return &t, nil
}

func rawFields(body []byte) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
