package dto

import (
	"time"

	"github.com/spec-kit/taskboard/internal/domain"
)

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	AssignedTo  string  `json:"assignedTo"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskRequest carries optional field updates; absent fields are left
// untouched. assignedTo and dueDate sent as explicit null clear the value,
// which the handler detects from the raw body.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assignedTo"`
	DueDate     *string `json:"dueDate"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          string              `json:"id"`
	ProjectID   string              `json:"projectId"`
	TenantID    string              `json:"tenantId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	AssignedTo  *string             `json:"assignedTo"`
	DueDate     *time.Time          `json:"dueDate"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// NewTaskResponse maps a domain task onto the wire shape.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		TenantID:    t.TenantID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		AssignedTo:  t.AssignedTo,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTaskList maps a slice of tasks.
func NewTaskList(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}
