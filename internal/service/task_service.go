package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/events"
	"github.com/spec-kit/taskboard/internal/repository"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// TaskService manages tasks within projects.
type TaskService struct {
	tasks      repository.TaskRepository
	projects   repository.ProjectRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TaskDependencies bundles requirements for the task service.
type TaskDependencies struct {
	TaskRepo    repository.TaskRepository
	ProjectRepo repository.ProjectRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewTaskService builds the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:      deps.TaskRepo,
		projects:   deps.ProjectRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TaskListInput carries listing filters.
type TaskListInput struct {
	TenantID  string
	ProjectID string
	Status    string
}

// List returns tasks visible to the caller, optionally filtered by project
// and status. super_admin may pass an explicit tenant filter; everyone
// else is forced to their own tenant.
func (s *TaskService) List(ctx context.Context, principal *auth.Principal, input TaskListInput) ([]domain.Task, error) {
	filter := repository.TaskFilter{ProjectID: input.ProjectID}

	filter.TenantID = principal.TenantID
	if principal.Role == domain.RoleSuperAdmin {
		filter.TenantID = input.TenantID
	}

	if input.Status != "" {
		status := domain.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", nil)
		}
		filter.Status = &status
	}

	return s.tasks.List(ctx, filter)
}

// TaskCreateInput describes the creation payload.
type TaskCreateInput struct {
	ProjectID   string
	Title       string
	Description string
	Priority    string
	AssignedTo  string
	DueDate     *time.Time
	IPAddress   string
}

// Create adds a task to a project. The task inherits the project's tenant;
// an assignee must belong to that tenant no matter who the caller is.
func (s *TaskService) Create(ctx context.Context, principal *auth.Principal, input TaskCreateInput) (*domain.Task, error) {
	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewValidationError("project not found", nil)
		}
		return nil, err
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, project.TenantID, auth.OpTaskCreate); err != nil {
		return nil, err
	}

	tenantID := project.TenantID

	priority := domain.TaskPriorityMedium
	if input.Priority != "" {
		priority = domain.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", nil)
		}
	}

	var assignedTo *string
	if input.AssignedTo != "" {
		if err := s.checkAssignee(ctx, input.AssignedTo, tenantID); err != nil {
			return nil, err
		}
		assignedTo = &input.AssignedTo
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		ProjectID:   project.ID,
		TenantID:    tenantID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		AssignedTo:  assignedTo,
		DueDate:     input.DueDate,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventTaskCreated,
		TenantID:   &tenantID,
		ActorID:    &principal.UserID,
		EntityType: "task",
		EntityID:   task.ID,
		IPAddress:  optional(input.IPAddress),
	})
	return task, nil
}

// TaskUpdateInput carries optional field updates. Nil fields are left
// untouched; AssignedTo set to the empty string clears the assignee and
// ClearDueDate drops the due date.
type TaskUpdateInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	AssignedTo   *string
	DueDate      *time.Time
	ClearDueDate bool
}

// Update applies a field-by-field allow-list with enum re-validation. An
// assignee change is re-checked against the task's tenant for every
// caller, super_admin included.
func (s *TaskService) Update(ctx context.Context, principal *auth.Principal, taskID string, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, err
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, task.TenantID, auth.OpTaskUpdate); err != nil {
		return nil, err
	}

	updated := false

	if input.Title != nil {
		task.Title = *input.Title
		updated = true
	}
	if input.Description != nil {
		task.Description = *input.Description
		updated = true
	}
	if input.Status != nil {
		status := domain.TaskStatus(*input.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", nil)
		}
		task.Status = status
		updated = true
	}
	if input.Priority != nil {
		priority := domain.TaskPriority(*input.Priority)
		if !priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", nil)
		}
		task.Priority = priority
		updated = true
	}
	if input.AssignedTo != nil {
		if *input.AssignedTo == "" {
			task.AssignedTo = nil
		} else {
			if err := s.checkAssignee(ctx, *input.AssignedTo, task.TenantID); err != nil {
				return nil, err
			}
			assignee := *input.AssignedTo
			task.AssignedTo = &assignee
		}
		updated = true
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
		updated = true
	} else if input.ClearDueDate {
		task.DueDate = nil
		updated = true
	}

	if !updated {
		return nil, apperrors.NewValidationError("no valid fields to update", nil)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, err
	}
	return task, nil
}

// Delete hard-deletes a task, tenant-checked.
func (s *TaskService) Delete(ctx context.Context, principal *auth.Principal, taskID, ip string) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("task", nil)
		}
		return err
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, task.TenantID, auth.OpTaskDelete); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventTaskDeleted,
		TenantID:   &task.TenantID,
		ActorID:    &principal.UserID,
		EntityType: "task",
		EntityID:   task.ID,
		IPAddress:  optional(ip),
	})
	return nil
}

// checkAssignee enforces the assignee-tenant invariant: a task may only be
// assigned to a user whose tenant matches the task's.
func (s *TaskService) checkAssignee(ctx context.Context, userID, tenantID string) error {
	assignee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewValidationError("assigned user not found in this tenant", nil)
		}
		return err
	}
	if assignee.TenantID != tenantID {
		return apperrors.NewValidationError("assigned user not found in this tenant", nil)
	}
	return nil
}

func (s *TaskService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.OccurredAt = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
