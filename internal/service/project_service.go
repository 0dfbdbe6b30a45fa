package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/events"
	"github.com/spec-kit/taskboard/internal/repository"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

// ProjectService manages projects within a tenant.
type ProjectService struct {
	projects   repository.ProjectRepository
	quota      QuotaGuard
	dispatcher events.Dispatcher
}

// ProjectDependencies bundles requirements for the project service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	Quota       QuotaGuard
	Dispatcher  events.Dispatcher
}

// NewProjectService builds the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects:   deps.ProjectRepo,
		quota:      deps.Quota,
		dispatcher: deps.Dispatcher,
	}
}

// List returns non-archived projects visible to the caller. super_admin
// may pass an explicit tenant filter; everyone else is forced to their
// own tenant.
func (s *ProjectService) List(ctx context.Context, principal *auth.Principal, tenantFilter string) ([]domain.Project, error) {
	tenantID := principal.TenantID
	if principal.Role == domain.RoleSuperAdmin {
		tenantID = tenantFilter
	}
	return s.projects.List(ctx, tenantID)
}

// ProjectCreateInput describes the creation payload.
type ProjectCreateInput struct {
	Name        string
	Description string
	IPAddress   string
}

// Create adds a project to the caller's tenant, enforcing the project
// quota atomically with the insert.
func (s *ProjectService) Create(ctx context.Context, principal *auth.Principal, input ProjectCreateInput) (*domain.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("project name is required", nil)
	}

	tenantID := principal.TenantID
	if err := auth.Authorize(principal.Role, principal.TenantID, tenantID, auth.OpProjectCreate); err != nil {
		return nil, err
	}

	project := &domain.Project{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        input.Name,
		Description: input.Description,
		Status:      domain.ProjectStatusActive,
		CreatedBy:   principal.UserID,
	}

	err := s.quota.ReserveProjectSlot(ctx, tenantID, func(tx pgx.Tx) error {
		return s.projects.CreateTx(ctx, tx, project)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventProjectCreated,
		TenantID:   &tenantID,
		ActorID:    &principal.UserID,
		EntityType: "project",
		EntityID:   project.ID,
		IPAddress:  optional(input.IPAddress),
	})
	return project, nil
}

// Get returns a project by id, tenant-checked.
func (s *ProjectService) Get(ctx context.Context, principal *auth.Principal, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, project.TenantID, auth.OpProjectView); err != nil {
		return nil, err
	}
	return project, nil
}

// ProjectUpdateInput carries optional field updates. Nil fields are left
// untouched.
type ProjectUpdateInput struct {
	Name        *string
	Description *string
	Status      *string
}

// Update applies a field-by-field allow-list with enum re-validation.
func (s *ProjectService) Update(ctx context.Context, principal *auth.Principal, projectID string, input ProjectUpdateInput) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, project.TenantID, auth.OpProjectUpdate); err != nil {
		return nil, err
	}

	updated := false

	if input.Name != nil {
		project.Name = *input.Name
		updated = true
	}
	if input.Description != nil {
		project.Description = *input.Description
		updated = true
	}
	if input.Status != nil {
		status := domain.ProjectStatus(*input.Status)
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", nil)
		}
		project.Status = status
		updated = true
	}

	if !updated {
		return nil, apperrors.NewValidationError("no valid fields to update", nil)
	}

	if err := s.projects.Update(ctx, project); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("project", nil)
		}
		return nil, err
	}
	return project, nil
}

// Archive soft-deletes a project. Re-archiving an archived project is a
// no-op error, not a silent success.
func (s *ProjectService) Archive(ctx context.Context, principal *auth.Principal, projectID, ip string) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("project", nil)
		}
		return err
	}

	if err := auth.Authorize(principal.Role, principal.TenantID, project.TenantID, auth.OpProjectArchive); err != nil {
		return err
	}

	if project.Status == domain.ProjectStatusArchived {
		return apperrors.NewValidationError("project is already archived", nil)
	}

	project.Status = domain.ProjectStatusArchived
	if err := s.projects.Update(ctx, project); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:       events.EventProjectArchived,
		TenantID:   &project.TenantID,
		ActorID:    &principal.UserID,
		EntityType: "project",
		EntityID:   project.ID,
		IPAddress:  optional(ip),
	})
	return nil
}

func (s *ProjectService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.OccurredAt = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
