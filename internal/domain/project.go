package domain

import "time"

// ProjectStatus represents lifecycle states for a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Valid reports whether the status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

// Project belongs to exactly one tenant. Archiving is the soft-delete path.
type Project struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Status      ProjectStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
