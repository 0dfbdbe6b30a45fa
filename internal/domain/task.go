package domain

import "time"

// TaskStatus represents workflow states for a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority enumerates task priorities.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether the priority is a known value.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task lives inside a project. TenantID is denormalized from the project so
// tenant filters never need a join; an assignee must belong to the same
// tenant as the task. Tasks are hard-deleted.
type Task struct {
	ID          string
	ProjectID   string
	TenantID    string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	AssignedTo  *string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
