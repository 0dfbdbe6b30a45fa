package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/events"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

func newTestTaskService(tasks *fakeTaskRepo, projects *fakeProjectRepo, users *fakeUserRepo, dispatcher *recordingDispatcher) *TaskService {
	return NewTaskService(TaskDependencies{
		TaskRepo:    tasks,
		ProjectRepo: projects,
		UserRepo:    users,
		Dispatcher:  dispatcher,
	})
}

func taskFixtures() (*fakeTaskRepo, *fakeProjectRepo, *fakeUserRepo) {
	projects := newFakeProjectRepo(&domain.Project{ID: "proj-1", TenantID: "tenant-1", Name: "Site", Status: domain.ProjectStatusActive})
	users := newFakeUserRepo(
		&domain.User{ID: "user-1", TenantID: "tenant-1", Role: domain.RoleUser, IsActive: true},
		&domain.User{ID: "outsider", TenantID: "tenant-2", Role: domain.RoleUser, IsActive: true},
	)
	return newFakeTaskRepo(), projects, users
}

func TestTaskCreateDefaults(t *testing.T) {
	tasks, projects, users := taskFixtures()
	dispatcher := &recordingDispatcher{}
	svc := newTestTaskService(tasks, projects, users, dispatcher)

	task, err := svc.Create(context.Background(), userPrincipal("user-1", "tenant-1"), TaskCreateInput{
		ProjectID: "proj-1",
		Title:     "Ship the header",
	})
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", task.TenantID, "task inherits the project's tenant")
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.Nil(t, task.AssignedTo)
	assert.Nil(t, task.DueDate)
	require.Len(t, dispatcher.published(events.EventTaskCreated), 1)
}

func TestTaskCreateUnknownProject(t *testing.T) {
	tasks, projects, users := taskFixtures()
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	_, err := svc.Create(context.Background(), userPrincipal("user-1", "tenant-1"), TaskCreateInput{
		ProjectID: "ghost",
		Title:     "Orphan",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "project not found", domainErr.Message)
}

func TestTaskCreateCrossTenantProjectDenied(t *testing.T) {
	tasks, projects, users := taskFixtures()
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	_, err := svc.Create(context.Background(), userPrincipal("outsider", "tenant-2"), TaskCreateInput{
		ProjectID: "proj-1",
		Title:     "Sneaky",
	})
	require.Error(t, err)
	assert.Equal(t, "cross-tenant access is not allowed", apperrors.ToDomainError(err).Message)
}

func TestTaskCreateInvalidPriority(t *testing.T) {
	tasks, projects, users := taskFixtures()
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	_, err := svc.Create(context.Background(), userPrincipal("user-1", "tenant-1"), TaskCreateInput{
		ProjectID: "proj-1",
		Title:     "Urgentish",
		Priority:  "critical",
	})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTaskCreateAssigneeMustShareTenant(t *testing.T) {
	tasks, projects, users := taskFixtures()
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	// Applies to every caller, super_admin included.
	_, err := svc.Create(context.Background(), userPrincipal("user-1", "tenant-1"), TaskCreateInput{
		ProjectID:  "proj-1",
		Title:      "Misassigned",
		AssignedTo: "outsider",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "assigned user not found in this tenant", domainErr.Message)

	_, err = svc.Create(context.Background(), superPrincipal(), TaskCreateInput{
		ProjectID:  "proj-1",
		Title:      "Misassigned by operator",
		AssignedTo: "outsider",
	})
	require.Error(t, err)
	assert.Equal(t, "assigned user not found in this tenant", apperrors.ToDomainError(err).Message)
}

func TestTaskCreateWithAssignee(t *testing.T) {
	tasks, projects, users := taskFixtures()
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	task, err := svc.Create(context.Background(), userPrincipal("user-1", "tenant-1"), TaskCreateInput{
		ProjectID:  "proj-1",
		Title:      "Assigned",
		AssignedTo: "user-1",
		Priority:   "high",
	})
	require.NoError(t, err)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, "user-1", *task.AssignedTo)
	assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
}

func TestTaskUpdateFields(t *testing.T) {
	tasks, projects, users := taskFixtures()
	due := time.Now().Add(48 * time.Hour)
	tasks.tasks["task-1"] = &domain.Task{
		ID:        "task-1",
		ProjectID: "proj-1",
		TenantID:  "tenant-1",
		Title:     "Old title",
		Status:    domain.TaskStatusTodo,
		Priority:  domain.TaskPriorityMedium,
	}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	title := "New title"
	status := "in_progress"
	task, err := svc.Update(context.Background(), userPrincipal("user-1", "tenant-1"), "task-1", TaskUpdateInput{
		Title:   &title,
		Status:  &status,
		DueDate: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", task.Title)
	assert.Equal(t, domain.TaskStatusInProgress, task.Status)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(due))
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority, "unset fields untouched")
}

func TestTaskUpdateClearsAssigneeAndDueDate(t *testing.T) {
	tasks, projects, users := taskFixtures()
	assignee := "user-1"
	due := time.Now().Add(24 * time.Hour)
	tasks.tasks["task-1"] = &domain.Task{
		ID:         "task-1",
		ProjectID:  "proj-1",
		TenantID:   "tenant-1",
		Title:      "Assigned",
		Status:     domain.TaskStatusTodo,
		Priority:   domain.TaskPriorityMedium,
		AssignedTo: &assignee,
		DueDate:    &due,
	}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	empty := ""
	task, err := svc.Update(context.Background(), userPrincipal("user-1", "tenant-1"), "task-1", TaskUpdateInput{
		AssignedTo:   &empty,
		ClearDueDate: true,
	})
	require.NoError(t, err)
	assert.Nil(t, task.AssignedTo)
	assert.Nil(t, task.DueDate)
}

func TestTaskUpdateAssigneeCrossTenantRejected(t *testing.T) {
	tasks, projects, users := taskFixtures()
	tasks.tasks["task-1"] = &domain.Task{
		ID:        "task-1",
		ProjectID: "proj-1",
		TenantID:  "tenant-1",
		Title:     "Open",
		Status:    domain.TaskStatusTodo,
		Priority:  domain.TaskPriorityMedium,
	}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	outsider := "outsider"
	_, err := svc.Update(context.Background(), superPrincipal(), "task-1", TaskUpdateInput{AssignedTo: &outsider})
	require.Error(t, err)
	assert.Equal(t, "assigned user not found in this tenant", apperrors.ToDomainError(err).Message)
}

func TestTaskUpdateInvalidStatus(t *testing.T) {
	tasks, projects, users := taskFixtures()
	tasks.tasks["task-1"] = &domain.Task{ID: "task-1", ProjectID: "proj-1", TenantID: "tenant-1", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	status := "done"
	_, err := svc.Update(context.Background(), userPrincipal("user-1", "tenant-1"), "task-1", TaskUpdateInput{Status: &status})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTaskUpdateMissing(t *testing.T) {
	tasks, projects, users := taskFixtures()
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	title := "Anything"
	_, err := svc.Update(context.Background(), userPrincipal("user-1", "tenant-1"), "ghost", TaskUpdateInput{Title: &title})
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTaskUpdateNoFields(t *testing.T) {
	tasks, projects, users := taskFixtures()
	tasks.tasks["task-1"] = &domain.Task{ID: "task-1", ProjectID: "proj-1", TenantID: "tenant-1", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	_, err := svc.Update(context.Background(), userPrincipal("user-1", "tenant-1"), "task-1", TaskUpdateInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTaskDelete(t *testing.T) {
	tasks, projects, users := taskFixtures()
	tasks.tasks["task-1"] = &domain.Task{ID: "task-1", ProjectID: "proj-1", TenantID: "tenant-1", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium}
	dispatcher := &recordingDispatcher{}
	svc := newTestTaskService(tasks, projects, users, dispatcher)

	require.NoError(t, svc.Delete(context.Background(), userPrincipal("user-1", "tenant-1"), "task-1", ""))

	_, err := tasks.GetByID(context.Background(), "task-1")
	assert.Error(t, err)
	require.Len(t, dispatcher.published(events.EventTaskDeleted), 1)
}

func TestTaskDeleteCrossTenantDenied(t *testing.T) {
	tasks, projects, users := taskFixtures()
	tasks.tasks["task-1"] = &domain.Task{ID: "task-1", ProjectID: "proj-1", TenantID: "tenant-1", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	err := svc.Delete(context.Background(), userPrincipal("outsider", "tenant-2"), "task-1", "")
	require.Error(t, err)
	assert.Equal(t, "cross-tenant access is not allowed", apperrors.ToDomainError(err).Message)
}

func TestTaskListForcesOwnTenant(t *testing.T) {
	tasks, projects, users := taskFixtures()
	tasks.tasks["task-1"] = &domain.Task{ID: "task-1", ProjectID: "proj-1", TenantID: "tenant-1", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium}
	tasks.tasks["task-2"] = &domain.Task{ID: "task-2", ProjectID: "proj-2", TenantID: "tenant-2", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	rows, err := svc.List(context.Background(), userPrincipal("user-1", "tenant-1"), TaskListInput{TenantID: "tenant-2"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "task-1", rows[0].ID)
}

func TestTaskListInvalidStatusFilter(t *testing.T) {
	tasks, projects, users := taskFixtures()
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	_, err := svc.List(context.Background(), userPrincipal("user-1", "tenant-1"), TaskListInput{Status: "done"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestTaskListStatusFilter(t *testing.T) {
	tasks, projects, users := taskFixtures()
	tasks.tasks["task-1"] = &domain.Task{ID: "task-1", ProjectID: "proj-1", TenantID: "tenant-1", Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityMedium}
	tasks.tasks["task-2"] = &domain.Task{ID: "task-2", ProjectID: "proj-1", TenantID: "tenant-1", Status: domain.TaskStatusCompleted, Priority: domain.TaskPriorityMedium}
	svc := newTestTaskService(tasks, projects, users, &recordingDispatcher{})

	rows, err := svc.List(context.Background(), userPrincipal("user-1", "tenant-1"), TaskListInput{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "task-2", rows[0].ID)
}
