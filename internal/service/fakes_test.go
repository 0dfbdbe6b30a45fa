package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/events"
	"github.com/spec-kit/taskboard/internal/repository"
	apperrors "github.com/spec-kit/taskboard/pkg/util"
)

type fakeTenantRepo struct {
	tenants   map[string]*domain.Tenant
	admins    map[string]*domain.User
	listRows  []repository.TenantWithCounts
	listTotal int
	stats     map[string]*domain.TenantStats
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{
		tenants: map[string]*domain.Tenant{},
		admins:  map[string]*domain.User{},
		stats:   map[string]*domain.TenantStats{},
	}
}

func (f *fakeTenantRepo) CreateWithAdmin(ctx context.Context, tenant *domain.Tenant, admin *domain.User) error {
	for _, existing := range f.tenants {
		if strings.EqualFold(existing.Subdomain, tenant.Subdomain) {
			return apperrors.NewConflict("subdomain or admin email already exists", nil)
		}
	}
	now := time.Now()
	tenant.CreatedAt, tenant.UpdatedAt = now, now
	admin.TenantID = tenant.ID
	admin.CreatedAt, admin.UpdatedAt = now, now
	stored := *tenant
	f.tenants[tenant.ID] = &stored
	storedAdmin := *admin
	f.admins[admin.ID] = &storedAdmin
	return nil
}

func (f *fakeTenantRepo) Update(ctx context.Context, tenant *domain.Tenant) error {
	if _, ok := f.tenants[tenant.ID]; !ok {
		return pgx.ErrNoRows
	}
	tenant.UpdatedAt = time.Now()
	stored := *tenant
	f.tenants[tenant.ID] = &stored
	return nil
}

func (f *fakeTenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *tenant
	return &copied, nil
}

func (f *fakeTenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	for _, tenant := range f.tenants {
		if strings.EqualFold(tenant.Subdomain, subdomain) {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTenantRepo) List(ctx context.Context, filter repository.TenantFilter) ([]repository.TenantWithCounts, int, error) {
	return f.listRows, f.listTotal, nil
}

func (f *fakeTenantRepo) GetStats(ctx context.Context, id string) (*domain.TenantStats, error) {
	if stats, ok := f.stats[id]; ok {
		return stats, nil
	}
	return &domain.TenantStats{}, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		stored := *user
		repo.users[user.ID] = &stored
	}
	return repo
}

func (f *fakeUserRepo) CreateTx(ctx context.Context, tx pgx.Tx, user *domain.User) error {
	for _, existing := range f.users {
		if existing.TenantID == user.TenantID && strings.EqualFold(existing.Email, user.Email) {
			return apperrors.NewConflict("email already exists in this tenant", nil)
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.TenantID == tenantID && strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(ctx context.Context, tenantID string) ([]repository.UserWithTenant, error) {
	var rows []repository.UserWithTenant
	for _, user := range f.users {
		if tenantID != "" && user.TenantID != tenantID {
			continue
		}
		rows = append(rows, repository.UserWithTenant{User: *user})
	}
	return rows, nil
}

type fakeProjectRepo struct {
	projects   map[string]*domain.Project
	listedWith []string
}

func newFakeProjectRepo(projects ...*domain.Project) *fakeProjectRepo {
	repo := &fakeProjectRepo{projects: map[string]*domain.Project{}}
	for _, project := range projects {
		stored := *project
		repo.projects[project.ID] = &stored
	}
	return repo
}

func (f *fakeProjectRepo) CreateTx(ctx context.Context, tx pgx.Tx, project *domain.Project) error {
	now := time.Now()
	project.CreatedAt, project.UpdatedAt = now, now
	stored := *project
	f.projects[project.ID] = &stored
	return nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	if _, ok := f.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	project.UpdatedAt = time.Now()
	stored := *project
	f.projects[project.ID] = &stored
	return nil
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *project
	return &copied, nil
}

func (f *fakeProjectRepo) List(ctx context.Context, tenantID string) ([]domain.Project, error) {
	f.listedWith = append(f.listedWith, tenantID)
	var rows []domain.Project
	for _, project := range f.projects {
		if project.Status == domain.ProjectStatusArchived {
			continue
		}
		if tenantID != "" && project.TenantID != tenantID {
			continue
		}
		rows = append(rows, *project)
	}
	return rows, nil
}

type fakeTaskRepo struct {
	tasks      map[string]*domain.Task
	listedWith []repository.TaskFilter
}

func newFakeTaskRepo(tasks ...*domain.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: map[string]*domain.Task{}}
	for _, task := range tasks {
		stored := *task
		repo.tasks[task.ID] = &stored
	}
	return repo
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now()
	task.CreatedAt, task.UpdatedAt = now, now
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	task.UpdatedAt = time.Now()
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	f.listedWith = append(f.listedWith, filter)
	var rows []domain.Task
	for _, task := range f.tasks {
		if filter.TenantID != "" && task.TenantID != filter.TenantID {
			continue
		}
		if filter.ProjectID != "" && task.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		rows = append(rows, *task)
	}
	return rows, nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tasks, id)
	return nil
}

// fakeQuotaGuard counts reservations against fixed limits. A negative
// limit means unlimited.
type fakeQuotaGuard struct {
	userLimit    int
	projectLimit int
	userCount    int
	projectCount int
}

func (g *fakeQuotaGuard) ReserveUserSlot(ctx context.Context, tenantID string, insert func(pgx.Tx) error) error {
	if g.userLimit >= 0 && g.userCount >= g.userLimit {
		return apperrors.NewQuotaExceeded("user limit reached for this tenant")
	}
	if err := insert(nil); err != nil {
		return err
	}
	g.userCount++
	return nil
}

func (g *fakeQuotaGuard) ReserveProjectSlot(ctx context.Context, tenantID string, insert func(pgx.Tx) error) error {
	if g.projectLimit >= 0 && g.projectCount >= g.projectLimit {
		return apperrors.NewQuotaExceeded("project limit reached for this tenant")
	}
	if err := insert(nil); err != nil {
		return err
	}
	g.projectCount++
	return nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) published(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
