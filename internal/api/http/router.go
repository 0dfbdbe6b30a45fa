package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard/internal/api/http/handlers"
	"github.com/spec-kit/taskboard/internal/auth"
	"github.com/spec-kit/taskboard/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tenants        *handlers.TenantsHandler
	Users          *handlers.UsersHandler
	Projects       *handlers.ProjectsHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.AuthMiddleware
	MetricsHandler fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		app.Get("/metrics", cfg.MetricsHandler)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register-tenant", cfg.Auth.RegisterTenant)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	tenants := app.Group("/tenants", cfg.AuthMiddleware.Handle)
	tenants.Get("/", auth.RequireRole(domain.RoleSuperAdmin), cfg.Tenants.List)
	tenants.Get("/:tenantId", cfg.Tenants.Get)
	tenants.Put("/:tenantId", cfg.Tenants.Update)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.RequireRole(domain.RoleSuperAdmin, domain.RoleTenantAdmin), cfg.Users.List)
	users.Post("/", auth.RequireRole(domain.RoleSuperAdmin, domain.RoleTenantAdmin), cfg.Users.Create)
	users.Patch("/:userId", cfg.Users.Update)
	users.Delete("/:userId", cfg.Users.Deactivate)

	projects := app.Group("/projects", cfg.AuthMiddleware.Handle)
	projects.Get("/", cfg.Projects.List)
	projects.Post("/", cfg.Projects.Create)
	projects.Get("/:projectId", cfg.Projects.Get)
	projects.Patch("/:projectId", cfg.Projects.Update)
	projects.Delete("/:projectId", cfg.Projects.Archive)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle)
	tasks.Get("/", cfg.Tasks.List)
	tasks.Post("/", cfg.Tasks.Create)
	tasks.Patch("/:taskId", cfg.Tasks.Update)
	tasks.Delete("/:taskId", cfg.Tasks.Delete)
}
