package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/http/handlers"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Departments    *handlers.DepartmentsHandler
	Directory      *handlers.DirectoryHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Auth.ChangePassword)

	departments := app.Group("/departments", cfg.AuthMiddleware.Handle, auth.RequireRole())
	departments.Get("/", cfg.Departments.List)
	departments.Get("/options", cfg.Departments.Options)
	departments.Get("/:id", cfg.Departments.Get)
	departments.Get("/:id/hierarchy", cfg.Departments.Hierarchy)
	departments.Get("/:id/audit",
		auth.RequireRole(domain.RoleAdmin, domain.RoleHRManager), cfg.Departments.Audit)
	departments.Post("/",
		auth.RequireRole(domain.RoleAdmin, domain.RoleHRManager), cfg.Departments.Create)
	departments.Patch("/:id",
		auth.RequireRole(domain.RoleAdmin, domain.RoleHRManager), cfg.Departments.Update)
	departments.Delete("/:id",
		auth.RequireRole(domain.RoleAdmin, domain.RoleHRManager), cfg.Departments.Deactivate)

	app.Get("/employees", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Directory.ListEmployees)
	app.Get("/positions", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Directory.ListPositions)
}
