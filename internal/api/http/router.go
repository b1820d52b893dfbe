package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/academy-auth/internal/api/http/handlers"
	"github.com/spec-kit/academy-auth/internal/auth"
	"github.com/spec-kit/academy-auth/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
		app.Get("/health/metrics", cfg.Health.Metrics)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)

	// A prefix-less sub-group would mount its middleware on every /auth path, login included,
	// so protected routes take the chain individually.
	protected := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), h}
	}
	authGroup.Post("/logout", protected(cfg.Auth.Logout)...)
	authGroup.Get("/me", protected(cfg.Auth.Me)...)
	authGroup.Post("/password/change", protected(cfg.Auth.ChangePassword)...)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdministrator))
	admin.Post("/subjects/:id/force-reauth", cfg.Admin.ForceReauth)
}
