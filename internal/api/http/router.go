package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openvoice/feedback-service/internal/api/http/handlers"
	"github.com/openvoice/feedback-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Issues         *handlers.IssuesHandler
	Dashboard      *handlers.DashboardHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	// Public: anonymous submission and tracking.
	api.Post("/issues", cfg.Issues.Create)
	api.Get("/tickets/:ticketID", cfg.Issues.Lookup)
	api.Get("/meta", cfg.Issues.Meta)

	admin := api.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)

	protected := admin.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Admin.Logout)
	protected.Get("/dashboard", cfg.Dashboard.Dashboard)
	protected.Post("/dashboard/refresh", cfg.Dashboard.Refresh)
	protected.Post("/issues/:id/resolve", cfg.Dashboard.Resolve)
}
