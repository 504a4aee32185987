package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cybershield/threat-exchange/internal/api/http/handlers"
	"github.com/cybershield/threat-exchange/internal/auth"
	"github.com/cybershield/threat-exchange/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Organizations  *handlers.OrganizationsHandler
	Reports        *handlers.ReportsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuth())

	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/me", cfg.Auth.Me)

	protected.Post("/organizations", cfg.Organizations.CreateOrganization)
	protected.Patch("/organizations/:id", cfg.Organizations.UpdateOrganization)
	protected.Delete("/organizations/:id", cfg.Organizations.DeleteOrganization)
	protected.Get("/organizations", cfg.Organizations.ListOrganizations)
	protected.Get("/users/organizations", cfg.Organizations.ListUserOrganizations)

	protected.Get("/users", cfg.Users.ListUsers)
	protected.Put("/users/:id", cfg.Users.UpdateUser)

	protected.Post("/reports", cfg.Reports.CreateReport)
	protected.Get("/reports/user", cfg.Reports.ListUserReports)
	protected.Get("/reports/:id", cfg.Reports.GetReport)
	protected.Patch("/reports/:id", cfg.Reports.UpdateReport)
	protected.Delete("/reports/:id", cfg.Reports.DeleteReport)
	protected.Post("/reports/:id/submit", cfg.Reports.SubmitReport)
	protected.Post("/reports/:id/:sourceOrgId/share/:targetOrgId", cfg.Reports.ShareReport)
	protected.Post("/reports/:id/:sourceOrgId/revoke/:targetOrgId", cfg.Reports.RevokeReport)
	protected.Post("/reports/:id/broadcast",
		auth.RequireRole(domain.RoleGovBody), cfg.Reports.BroadcastReport)
	protected.Post("/reports/:id/remove-from-network",
		auth.RequireRole(domain.RoleGovBody), cfg.Reports.RemoveReportFromNetwork)
	protected.Post("/reports/:id/response-actions", cfg.Reports.ProposeResponseAction)
	protected.Get("/reports/:id/response-actions", cfg.Reports.ListResponseActions)

	protected.Get("/notifications", cfg.Notifications.ListNotifications)
	protected.Patch("/notifications/:id", cfg.Notifications.UpdateNotification)
}
