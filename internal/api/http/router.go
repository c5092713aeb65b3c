package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Tickets.DeleteTicket)

	app.Get("/customers/:id/tickets", cfg.Tickets.ListCustomerTickets)
	app.Get("/employees/:id/tickets", cfg.Tickets.ListEmployeeTickets)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleManager, domain.RoleAdmin))
	reports.Get("/tickets/by-city", cfg.Reports.ByCity)
	reports.Get("/tickets/by-state", cfg.Reports.ByState)
	reports.Get("/tickets/by-department", cfg.Reports.ByDepartment)
	reports.Get("/tickets/status-counts", cfg.Reports.StatusCounts)
	reports.Get("/outages/hotspots", cfg.Reports.OutageHotspots)
	reports.Get("/managers/:id/ticket-count", cfg.Reports.ManagerTicketCount)
	reports.Get("/managers/:id/response-time", cfg.Reports.ManagerResponseTime)
	reports.Get("/managers/:id/resolution-time", cfg.Reports.ManagerResolutionTime)
	reports.Get("/employees/:id/response-time", cfg.Reports.EmployeeResponseTime)
	reports.Get("/employees/:id/resolution-time/monthly", cfg.Reports.EmployeeMonthlyResolution)
}
