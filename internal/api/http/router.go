package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartticket/platform/internal/api/http/handlers"
)

// TicketRoutes bundles handlers for the ticket service.
type TicketRoutes struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
}

// RegisterTicketRoutes wires the ticket service routes. The statistics
// route is registered before the id route so it is not captured as a
// parameter.
func RegisterTicketRoutes(app *fiber.App, r TicketRoutes) {
	app.Get("/health", r.Health.Check)

	app.Post("/tickets", r.Tickets.CreateTicket)
	app.Get("/tickets", r.Tickets.ListTickets)
	app.Get("/tickets/statistics", r.Tickets.Statistics)
	app.Get("/tickets/:id", r.Tickets.GetTicket)
	app.Put("/tickets/:id", r.Tickets.UpdateTicket)
	app.Put("/tickets/:id/status", r.Tickets.UpdateStatus)
}

// CategorizationRoutes bundles handlers for the categorization
// service.
type CategorizationRoutes struct {
	Categorize *handlers.CategorizeHandler
}

// RegisterCategorizationRoutes wires the categorization service
// routes.
func RegisterCategorizationRoutes(app *fiber.App, r CategorizationRoutes) {
	app.Get("/health", r.Categorize.Health)
	app.Post("/categorize", r.Categorize.Categorize)
}

// RoutingRoutes bundles handlers for the routing service.
type RoutingRoutes struct {
	Health  *handlers.HealthHandler
	Routing *handlers.RoutingHandler
}

// RegisterRoutingRoutes wires the routing service routes.
func RegisterRoutingRoutes(app *fiber.App, r RoutingRoutes) {
	app.Get("/health", r.Health.Check)

	app.Get("/departments", r.Routing.ListDepartments)
	app.Get("/departments/:name", r.Routing.GetDepartment)

	app.Post("/route", r.Routing.RouteTicket)
	app.Put("/route/:ticket_id", r.Routing.RerouteTicket)
	app.Get("/routing/statistics", r.Routing.Statistics)
	app.Get("/routing/history/:ticket_id", r.Routing.History)
}

// AnalyticsRoutes bundles handlers for the analytics service.
type AnalyticsRoutes struct {
	Health    *handlers.HealthHandler
	Analytics *handlers.AnalyticsHandler
}

// RegisterAnalyticsRoutes wires the analytics service routes.
func RegisterAnalyticsRoutes(app *fiber.App, r AnalyticsRoutes) {
	app.Get("/health", r.Health.Check)

	app.Get("/dashboard/summary", r.Analytics.Dashboard)
	app.Get("/dashboard/routing", r.Analytics.RoutingBreakdown)

	app.Get("/analytics/tickets", r.Analytics.TicketAnalytics)
	app.Get("/analytics/performance", r.Analytics.Performance)
	app.Get("/analytics/trends", r.Analytics.Trends)
	app.Get("/analytics/department/:name", r.Analytics.DepartmentAnalytics)
}

// RegisterGatewayRoutes wires the gateway surface under /api, plus the
// index document.
func RegisterGatewayRoutes(app *fiber.App, gateway *handlers.GatewayHandler) {
	app.Get("/", gateway.Index)

	api := app.Group("/api")
	api.Get("/health", gateway.Health)
	api.Get("/statuses", gateway.Statuses)

	api.Post("/tickets", gateway.CreateTicket)
	api.Get("/tickets", gateway.ListTickets)
	api.Get("/tickets/statistics", gateway.TicketStatistics)
	api.Get("/tickets/:id", gateway.GetTicket)
	api.Put("/tickets/:id", gateway.UpdateTicket)
	api.Put("/tickets/:id/status", gateway.UpdateTicketStatus)

	api.Get("/departments", gateway.ListDepartments)
	api.Get("/departments/:name", gateway.GetDepartment)
	api.Get("/departments/:name/tickets", gateway.DepartmentTickets)

	api.Post("/route", gateway.RouteTicket)
	api.Put("/route/:ticket_id", gateway.RerouteTicket)
	api.Get("/routing/statistics", gateway.RoutingStatistics)
	api.Get("/routing/history/:ticket_id", gateway.RoutingHistory)

	api.Get("/dashboard/summary", gateway.DashboardSummary)
	api.Get("/dashboard/routing", gateway.DashboardRouting)

	api.Get("/analytics/tickets", gateway.TicketAnalytics)
	api.Get("/analytics/performance", gateway.PerformanceMetrics)
	api.Get("/analytics/trends", gateway.Trends)
	api.Get("/analytics/department/:name", gateway.DepartmentAnalytics)

	api.Post("/categorize", gateway.Categorize)
}
