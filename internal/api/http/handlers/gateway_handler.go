package handlers

import (
	"net/url"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/smartticket/platform/internal/api/dto"
	"github.com/smartticket/platform/internal/client"
	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/domain"
)

const (
	systemName   = "Smart Ticket System"
	architecture = "Microservices"
)

// Upstream names as reported by the gateway health fanout.
const (
	upstreamTickets   = "ticket-service"
	upstreamAI        = "ai-service"
	upstreamRouting   = "routing-service"
	upstreamAnalytics = "analytics-service"
)

// GatewayHandler is the single client entry point. It answers the
// index and health locally and forwards everything else.
type GatewayHandler struct {
	services  config.ServicesConfig
	version   string
	forwarder *client.Forwarder
	prober    *client.HealthProber
}

// NewGatewayHandler constructs handler.
func NewGatewayHandler(services config.ServicesConfig, version string, forwarder *client.Forwarder, prober *client.HealthProber) *GatewayHandler {
	return &GatewayHandler{
		services:  services,
		version:   version,
		forwarder: forwarder,
		prober:    prober,
	}
}

// Index GET /. Names every route the gateway exposes.
func (h *GatewayHandler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":      systemName,
		"architecture": architecture,
		"version":      h.version,
		"status":       "running",
		"endpoints": fiber.Map{
			"health": fiber.Map{
				"path":        "/api/health",
				"method":      "GET",
				"description": "Health check for all services",
			},
			"tickets": fiber.Map{
				"create":        fiber.Map{"path": "/api/tickets", "method": "POST"},
				"list":          fiber.Map{"path": "/api/tickets", "method": "GET"},
				"get":           fiber.Map{"path": "/api/tickets/<id>", "method": "GET"},
				"update":        fiber.Map{"path": "/api/tickets/<id>", "method": "PUT"},
				"update_status": fiber.Map{"path": "/api/tickets/<id>/status", "method": "PUT"},
				"statistics":    fiber.Map{"path": "/api/tickets/statistics", "method": "GET"},
			},
			"departments": fiber.Map{
				"list":    fiber.Map{"path": "/api/departments", "method": "GET"},
				"get":     fiber.Map{"path": "/api/departments/<name>", "method": "GET"},
				"tickets": fiber.Map{"path": "/api/departments/<name>/tickets", "method": "GET"},
			},
			"routing": fiber.Map{
				"route":      fiber.Map{"path": "/api/route", "method": "POST"},
				"reroute":    fiber.Map{"path": "/api/route/<ticket_id>", "method": "PUT"},
				"statistics": fiber.Map{"path": "/api/routing/statistics", "method": "GET"},
				"history":    fiber.Map{"path": "/api/routing/history/<ticket_id>", "method": "GET"},
			},
			"analytics": fiber.Map{
				"dashboard_summary":    fiber.Map{"path": "/api/dashboard/summary", "method": "GET"},
				"routing_analytics":    fiber.Map{"path": "/api/dashboard/routing", "method": "GET"},
				"ticket_analytics":     fiber.Map{"path": "/api/analytics/tickets", "method": "GET"},
				"performance":          fiber.Map{"path": "/api/analytics/performance", "method": "GET"},
				"trends":               fiber.Map{"path": "/api/analytics/trends", "method": "GET"},
				"department_analytics": fiber.Map{"path": "/api/analytics/department/<name>", "method": "GET"},
			},
			"categorization": fiber.Map{
				"categorize": fiber.Map{"path": "/api/categorize", "method": "POST"},
			},
		},
	})
}

// Health GET /api/health. Probes every service in parallel; any
// unhealthy answer degrades the overall status.
func (h *GatewayHandler) Health(c *fiber.Ctx) error {
	probes := []struct {
		name string
		url  string
	}{
		{upstreamTickets, h.services.TicketURL + "/health"},
		{upstreamAI, h.services.AIURL + "/health"},
		{upstreamRouting, h.services.RoutingURL + "/health"},
		{upstreamAnalytics, h.services.AnalyticsURL + "/health"},
	}

	services := map[string]string{"api-gateway": client.HealthHealthy}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, probe := range probes {
		wg.Add(1)
		go func(name, url string) {
			defer wg.Done()
			state := h.prober.Probe(url)
			mu.Lock()
			services[name] = state
			mu.Unlock()
		}(probe.name, probe.url)
	}
	wg.Wait()

	overall := "healthy"
	for _, state := range services {
		if state != client.HealthHealthy {
			overall = "degraded"
			break
		}
	}
	return c.JSON(fiber.Map{
		"status":   overall,
		"services": services,
	})
}

// Statuses GET /api/statuses.
func (h *GatewayHandler) Statuses(c *fiber.Ctx) error {
	return c.JSON(dto.StatusListResponse{Statuses: domain.TicketStatuses()})
}

// CreateTicket POST /api/tickets.
func (h *GatewayHandler) CreateTicket(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamTickets, h.services.TicketURL+"/tickets")
}

// ListTickets GET /api/tickets.
func (h *GatewayHandler) ListTickets(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamTickets, withQuery(c, h.services.TicketURL+"/tickets"))
}

// TicketStatistics GET /api/tickets/statistics.
func (h *GatewayHandler) TicketStatistics(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamTickets, h.services.TicketURL+"/tickets/statistics")
}

// GetTicket GET /api/tickets/:id.
func (h *GatewayHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.forwarder.Forward(c, upstreamTickets, h.services.TicketURL+"/tickets/"+strconv.FormatInt(id, 10))
}

// UpdateTicket PUT /api/tickets/:id.
func (h *GatewayHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.forwarder.Forward(c, upstreamTickets, h.services.TicketURL+"/tickets/"+strconv.FormatInt(id, 10))
}

// UpdateTicketStatus PUT /api/tickets/:id/status.
func (h *GatewayHandler) UpdateTicketStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.forwarder.Forward(c, upstreamTickets, h.services.TicketURL+"/tickets/"+strconv.FormatInt(id, 10)+"/status")
}

// ListDepartments GET /api/departments.
func (h *GatewayHandler) ListDepartments(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamRouting, h.services.RoutingURL+"/departments")
}

// GetDepartment GET /api/departments/:name.
func (h *GatewayHandler) GetDepartment(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamRouting, h.services.RoutingURL+"/departments/"+c.Params("name"))
}

// DepartmentTickets GET /api/departments/:name/tickets. Served by the
// ticket store as a department-filtered listing.
func (h *GatewayHandler) DepartmentTickets(c *fiber.Ctx) error {
	name, err := unescapeParam(c, "name")
	if err != nil {
		return err
	}
	query := url.Values{}
	query.Set("department", name)
	if status := c.Query("status"); status != "" {
		query.Set("status", status)
	}
	return h.forwarder.Forward(c, upstreamTickets, h.services.TicketURL+"/tickets?"+query.Encode())
}

// RouteTicket POST /api/route.
func (h *GatewayHandler) RouteTicket(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamRouting, h.services.RoutingURL+"/route")
}

// RerouteTicket PUT /api/route/:ticket_id.
func (h *GatewayHandler) RerouteTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "ticket_id")
	if err != nil {
		return err
	}
	return h.forwarder.Forward(c, upstreamRouting, h.services.RoutingURL+"/route/"+strconv.FormatInt(id, 10))
}

// RoutingStatistics GET /api/routing/statistics.
func (h *GatewayHandler) RoutingStatistics(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamRouting, h.services.RoutingURL+"/routing/statistics")
}

// RoutingHistory GET /api/routing/history/:ticket_id.
func (h *GatewayHandler) RoutingHistory(c *fiber.Ctx) error {
	id, err := parseID(c, "ticket_id")
	if err != nil {
		return err
	}
	return h.forwarder.Forward(c, upstreamRouting, h.services.RoutingURL+"/routing/history/"+strconv.FormatInt(id, 10))
}

// DashboardSummary GET /api/dashboard/summary.
func (h *GatewayHandler) DashboardSummary(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamAnalytics, h.services.AnalyticsURL+"/dashboard/summary")
}

// DashboardRouting GET /api/dashboard/routing.
func (h *GatewayHandler) DashboardRouting(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamAnalytics, h.services.AnalyticsURL+"/dashboard/routing")
}

// TicketAnalytics GET /api/analytics/tickets.
func (h *GatewayHandler) TicketAnalytics(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamAnalytics, withQuery(c, h.services.AnalyticsURL+"/analytics/tickets"))
}

// PerformanceMetrics GET /api/analytics/performance.
func (h *GatewayHandler) PerformanceMetrics(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamAnalytics, h.services.AnalyticsURL+"/analytics/performance")
}

// Trends GET /api/analytics/trends.
func (h *GatewayHandler) Trends(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamAnalytics, withQuery(c, h.services.AnalyticsURL+"/analytics/trends"))
}

// DepartmentAnalytics GET /api/analytics/department/:name.
func (h *GatewayHandler) DepartmentAnalytics(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamAnalytics, h.services.AnalyticsURL+"/analytics/department/"+c.Params("name"))
}

// Categorize POST /api/categorize.
func (h *GatewayHandler) Categorize(c *fiber.Ctx) error {
	return h.forwarder.Forward(c, upstreamAI, h.services.AIURL+"/categorize")
}

func withQuery(c *fiber.Ctx, target string) string {
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		return target + "?" + qs
	}
	return target
}
