package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartticket/platform/internal/api/dto"
	"github.com/smartticket/platform/internal/service"
)

const defaultTrendDays = 30

// AnalyticsHandler serves the dashboard and analytics endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Dashboard GET /dashboard/summary.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.DashboardSummaryResponse{
		TotalTickets:      summary.TotalTickets,
		ByDepartment:      summary.ByDepartment,
		ByStatus:          summary.ByStatus,
		AverageConfidence: summary.AverageConfidence,
		RecentTickets24h:  summary.RecentTickets24h,
	})
}

// RoutingBreakdown GET /dashboard/routing.
func (h *AnalyticsHandler) RoutingBreakdown(c *fiber.Ctx) error {
	breakdown, err := h.service.RoutingBreakdown(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.RoutingBreakdownResponse{
		DepartmentDistribution:  breakdown.DepartmentDistribution,
		DepartmentPercentages:   breakdown.DepartmentPercentages,
		AverageConfidenceByDept: breakdown.AverageConfidenceByDept,
	})
}

// TicketAnalytics GET /analytics/tickets.
func (h *AnalyticsHandler) TicketAnalytics(c *fiber.Ctx) error {
	period := c.Query("period", "all")
	department := c.Query("department")

	analytics, err := h.service.TicketAnalytics(c.UserContext(), period, department)
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketAnalyticsResponse{
		Period:       analytics.Period,
		TotalTickets: analytics.TotalTickets,
		ByDepartment: analytics.ByDepartment,
	})
}

// Performance GET /analytics/performance.
func (h *AnalyticsHandler) Performance(c *fiber.Ctx) error {
	metrics, err := h.service.Performance(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.PerformanceResponse{
		TotalTickets:                    metrics.TotalTickets,
		ResolvedTickets:                 metrics.ResolvedTickets,
		ResolutionRate:                  metrics.ResolutionRate,
		AverageCategorizationConfidence: metrics.AverageCategorizationConfidence,
	})
}

// Trends GET /analytics/trends.
func (h *AnalyticsHandler) Trends(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultTrendDays)
	if days <= 0 {
		days = defaultTrendDays
	}

	trends, err := h.service.Trends(c.UserContext(), days)
	if err != nil {
		return err
	}

	daily := make([]dto.DailyCountResponse, 0, len(trends))
	for _, entry := range trends {
		daily = append(daily, dto.DailyCountResponse{Date: entry.Date, Count: entry.Count})
	}
	return c.JSON(dto.TrendsResponse{Days: days, DailyTicketCreation: daily})
}

// DepartmentAnalytics GET /analytics/department/:name.
func (h *AnalyticsHandler) DepartmentAnalytics(c *fiber.Ctx) error {
	name, err := unescapeParam(c, "name")
	if err != nil {
		return err
	}
	analytics, err := h.service.DepartmentAnalytics(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(dto.DepartmentAnalyticsResponse{
		Department:        analytics.Department,
		TotalTickets:      analytics.TotalTickets,
		AverageConfidence: analytics.AverageConfidence,
		ByStatus:          analytics.ByStatus,
	})
}
