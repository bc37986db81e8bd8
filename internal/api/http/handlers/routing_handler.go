package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/smartticket/platform/internal/api/dto"
	"github.com/smartticket/platform/internal/domain"
	"github.com/smartticket/platform/internal/service"
	apperrors "github.com/smartticket/platform/pkg/util"
)

// RoutingHandler manages routing and department endpoints.
type RoutingHandler struct {
	service *service.RoutingService
}

// NewRoutingHandler constructs handler.
func NewRoutingHandler(routingService *service.RoutingService) *RoutingHandler {
	return &RoutingHandler{service: routingService}
}

// RouteTicket POST /route.
func (h *RoutingHandler) RouteTicket(c *fiber.Ctx) error {
	var req dto.RouteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == nil {
		return apperrors.NewValidationError("Missing required field: ticket_id", nil)
	}
	if req.Department == nil {
		return apperrors.NewValidationError("Missing required field: department", nil)
	}
	if req.ConfidenceScore == nil {
		return apperrors.NewValidationError("Missing required field: confidence_score", nil)
	}

	record, err := h.service.RouteTicket(c.UserContext(), service.RouteInput{
		TicketID:        *req.TicketID,
		Department:      *req.Department,
		ConfidenceScore: *req.ConfidenceScore,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.RouteResponse{
		RoutingID:       record.ID,
		TicketID:        record.TicketID,
		Department:      record.Department,
		ConfidenceScore: record.ConfidenceScore,
	})
}

// RerouteTicket PUT /route/:ticket_id.
func (h *RoutingHandler) RerouteTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "ticket_id")
	if err != nil {
		return err
	}
	var req dto.RerouteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Department == nil {
		return apperrors.NewValidationError("Missing required field: department", nil)
	}

	record, err := h.service.RerouteTicket(c.UserContext(), ticketID, *req.Department, req.ConfidenceScore)
	if err != nil {
		return err
	}
	return c.JSON(dto.RouteResponse{
		RoutingID:       record.ID,
		TicketID:        record.TicketID,
		Department:      record.Department,
		ConfidenceScore: record.ConfidenceScore,
		Rerouted:        true,
	})
}

// Statistics GET /routing/statistics.
func (h *RoutingHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.RoutingStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.RoutingStatsResponse{
		TotalRoutings:            stats.TotalRoutings,
		DepartmentDistribution:   stats.DepartmentDistribution,
		DepartmentPercentages:    stats.DepartmentPercentages,
		AverageConfidenceByDept:  stats.AverageConfidenceByDept,
		OverallAverageConfidence: stats.OverallAverageConfidence,
	})
}

// History GET /routing/history/:ticket_id.
func (h *RoutingHandler) History(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "ticket_id")
	if err != nil {
		return err
	}
	history, err := h.service.RoutingHistory(c.UserContext(), ticketID)
	if err != nil {
		return err
	}

	records := make([]dto.RoutingRecordResponse, 0, len(history))
	for i := range history {
		records = append(records, routingRecordResponse(&history[i]))
	}
	return c.JSON(dto.RoutingHistoryResponse{
		TicketID: ticketID,
		Count:    len(records),
		History:  records,
	})
}

// ListDepartments GET /departments.
func (h *RoutingHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, departmentResponse(&departments[i]))
	}
	return c.JSON(dto.DepartmentListResponse{Count: len(items), Departments: items})
}

// GetDepartment GET /departments/:name.
func (h *RoutingHandler) GetDepartment(c *fiber.Ctx) error {
	name, err := unescapeParam(c, "name")
	if err != nil {
		return err
	}
	department, err := h.service.GetDepartment(c.UserContext(), name)
	if err != nil {
		return err
	}
	resp := departmentResponse(department)
	return c.JSON(resp)
}

// unescapeParam reads a path parameter that may carry encoded spaces,
// like department names.
func unescapeParam(c *fiber.Ctx, name string) (string, error) {
	value, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", apperrors.NewNotFound("Resource", nil)
	}
	return value, nil
}

func routingRecordResponse(record *domain.RoutingRecord) dto.RoutingRecordResponse {
	return dto.RoutingRecordResponse{
		ID:              record.ID,
		TicketID:        record.TicketID,
		Department:      record.Department,
		ConfidenceScore: record.ConfidenceScore,
		RoutedAt:        record.RoutedAt,
	}
}

func departmentResponse(department *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:          department.ID,
		Name:        department.Name,
		Description: department.Description,
		IsActive:    department.IsActive,
		CreatedAt:   department.CreatedAt,
	}
}
