package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/smartticket/platform/internal/api/dto"
	"github.com/smartticket/platform/internal/domain"
	"github.com/smartticket/platform/internal/service"
	apperrors "github.com/smartticket/platform/pkg/util"
)

// TicketsHandler manages ticket CRUD endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		UserName:    req.UserName,
		UserEmail:   req.UserEmail,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ticketResponse(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := domain.TicketFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{Count: len(items), Tickets: items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), id, service.TicketUpdateInput{
		Status:          req.Status,
		Department:      req.Department,
		ConfidenceScore: req.ConfidenceScore,
	})
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// UpdateStatus PUT /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.UpdateTicketStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// Statistics GET /tickets/statistics.
func (h *TicketsHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.TicketStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketStatsResponse{
		TotalTickets:      stats.TotalTickets,
		ByDepartment:      stats.ByDepartment,
		ByStatus:          stats.ByStatus,
		AverageConfidence: stats.AverageConfidence,
	})
}

// parseID reads a numeric path parameter. Non-numeric values behave
// like an unmatched route.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("Resource", nil)
	}
	return id, nil
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		UserName:        ticket.UserName,
		UserEmail:       ticket.UserEmail,
		Department:      ticket.Department,
		ConfidenceScore: ticket.ConfidenceScore,
		Status:          string(ticket.Status),
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}
