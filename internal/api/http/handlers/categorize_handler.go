package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartticket/platform/internal/api/dto"
	"github.com/smartticket/platform/internal/service"
	apperrors "github.com/smartticket/platform/pkg/util"
)

// CategorizeHandler manages on-demand categorization endpoints.
type CategorizeHandler struct {
	service     *service.CategorizationService
	serviceName string
}

// NewCategorizeHandler constructs handler.
func NewCategorizeHandler(categorizationService *service.CategorizationService, serviceName string) *CategorizeHandler {
	return &CategorizeHandler{service: categorizationService, serviceName: serviceName}
}

// Health GET /health. Reports whether the language model is wired in
// alongside the usual liveness answer.
func (h *CategorizeHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "healthy",
		"service":      h.serviceName,
		"ai_available": h.service.ModelAvailable(),
	})
}

// Categorize POST /categorize.
func (h *CategorizeHandler) Categorize(c *fiber.Ctx) error {
	var req dto.CategorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == nil {
		return apperrors.NewValidationError("Missing required field: ticket_id", nil)
	}
	if req.Title == nil {
		return apperrors.NewValidationError("Missing required field: title", nil)
	}
	if req.Description == nil {
		return apperrors.NewValidationError("Missing required field: description", nil)
	}

	result, err := h.service.Categorize(c.UserContext(), service.CategorizeInput{
		TicketID:    *req.TicketID,
		Title:       *req.Title,
		Description: *req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CategorizeResponse{
		TicketID:        result.TicketID,
		Department:      result.Department,
		ConfidenceScore: result.ConfidenceScore,
	})
}
