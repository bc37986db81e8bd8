package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler answers the per-service health probe.
type HealthHandler struct {
	service string
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service}
}

// Check GET /health.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": h.service,
	})
}
