package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TicketClient writes routing decisions back to the ticket store over
// its HTTP API.
type TicketClient struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewTicketClient builds a client for the ticket service at baseURL.
func NewTicketClient(baseURL string, timeout time.Duration, logger *zap.Logger) *TicketClient {
	return &TicketClient{
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

// PushDepartment sets the department and confidence on a ticket. The
// request timeout bounds the call; ctx is accepted for interface
// symmetry with other pushers.
func (c *TicketClient) PushDepartment(ctx context.Context, ticketID int64, department string, confidenceScore int) error {
	url := fmt.Sprintf("%s/tickets/%d", c.baseURL, ticketID)

	agent := fiber.Put(url)
	agent.Timeout(c.timeout)
	agent.JSON(fiber.Map{
		"department":       department,
		"confidence_score": confidenceScore,
	})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("put %s: %w", url, errs[0])
	}
	if code != fiber.StatusOK {
		c.logger.Warn("ticket store rejected department update",
			zap.Int64("ticket_id", ticketID),
			zap.Int("status", code),
			zap.ByteString("body", body))
		return fmt.Errorf("put %s: unexpected status %d", url, code)
	}
	return nil
}
