package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/ai"
	"github.com/smartticket/platform/internal/events"
	apperrors "github.com/smartticket/platform/pkg/util"
)

// CategorizationService assigns departments to tickets, via the model
// when one is configured and via keyword fallback otherwise.
type CategorizationService struct {
	engine    *ai.Engine
	publisher events.Publisher
	logger    *zap.Logger
}

// CategorizationDependencies bundles collaborators for the
// categorization service.
type CategorizationDependencies struct {
	Engine    *ai.Engine
	Publisher events.Publisher
	Logger    *zap.Logger
}

// NewCategorizationService builds the service.
func NewCategorizationService(deps CategorizationDependencies) *CategorizationService {
	return &CategorizationService{
		engine:    deps.Engine,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

// CategorizeInput describes an on-demand categorization request.
type CategorizeInput struct {
	TicketID    int64
	Title       string
	Description string
}

// CategorizationResult is the outcome of a categorization.
type CategorizationResult struct {
	TicketID        int64
	Department      string
	ConfidenceScore int
}

// ModelAvailable reports whether a language model is configured.
func (s *CategorizationService) ModelAvailable() bool {
	return s.engine.Available()
}

// Categorize classifies the ticket and publishes the result. The
// publish is part of the contract here: callers get an error when the
// result could not be announced.
func (s *CategorizationService) Categorize(ctx context.Context, input CategorizeInput) (*CategorizationResult, error) {
	if input.TicketID <= 0 {
		return nil, apperrors.NewValidationError("Missing required field: ticket_id", nil)
	}
	if input.Title == "" {
		return nil, apperrors.NewValidationError("Missing required field: title", nil)
	}
	if input.Description == "" {
		return nil, apperrors.NewValidationError("Missing required field: description", nil)
	}

	department, confidence := s.engine.Categorize(ctx, input.Title, input.Description)
	result := &CategorizationResult{
		TicketID:        input.TicketID,
		Department:      department,
		ConfidenceScore: confidence,
	}

	if err := s.publishResult(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info("categorized ticket",
		zap.Int64("ticket_id", input.TicketID),
		zap.String("department", department),
		zap.Int("confidence_score", confidence))

	return result, nil
}

// HandleTicketCreated categorizes a freshly created ticket from the
// bus. Failures are logged and the delivery is still acknowledged; the
// ticket stays pending and can be categorized on demand later.
func (s *CategorizationService) HandleTicketCreated(ctx context.Context, payload *events.TicketCreated) error {
	ticket := payload.Ticket

	department, confidence := s.engine.Categorize(ctx, ticket.Title, ticket.Description)
	result := &CategorizationResult{
		TicketID:        ticket.ID,
		Department:      department,
		ConfidenceScore: confidence,
	}

	if err := s.publishResult(ctx, result); err != nil {
		s.logger.Error("publish categorization result",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
		return nil
	}

	s.logger.Info("categorized ticket from event",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("department", department),
		zap.Int("confidence_score", confidence))

	return nil
}

func (s *CategorizationService) publishResult(ctx context.Context, result *CategorizationResult) error {
	env, err := events.NewEnvelope(events.EventTicketCategorized, events.TicketCategorized{
		TicketID:        result.TicketID,
		Department:      result.Department,
		ConfidenceScore: result.ConfidenceScore,
	})
	if err != nil {
		return fmt.Errorf("build categorized event: %w", err)
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		return fmt.Errorf("publish categorized event: %w", err)
	}
	return nil
}
