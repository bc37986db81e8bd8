package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/smartticket/platform/internal/domain"
	"github.com/smartticket/platform/internal/events"
	"github.com/smartticket/platform/internal/repository"
	apperrors "github.com/smartticket/platform/pkg/util"
)

// TicketService coordinates ticket lifecycle workflows.
type TicketService struct {
	tickets   repository.TicketRepository
	publisher events.Publisher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Publisher  events.Publisher
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:   deps.TicketRepo,
		publisher: deps.Publisher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	UserName    string
	UserEmail   string
}

// TicketUpdateInput carries the optional fields of a ticket update.
// Nil means the field was absent from the request.
type TicketUpdateInput struct {
	Status          *string
	Department      *string
	ConfidenceScore *int
}

// CreateTicket stores a new ticket in pending status and announces it
// on the bus. A failed publish does not fail the create; the ticket is
// already durable and the bus layer logs the loss.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	required := []struct {
		field string
		value string
	}{
		{"title", input.Title},
		{"description", input.Description},
		{"user_name", input.UserName},
		{"user_email", input.UserEmail},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Missing required field: %s", f.field), nil)
		}
	}

	ticket := &domain.Ticket{
		Title:       input.Title,
		Description: input.Description,
		UserName:    input.UserName,
		UserEmail:   input.UserEmail,
		Status:      domain.TicketStatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.publishEvent(ctx, events.EventTicketCreated, events.TicketCreated{
		Ticket: events.SnapshotTicket(*ticket),
	})

	return ticket, nil
}

// ListTickets returns tickets matching the filter, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	return ticket, nil
}

// UpdateTicket applies the provided fields. A department change
// carries a confidence score: the provided one, else the stored one,
// else zero. Each applied field is announced as its own event.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}

	update := repository.TicketUpdate{}

	if input.Status != nil {
		if !domain.ValidStatus(*input.Status) {
			return nil, apperrors.NewValidationError(invalidStatusMessage(), nil)
		}
		update.Status = input.Status
	}

	if input.Department != nil {
		if !domain.ValidDepartment(*input.Department) {
			return nil, apperrors.NewValidationError(invalidDepartmentMessage(), nil)
		}
		if input.ConfidenceScore != nil && (*input.ConfidenceScore < 0 || *input.ConfidenceScore > 100) {
			return nil, apperrors.NewValidationError("Confidence score must be between 0 and 100", nil)
		}
		confidence := 0
		switch {
		case input.ConfidenceScore != nil:
			confidence = *input.ConfidenceScore
		case ticket.ConfidenceScore != nil:
			confidence = *ticket.ConfidenceScore
		}
		update.Department = input.Department
		update.ConfidenceScore = &confidence
	}

	if update.Empty() {
		return nil, apperrors.NewValidationError("No valid fields to update", nil)
	}

	updated, err := s.tickets.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}

	if update.Status != nil {
		s.publishEvent(ctx, events.EventStatusUpdated, events.StatusUpdated{
			TicketID: id,
			Status:   *update.Status,
		})
	}
	if update.Department != nil {
		s.publishEvent(ctx, events.EventDepartmentUpdated, events.DepartmentUpdated{
			TicketID:        id,
			Department:      *update.Department,
			ConfidenceScore: *update.ConfidenceScore,
		})
	}

	return updated, nil
}

// UpdateTicketStatus sets the status on an existing ticket and
// announces the change.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, id int64, status string) (*domain.Ticket, error) {
	exists, err := s.tickets.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check ticket %d: %w", id, err)
	}
	if !exists {
		return nil, apperrors.NewNotFound("Ticket", nil)
	}

	if strings.TrimSpace(status) == "" {
		return nil, apperrors.NewValidationError("Missing required field: status", nil)
	}
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError(invalidStatusMessage(), nil)
	}

	updated, err := s.tickets.Update(ctx, id, repository.TicketUpdate{Status: &status})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", nil)
		}
		return nil, fmt.Errorf("update ticket %d status: %w", id, err)
	}

	s.publishEvent(ctx, events.EventStatusUpdated, events.StatusUpdated{
		TicketID: id,
		Status:   status,
	})

	return updated, nil
}

// TicketStatistics aggregates counts by department and status.
func (s *TicketService) TicketStatistics(ctx context.Context) (*domain.TicketStats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("ticket statistics: %w", err)
	}
	return stats, nil
}

func (s *TicketService) publishEvent(ctx context.Context, t events.EventType, payload events.Payload) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(t, payload)
	if err != nil {
		return
	}
	_ = s.publisher.Publish(ctx, env)
}

func invalidStatusMessage() string {
	return fmt.Sprintf("Invalid status. Must be one of: %s", strings.Join(domain.TicketStatuses(), ", "))
}

func invalidDepartmentMessage() string {
	return fmt.Sprintf("Invalid department. Must be one of: %s", strings.Join(domain.Departments(), ", "))
}
