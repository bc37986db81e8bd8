package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/domain"
	"github.com/smartticket/platform/internal/events"
	"github.com/smartticket/platform/internal/repository"
	apperrors "github.com/smartticket/platform/pkg/util"
)

// manual reroutes carry full confidence unless the caller says otherwise
const rerouteDefaultConfidence = 100

// DepartmentPusher propagates a routing decision to the ticket store.
type DepartmentPusher interface {
	PushDepartment(ctx context.Context, ticketID int64, department string, confidenceScore int) error
}

// RoutingService records routing decisions, pushes them to the ticket
// store, and announces them on the bus.
type RoutingService struct {
	routings    repository.RoutingRepository
	departments repository.DepartmentRepository
	pusher      DepartmentPusher
	publisher   events.Publisher
	logger      *zap.Logger
}

// RoutingDependencies bundles collaborators for the routing service.
type RoutingDependencies struct {
	RoutingRepo    repository.RoutingRepository
	DepartmentRepo repository.DepartmentRepository
	Pusher         DepartmentPusher
	Publisher      events.Publisher
	Logger         *zap.Logger
}

// NewRoutingService builds the service.
func NewRoutingService(deps RoutingDependencies) *RoutingService {
	return &RoutingService{
		routings:    deps.RoutingRepo,
		departments: deps.DepartmentRepo,
		pusher:      deps.Pusher,
		publisher:   deps.Publisher,
		logger:      deps.Logger,
	}
}

// RouteInput describes an explicit routing request.
type RouteInput struct {
	TicketID        int64
	Department      string
	ConfidenceScore int
}

// RouteTicket appends a routing record and announces it. The push to
// the ticket store is best effort; the routed event is not, so a
// failed publish fails the request.
func (s *RoutingService) RouteTicket(ctx context.Context, input RouteInput) (*domain.RoutingRecord, error) {
	if input.TicketID <= 0 {
		return nil, apperrors.NewValidationError("Missing required field: ticket_id", nil)
	}
	if !domain.ValidDepartment(input.Department) {
		return nil, apperrors.NewValidationError(unknownDepartmentMessage(input.Department), nil)
	}
	if input.ConfidenceScore < 0 || input.ConfidenceScore > 100 {
		return nil, apperrors.NewValidationError("Confidence score must be between 0 and 100", nil)
	}

	record, err := s.route(ctx, input.TicketID, input.Department, input.ConfidenceScore, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("routed ticket",
		zap.Int64("ticket_id", record.TicketID),
		zap.String("department", record.Department),
		zap.Int("confidence_score", record.ConfidenceScore))

	return record, nil
}

// RerouteTicket overrides an earlier routing decision. Confidence
// defaults to full for manual reroutes.
func (s *RoutingService) RerouteTicket(ctx context.Context, ticketID int64, department string, confidenceScore *int) (*domain.RoutingRecord, error) {
	if ticketID <= 0 {
		return nil, apperrors.NewValidationError("Missing required field: ticket_id", nil)
	}
	if !domain.ValidDepartment(department) {
		return nil, apperrors.NewValidationError(unknownDepartmentMessage(department), nil)
	}
	confidence := rerouteDefaultConfidence
	if confidenceScore != nil {
		confidence = *confidenceScore
	}
	if confidence < 0 || confidence > 100 {
		return nil, apperrors.NewValidationError("Confidence score must be between 0 and 100", nil)
	}

	record, err := s.route(ctx, ticketID, department, confidence, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rerouted ticket",
		zap.Int64("ticket_id", record.TicketID),
		zap.String("department", record.Department),
		zap.Int("confidence_score", record.ConfidenceScore))

	return record, nil
}

// HandleTicketCategorized routes a ticket based on a categorization
// event. Persistence or publish failures surface to the consumer so
// the delivery is rejected rather than silently acknowledged.
func (s *RoutingService) HandleTicketCategorized(ctx context.Context, payload *events.TicketCategorized) error {
	record, err := s.route(ctx, payload.TicketID, payload.Department, payload.ConfidenceScore, false)
	if err != nil {
		return err
	}

	s.logger.Info("routed ticket from event",
		zap.Int64("ticket_id", record.TicketID),
		zap.String("department", record.Department),
		zap.Int("confidence_score", record.ConfidenceScore))

	return nil
}

func (s *RoutingService) route(ctx context.Context, ticketID int64, department string, confidence int, rerouted bool) (*domain.RoutingRecord, error) {
	record := &domain.RoutingRecord{
		TicketID:        ticketID,
		Department:      department,
		ConfidenceScore: confidence,
	}
	if err := s.routings.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create routing record: %w", err)
	}

	if s.pusher != nil {
		if err := s.pusher.PushDepartment(ctx, ticketID, department, confidence); err != nil {
			s.logger.Warn("update ticket department in ticket store",
				zap.Int64("ticket_id", ticketID),
				zap.Error(err))
		}
	}

	env, err := events.NewEnvelope(events.EventTicketRouted, events.TicketRouted{
		TicketID:        ticketID,
		Department:      department,
		ConfidenceScore: confidence,
		Rerouted:        rerouted,
	})
	if err != nil {
		return nil, fmt.Errorf("build routed event: %w", err)
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		return nil, fmt.Errorf("publish routed event: %w", err)
	}

	return record, nil
}

// RoutingStatistics aggregates distribution and confidence figures.
func (s *RoutingService) RoutingStatistics(ctx context.Context) (*domain.RoutingStats, error) {
	stats, err := s.routings.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("routing statistics: %w", err)
	}
	return stats, nil
}

// RoutingHistory lists all routing records for a ticket, newest first.
func (s *RoutingService) RoutingHistory(ctx context.Context, ticketID int64) ([]domain.RoutingRecord, error) {
	history, err := s.routings.HistoryByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("routing history for ticket %d: %w", ticketID, err)
	}
	return history, nil
}

// ListDepartments returns the active department catalog.
func (s *RoutingService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// GetDepartment fetches a single department by name.
func (s *RoutingService) GetDepartment(ctx context.Context, name string) (*domain.Department, error) {
	department, err := s.departments.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Department", nil)
		}
		return nil, fmt.Errorf("get department %s: %w", name, err)
	}
	return department, nil
}

func unknownDepartmentMessage(department string) string {
	return fmt.Sprintf("Invalid department: %s. Must be one of: %s", department, strings.Join(domain.Departments(), ", "))
}
