package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/domain"
	"github.com/smartticket/platform/internal/events"
	"github.com/smartticket/platform/internal/repository"
	apperrors "github.com/smartticket/platform/pkg/util"
)

// ErrDuplicateEvent marks a redelivery of an already recorded event.
// Consumers acknowledge such deliveries without recording twice.
var ErrDuplicateEvent = errors.New("duplicate event delivery")

// DeliveryDeduper decides whether an event id is seen for the first
// time. persistence.DedupStore is the redis-backed implementation.
type DeliveryDeduper interface {
	FirstDelivery(ctx context.Context, eventID string) bool
}

// AnalyticsService appends bus events to the analytics log and serves
// the dashboard views derived from it.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	dedup     DeliveryDeduper
	logger    *zap.Logger
}

// AnalyticsDependencies bundles collaborators for the analytics
// service.
type AnalyticsDependencies struct {
	AnalyticsRepo repository.AnalyticsRepository
	Dedup         DeliveryDeduper
	Logger        *zap.Logger
}

// NewAnalyticsService builds the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	return &AnalyticsService{
		analytics: deps.AnalyticsRepo,
		dedup:     deps.Dedup,
		logger:    deps.Logger,
	}
}

// HandleEvent records one bus event. Redeliveries detected through the
// envelope id return ErrDuplicateEvent; decode and persistence errors
// surface to the consumer.
func (s *AnalyticsService) HandleEvent(ctx context.Context, env events.Envelope) error {
	payload, err := env.DecodePayload()
	if err != nil {
		return err
	}

	if !s.dedup.FirstDelivery(ctx, env.EventID) {
		s.logger.Info("skipping duplicate event",
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.Type)))
		return ErrDuplicateEvent
	}

	record := domain.AnalyticsEvent{
		EventType: string(env.Type),
	}
	switch p := payload.(type) {
	case *events.TicketCreated:
		record.TicketID = p.Ticket.ID
		record.Metadata = snapshotMetadata(p.Ticket)
	case *events.TicketCategorized:
		record.TicketID = p.TicketID
		record.Department = &p.Department
		record.ConfidenceScore = &p.ConfidenceScore
	case *events.TicketRouted:
		record.TicketID = p.TicketID
		record.Department = &p.Department
	case *events.StatusUpdated:
		record.TicketID = p.TicketID
		record.Status = &p.Status
	default:
		return fmt.Errorf("no analytics recording for event type %q", env.Type)
	}

	if err := s.analytics.Record(ctx, record); err != nil {
		return fmt.Errorf("record %s event: %w", env.Type, err)
	}

	s.logger.Debug("recorded event",
		zap.String("event_id", env.EventID),
		zap.String("event_type", string(env.Type)),
		zap.Int64("ticket_id", record.TicketID))

	return nil
}

// Dashboard returns the overall summary view.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	summary, err := s.analytics.DashboardSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return summary, nil
}

// RoutingBreakdown returns routing distribution figures derived from
// recorded routed events.
func (s *AnalyticsService) RoutingBreakdown(ctx context.Context) (*domain.RoutingBreakdown, error) {
	breakdown, err := s.analytics.RoutingBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("routing breakdown: %w", err)
	}
	return breakdown, nil
}

// TicketAnalytics returns creation counts for the period, optionally
// narrowed to one department.
func (s *AnalyticsService) TicketAnalytics(ctx context.Context, period, department string) (*domain.TicketAnalytics, error) {
	analytics, err := s.analytics.TicketAnalytics(ctx, period, department)
	if err != nil {
		return nil, fmt.Errorf("ticket analytics: %w", err)
	}
	return analytics, nil
}

// Performance returns resolution and confidence figures.
func (s *AnalyticsService) Performance(ctx context.Context) (*domain.PerformanceMetrics, error) {
	metrics, err := s.analytics.PerformanceMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("performance metrics: %w", err)
	}
	return metrics, nil
}

// Trends returns daily ticket creation counts over the window.
func (s *AnalyticsService) Trends(ctx context.Context, days int) ([]domain.DailyCount, error) {
	trends, err := s.analytics.Trends(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("trends: %w", err)
	}
	return trends, nil
}

// DepartmentAnalytics returns the view for a single department.
func (s *AnalyticsService) DepartmentAnalytics(ctx context.Context, department string) (*domain.DepartmentAnalytics, error) {
	if !domain.ValidDepartment(department) {
		return nil, apperrors.NewValidationError("Invalid department", nil)
	}
	analytics, err := s.analytics.DepartmentAnalytics(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("department analytics for %s: %w", department, err)
	}
	return analytics, nil
}

func snapshotMetadata(t events.TicketSnapshot) map[string]any {
	return map[string]any{
		"id":               t.ID,
		"title":            t.Title,
		"description":      t.Description,
		"user_name":        t.UserName,
		"user_email":       t.UserEmail,
		"department":       t.Department,
		"confidence_score": t.ConfidenceScore,
		"status":           t.Status,
		"created_at":       t.CreatedAt,
		"updated_at":       t.UpdatedAt,
	}
}
