package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/domain"
	"github.com/smartticket/platform/internal/events"
	"github.com/smartticket/platform/internal/repository"
)

type fakeAnalyticsRepo struct {
	repository.AnalyticsRepository
	recorded []domain.AnalyticsEvent
	err      error
}

func (r *fakeAnalyticsRepo) Record(ctx context.Context, event domain.AnalyticsEvent) error {
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, event)
	return nil
}

func (r *fakeAnalyticsRepo) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	summary := &domain.DashboardSummary{
		ByDepartment: map[string]int64{},
		ByStatus:     map[string]int64{},
	}
	created := map[int64]bool{}
	routed := map[int64]bool{}
	for _, event := range r.recorded {
		switch event.EventType {
		case "created":
			if !created[event.TicketID] {
				created[event.TicketID] = true
				summary.TotalTickets++
			}
		case "routed":
			if event.Department != nil && !routed[event.TicketID] {
				routed[event.TicketID] = true
				summary.ByDepartment[*event.Department]++
			}
		}
	}
	return summary, nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) FirstDelivery(ctx context.Context, eventID string) bool {
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[eventID] {
		return false
	}
	d.seen[eventID] = true
	return true
}

func newAnalyticsServiceForTest(repo *fakeAnalyticsRepo) *AnalyticsService {
	return NewAnalyticsService(AnalyticsDependencies{
		AnalyticsRepo: repo,
		Dedup:         &fakeDeduper{},
		Logger:        zap.NewNop(),
	})
}

func TestHandleEventRecordsEachLifecycleVariant(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsServiceForTest(repo)

	created, err := events.NewEnvelope(events.EventTicketCreated, events.TicketCreated{
		Ticket: events.TicketSnapshot{
			ID: 1, Title: "VPN not connecting", Description: "Can't connect to VPN from home",
			UserName: "Dana Smith", UserEmail: "dana@example.com", Status: "pending",
		},
	})
	require.NoError(t, err)
	categorized, err := events.NewEnvelope(events.EventTicketCategorized, events.TicketCategorized{
		TicketID: 1, Department: "IT Support", ConfidenceScore: 60,
	})
	require.NoError(t, err)
	routed, err := events.NewEnvelope(events.EventTicketRouted, events.TicketRouted{
		TicketID: 1, Department: "IT Support", ConfidenceScore: 60,
	})
	require.NoError(t, err)
	status, err := events.NewEnvelope(events.EventStatusUpdated, events.StatusUpdated{
		TicketID: 1, Status: "resolved",
	})
	require.NoError(t, err)

	for _, env := range []events.Envelope{created, categorized, routed, status} {
		require.NoError(t, svc.HandleEvent(context.Background(), env))
	}

	require.Len(t, repo.recorded, 4)

	assert.Equal(t, "created", repo.recorded[0].EventType)
	assert.Equal(t, int64(1), repo.recorded[0].TicketID)
	assert.NotNil(t, repo.recorded[0].Metadata)

	assert.Equal(t, "categorized", repo.recorded[1].EventType)
	require.NotNil(t, repo.recorded[1].ConfidenceScore)
	assert.Equal(t, 60, *repo.recorded[1].ConfidenceScore)

	assert.Equal(t, "routed", repo.recorded[2].EventType)
	require.NotNil(t, repo.recorded[2].Department)
	assert.Equal(t, "IT Support", *repo.recorded[2].Department)

	assert.Equal(t, "status_updated", repo.recorded[3].EventType)
	require.NotNil(t, repo.recorded[3].Status)
	assert.Equal(t, "resolved", *repo.recorded[3].Status)
}

func TestHandleEventSkipsRedeliveredEnvelope(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsServiceForTest(repo)

	env, err := events.NewEnvelope(events.EventTicketCategorized, events.TicketCategorized{
		TicketID: 2, Department: "HR", ConfidenceScore: 80,
	})
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(context.Background(), env))
	err = svc.HandleEvent(context.Background(), env)
	require.ErrorIs(t, err, ErrDuplicateEvent)

	assert.Len(t, repo.recorded, 1, "redelivery must not double-count")
}

func TestHandleEventRejectsMalformedPayloads(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsServiceForTest(repo)

	env := events.Envelope{
		EventID: "malformed-1",
		Type:    events.EventTicketCategorized,
		Payload: []byte(`{"ticket_id": -1}`),
	}
	err := svc.HandleEvent(context.Background(), env)
	require.Error(t, err)
	assert.Empty(t, repo.recorded)
}

func TestHandleEventSurfacesRepositoryFailure(t *testing.T) {
	repo := &fakeAnalyticsRepo{err: errors.New("db down")}
	svc := newAnalyticsServiceForTest(repo)

	env, err := events.NewEnvelope(events.EventStatusUpdated, events.StatusUpdated{
		TicketID: 3, Status: "in_progress",
	})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), env)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEvent)
}
