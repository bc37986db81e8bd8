package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/ai"
	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/events"
	apperrors "github.com/smartticket/platform/pkg/util"
)

func newCategorizationServiceForTest(pub events.Publisher) *CategorizationService {
	// nil generator: the engine answers through the keyword fallback
	engine := ai.NewEngine(nil, config.AIConfig{MaxRetries: 3}, zap.NewNop())
	return NewCategorizationService(CategorizationDependencies{
		Engine:    engine,
		Publisher: pub,
		Logger:    zap.NewNop(),
	})
}

func TestCategorizePublishesResult(t *testing.T) {
	pub := &fakePublisher{}
	svc := newCategorizationServiceForTest(pub)

	result, err := svc.Categorize(context.Background(), CategorizeInput{
		TicketID:    1,
		Title:       "VPN not connecting",
		Description: "Can't connect to VPN from home",
	})
	require.NoError(t, err)
	assert.Equal(t, "IT Support", result.Department)
	assert.Equal(t, 60, result.ConfidenceScore)

	require.Len(t, pub.envelopes, 1)
	assert.Equal(t, events.EventTicketCategorized, pub.envelopes[0].Type)
}

func TestCategorizeValidatesInput(t *testing.T) {
	svc := newCategorizationServiceForTest(&fakePublisher{})

	for _, input := range []CategorizeInput{
		{TicketID: 0, Title: "t", Description: "d"},
		{TicketID: 1, Title: "", Description: "d"},
		{TicketID: 1, Title: "t", Description: ""},
	} {
		_, err := svc.Categorize(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	}
}

func TestCategorizeFailsWhenPublishFails(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newCategorizationServiceForTest(pub)

	_, err := svc.Categorize(context.Background(), CategorizeInput{
		TicketID:    1,
		Title:       "VPN not connecting",
		Description: "Can't connect to VPN from home",
	})
	assert.Error(t, err)
}

func TestHandleTicketCreatedAbsorbsPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newCategorizationServiceForTest(pub)

	err := svc.HandleTicketCreated(context.Background(), &events.TicketCreated{
		Ticket: events.TicketSnapshot{
			ID: 4, Title: "office too cold", Description: "heating broken on floor 2",
		},
	})
	assert.NoError(t, err, "consumer path acknowledges even when the republish fails")
}

func TestHandleTicketCreatedPublishesCategorization(t *testing.T) {
	pub := &fakePublisher{}
	svc := newCategorizationServiceForTest(pub)

	err := svc.HandleTicketCreated(context.Background(), &events.TicketCreated{
		Ticket: events.TicketSnapshot{
			ID: 4, Title: "VPN not connecting", Description: "Can't connect to VPN from home",
		},
	})
	require.NoError(t, err)

	require.Len(t, pub.envelopes, 1)
	payload, err := pub.envelopes[0].DecodePayload()
	require.NoError(t, err)
	categorized := payload.(*events.TicketCategorized)
	assert.Equal(t, int64(4), categorized.TicketID)
	assert.Equal(t, "IT Support", categorized.Department)
	assert.Equal(t, 60, categorized.ConfidenceScore)
}
