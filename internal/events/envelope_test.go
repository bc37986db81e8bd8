package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKeyMappingIsClosed(t *testing.T) {
	tests := map[EventType]string{
		EventTicketCreated:     "ticket.created",
		EventTicketCategorized: "ticket.categorized",
		EventTicketRouted:      "ticket.routed",
		EventStatusUpdated:     "ticket.status.updated",
		EventDepartmentUpdated: "ticket.department.updated",
	}
	for eventType, want := range tests {
		key, err := RoutingKey(eventType)
		require.NoError(t, err)
		assert.Equal(t, want, key)
	}

	_, err := RoutingKey(EventType("ticket.deleted"))
	assert.Error(t, err)
}

func TestNewEnvelopeAssignsIdentityAndTimestamp(t *testing.T) {
	env, err := NewEnvelope(EventTicketCategorized, TicketCategorized{
		TicketID:        7,
		Department:      "HR",
		ConfidenceScore: 85,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, EventTicketCategorized, env.Type)
	assert.False(t, env.OccurredAt.IsZero())

	second, err := NewEnvelope(EventTicketCategorized, TicketCategorized{
		TicketID:        7,
		Department:      "HR",
		ConfidenceScore: 85,
	})
	require.NoError(t, err)
	assert.NotEqual(t, env.EventID, second.EventID)
}

func TestNewEnvelopeRejectsInvalidPayload(t *testing.T) {
	_, err := NewEnvelope(EventTicketCategorized, TicketCategorized{
		TicketID:        7,
		Department:      "Engineering",
		ConfidenceScore: 85,
	})
	assert.Error(t, err)

	_, err = NewEnvelope(EventTicketCategorized, TicketCategorized{
		TicketID:        7,
		Department:      "HR",
		ConfidenceScore: 150,
	})
	assert.Error(t, err)

	_, err = NewEnvelope(EventStatusUpdated, StatusUpdated{TicketID: 0, Status: "pending"})
	assert.Error(t, err)
}

func TestDecodePayloadRoundTrip(t *testing.T) {
	env, err := NewEnvelope(EventTicketRouted, TicketRouted{
		TicketID:        3,
		Department:      "Facilities",
		ConfidenceScore: 60,
		Rerouted:        true,
	})
	require.NoError(t, err)

	body, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(body, &decoded))

	payload, err := decoded.DecodePayload()
	require.NoError(t, err)

	routed, ok := payload.(*TicketRouted)
	require.True(t, ok)
	assert.Equal(t, int64(3), routed.TicketID)
	assert.Equal(t, "Facilities", routed.Department)
	assert.Equal(t, 60, routed.ConfidenceScore)
	assert.True(t, routed.Rerouted)
}

func TestDecodePayloadRejectsUnknownType(t *testing.T) {
	env := Envelope{
		EventID: "x",
		Type:    EventType("ticket.exploded"),
		Payload: json.RawMessage(`{}`),
	}
	_, err := env.DecodePayload()
	assert.Error(t, err)
}

func TestDecodePayloadRejectsMalformedAndInvalidBodies(t *testing.T) {
	env := Envelope{
		EventID: "x",
		Type:    EventTicketCategorized,
		Payload: json.RawMessage(`not json`),
	}
	_, err := env.DecodePayload()
	assert.Error(t, err)

	env.Payload = json.RawMessage(`{"ticket_id": 4, "department": "Engineering", "confidence_score": 50}`)
	_, err = env.DecodePayload()
	assert.Error(t, err)

	env.Payload = json.RawMessage(`{"ticket_id": 4, "department": "HR", "confidence_score": -1}`)
	_, err = env.DecodePayload()
	assert.Error(t, err)
}
