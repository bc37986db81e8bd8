package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps every message on the bus. EventID makes redeliveries
// recognizable; Payload stays raw until DecodePayload picks the
// variant for Type.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       EventType       `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a validated payload, assigning the event id and
// timestamp.
func NewEnvelope(t EventType, payload Payload) (Envelope, error) {
	if err := payload.Validate(); err != nil {
		return Envelope{}, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s payload: %w", t, err)
	}
	return Envelope{
		EventID:    uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// DecodePayload unmarshals and validates the payload variant for the
// envelope's type. Unknown types and malformed payloads are errors;
// consumers drop such messages.
func (e Envelope) DecodePayload() (Payload, error) {
	var p Payload
	switch e.Type {
	case EventTicketCreated:
		p = &TicketCreated{}
	case EventTicketCategorized:
		p = &TicketCategorized{}
	case EventTicketRouted:
		p = &TicketRouted{}
	case EventStatusUpdated:
		p = &StatusUpdated{}
	case EventDepartmentUpdated:
		p = &DepartmentUpdated{}
	default:
		return nil, fmt.Errorf("events: unknown event type %q", e.Type)
	}
	if err := json.Unmarshal(e.Payload, p); err != nil {
		return nil, fmt.Errorf("events: decode %s payload: %w", e.Type, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
