package events

import (
	"fmt"
	"time"

	"github.com/smartticket/platform/internal/domain"
)

// EventType enumerates supported event identifiers. The short form is
// what analytics persists as event_type.
type EventType string

const (
	EventTicketCreated     EventType = "created"
	EventTicketCategorized EventType = "categorized"
	EventTicketRouted      EventType = "routed"
	EventStatusUpdated     EventType = "status_updated"
	EventDepartmentUpdated EventType = "department_updated"
)

// Routing keys on the tickets exchange. The mapping from EventType to
// key is closed; nothing builds keys from strings at call sites.
const (
	KeyTicketCreated     = "ticket.created"
	KeyTicketCategorized = "ticket.categorized"
	KeyTicketRouted      = "ticket.routed"
	KeyStatusUpdated     = "ticket.status.updated"
	KeyDepartmentUpdated = "ticket.department.updated"
)

// RoutingKey resolves the exchange routing key for an event type.
func RoutingKey(t EventType) (string, error) {
	switch t {
	case EventTicketCreated:
		return KeyTicketCreated, nil
	case EventTicketCategorized:
		return KeyTicketCategorized, nil
	case EventTicketRouted:
		return KeyTicketRouted, nil
	case EventStatusUpdated:
		return KeyStatusUpdated, nil
	case EventDepartmentUpdated:
		return KeyDepartmentUpdated, nil
	}
	return "", fmt.Errorf("events: no routing key for event type %q", t)
}

// Payload is implemented by every event payload variant.
type Payload interface {
	Validate() error
}

// TicketSnapshot is the ticket state carried inside created events.
// Timestamps travel as RFC 3339 strings.
type TicketSnapshot struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	UserName        string  `json:"user_name"`
	UserEmail       string  `json:"user_email"`
	Department      *string `json:"department"`
	ConfidenceScore *int    `json:"confidence_score"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// SnapshotTicket converts a domain ticket to its wire snapshot.
func SnapshotTicket(t domain.Ticket) TicketSnapshot {
	return TicketSnapshot{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		UserName:        t.UserName,
		UserEmail:       t.UserEmail,
		Department:      t.Department,
		ConfidenceScore: t.ConfidenceScore,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// TicketCreated payload.
type TicketCreated struct {
	Ticket TicketSnapshot `json:"ticket"`
}

func (p TicketCreated) Validate() error {
	if p.Ticket.ID <= 0 {
		return fmt.Errorf("events: created payload has invalid ticket id %d", p.Ticket.ID)
	}
	if p.Ticket.Title == "" || p.Ticket.Description == "" {
		return fmt.Errorf("events: created payload for ticket %d is missing title or description", p.Ticket.ID)
	}
	return nil
}

// TicketCategorized payload.
type TicketCategorized struct {
	TicketID        int64  `json:"ticket_id"`
	Department      string `json:"department"`
	ConfidenceScore int    `json:"confidence_score"`
}

func (p TicketCategorized) Validate() error {
	if p.TicketID <= 0 {
		return fmt.Errorf("events: categorized payload has invalid ticket id %d", p.TicketID)
	}
	if !domain.ValidDepartment(p.Department) {
		return fmt.Errorf("events: categorized payload has unknown department %q", p.Department)
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 100 {
		return fmt.Errorf("events: categorized payload confidence %d out of range", p.ConfidenceScore)
	}
	return nil
}

// TicketRouted payload. Rerouted marks manual overrides.
type TicketRouted struct {
	TicketID        int64  `json:"ticket_id"`
	Department      string `json:"department"`
	ConfidenceScore int    `json:"confidence_score"`
	Rerouted        bool   `json:"rerouted"`
}

func (p TicketRouted) Validate() error {
	if p.TicketID <= 0 {
		return fmt.Errorf("events: routed payload has invalid ticket id %d", p.TicketID)
	}
	if !domain.ValidDepartment(p.Department) {
		return fmt.Errorf("events: routed payload has unknown department %q", p.Department)
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 100 {
		return fmt.Errorf("events: routed payload confidence %d out of range", p.ConfidenceScore)
	}
	return nil
}

// StatusUpdated payload.
type StatusUpdated struct {
	TicketID int64  `json:"ticket_id"`
	Status   string `json:"status"`
}

func (p StatusUpdated) Validate() error {
	if p.TicketID <= 0 {
		return fmt.Errorf("events: status payload has invalid ticket id %d", p.TicketID)
	}
	if !domain.ValidStatus(p.Status) {
		return fmt.Errorf("events: status payload has unknown status %q", p.Status)
	}
	return nil
}

// DepartmentUpdated payload.
type DepartmentUpdated struct {
	TicketID        int64  `json:"ticket_id"`
	Department      string `json:"department"`
	ConfidenceScore int    `json:"confidence_score"`
}

func (p DepartmentUpdated) Validate() error {
	if p.TicketID <= 0 {
		return fmt.Errorf("events: department payload has invalid ticket id %d", p.TicketID)
	}
	if !domain.ValidDepartment(p.Department) {
		return fmt.Errorf("events: department payload has unknown department %q", p.Department)
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 100 {
		return fmt.Errorf("events: department payload confidence %d out of range", p.ConfidenceScore)
	}
	return nil
}
