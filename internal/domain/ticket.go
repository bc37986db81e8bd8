package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// TicketStatuses returns the allowed statuses in lifecycle order.
func TicketStatuses() []string {
	return []string{
		string(TicketStatusPending),
		string(TicketStatusInProgress),
		string(TicketStatusResolved),
	}
}

// ValidStatus reports whether s is one of the allowed ticket statuses.
func ValidStatus(s string) bool {
	switch TicketStatus(s) {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Department and
// ConfidenceScore are nil until categorization assigns them; they are
// always written together.
type Ticket struct {
	ID              int64
	Title           string
	Description     string
	UserName        string
	UserEmail       string
	Department      *string
	ConfidenceScore *int
	Status          TicketStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TicketFilter narrows ticket listings. Zero values mean no filtering.
type TicketFilter struct {
	Status     string
	Department string
}

// TicketStats aggregates counts over the ticket store.
type TicketStats struct {
	TotalTickets      int64
	ByDepartment      map[string]int64
	ByStatus          map[string]int64
	AverageConfidence float64
}
