package dto

import "time"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
}

// UpdateTicketRequest payload. Absent fields stay nil.
type UpdateTicketRequest struct {
	Status          *string `json:"status"`
	Department      *string `json:"department"`
	ConfidenceScore *int    `json:"confidence_score"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	UserName        string    `json:"user_name"`
	UserEmail       string    `json:"user_email"`
	Department      *string   `json:"department"`
	ConfidenceScore *int      `json:"confidence_score"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TicketListResponse wraps a ticket listing.
type TicketListResponse struct {
	Count   int              `json:"count"`
	Tickets []TicketResponse `json:"tickets"`
}

// TicketStatsResponse reports ticket counts and confidence.
type TicketStatsResponse struct {
	TotalTickets      int64            `json:"total_tickets"`
	ByDepartment      map[string]int64 `json:"by_department"`
	ByStatus          map[string]int64 `json:"by_status"`
	AverageConfidence float64          `json:"average_confidence"`
}

// StatusListResponse lists the valid ticket statuses.
type StatusListResponse struct {
	Statuses []string `json:"statuses"`
}
