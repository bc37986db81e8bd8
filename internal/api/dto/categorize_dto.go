package dto

// CategorizeRequest payload. Pointer fields distinguish absent from
// zero.
type CategorizeRequest struct {
	TicketID    *int64  `json:"ticket_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// CategorizeResponse reports a categorization outcome.
type CategorizeResponse struct {
	TicketID        int64  `json:"ticket_id"`
	Department      string `json:"department"`
	ConfidenceScore int    `json:"confidence_score"`
}
