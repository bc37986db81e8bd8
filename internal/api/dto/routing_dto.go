package dto

import "time"

// RouteRequest payload. Pointer fields distinguish absent from zero.
type RouteRequest struct {
	TicketID        *int64  `json:"ticket_id"`
	Department      *string `json:"department"`
	ConfidenceScore *int    `json:"confidence_score"`
}

// RerouteRequest payload.
type RerouteRequest struct {
	Department      *string `json:"department"`
	ConfidenceScore *int    `json:"confidence_score"`
}

// RouteResponse reports a stored routing decision. Rerouted only
// appears on manual overrides.
type RouteResponse struct {
	RoutingID       int64  `json:"routing_id"`
	TicketID        int64  `json:"ticket_id"`
	Department      string `json:"department"`
	ConfidenceScore int    `json:"confidence_score"`
	Rerouted        bool   `json:"rerouted,omitempty"`
}

// RoutingRecordResponse is the wire form of one routing record.
type RoutingRecordResponse struct {
	ID              int64     `json:"id"`
	TicketID        int64     `json:"ticket_id"`
	Department      string    `json:"department"`
	ConfidenceScore int       `json:"confidence_score"`
	RoutedAt        time.Time `json:"routed_at"`
}

// RoutingHistoryResponse wraps a ticket's routing history.
type RoutingHistoryResponse struct {
	TicketID int64                   `json:"ticket_id"`
	Count    int                     `json:"count"`
	History  []RoutingRecordResponse `json:"history"`
}

// RoutingStatsResponse reports routing distribution figures.
type RoutingStatsResponse struct {
	TotalRoutings            int64              `json:"total_routings"`
	DepartmentDistribution   map[string]int64   `json:"department_distribution"`
	DepartmentPercentages    map[string]float64 `json:"department_percentages"`
	AverageConfidenceByDept  map[string]float64 `json:"average_confidence_by_department"`
	OverallAverageConfidence float64            `json:"overall_average_confidence"`
}

// DepartmentResponse is the wire form of a catalog department.
type DepartmentResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DepartmentListResponse wraps the department catalog.
type DepartmentListResponse struct {
	Count       int                  `json:"count"`
	Departments []DepartmentResponse `json:"departments"`
}
