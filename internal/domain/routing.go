package domain

import "time"

// RoutingRecord is one routing decision for a ticket. Records are
// append-only; the latest RoutedAt wins as the current department.
type RoutingRecord struct {
	ID              int64
	TicketID        int64
	Department      string
	ConfidenceScore int
	RoutedAt        time.Time
}

// RoutingStats aggregates routing decisions. Distribution and averages
// consider only the latest record per ticket.
type RoutingStats struct {
	TotalRoutings            int64
	DepartmentDistribution   map[string]int64
	DepartmentPercentages    map[string]float64
	AverageConfidenceByDept  map[string]float64
	OverallAverageConfidence float64
}
