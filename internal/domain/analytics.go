package domain

import "time"

// AnalyticsEvent is one observed platform event, appended by the
// analytics consumers and never mutated. EventType holds the short
// form ("created", "categorized", "routed", "status_updated").
type AnalyticsEvent struct {
	ID              int64
	EventType       string
	TicketID        int64
	Department      *string
	Status          *string
	ConfidenceScore *int
	Metadata        map[string]any
	CreatedAt       time.Time
}

// DashboardSummary is the headline view over the analytics store.
type DashboardSummary struct {
	TotalTickets      int64
	ByDepartment      map[string]int64
	ByStatus          map[string]int64
	AverageConfidence float64
	RecentTickets24h  int64
}

// RoutingBreakdown is the routing view derived from observed events,
// as served by the analytics dashboard.
type RoutingBreakdown struct {
	DepartmentDistribution  map[string]int64
	DepartmentPercentages   map[string]float64
	AverageConfidenceByDept map[string]float64
}

// TicketAnalytics narrows ticket creation counts to a period and an
// optional department.
type TicketAnalytics struct {
	Period       string
	TotalTickets int64
	ByDepartment map[string]int64
}

// PerformanceMetrics reports resolution figures over the latest known
// status of each ticket.
type PerformanceMetrics struct {
	TotalTickets                    int64
	ResolvedTickets                 int64
	ResolutionRate                  float64
	AverageCategorizationConfidence float64
}

// DailyCount is one day of ticket creation volume.
type DailyCount struct {
	Date  string
	Count int64
}

// DepartmentAnalytics is the per-department drill-down view.
type DepartmentAnalytics struct {
	Department        string
	TotalTickets      int64
	AverageConfidence float64
	ByStatus          map[string]int64
}
