package dto

// DashboardSummaryResponse is the headline analytics view.
type DashboardSummaryResponse struct {
	TotalTickets      int64            `json:"total_tickets"`
	ByDepartment      map[string]int64 `json:"by_department"`
	ByStatus          map[string]int64 `json:"by_status"`
	AverageConfidence float64          `json:"average_confidence"`
	RecentTickets24h  int64            `json:"recent_tickets_24h"`
}

// RoutingBreakdownResponse is the routing view derived from events.
type RoutingBreakdownResponse struct {
	DepartmentDistribution  map[string]int64   `json:"department_distribution"`
	DepartmentPercentages   map[string]float64 `json:"department_percentages"`
	AverageConfidenceByDept map[string]float64 `json:"average_confidence_by_department"`
}

// TicketAnalyticsResponse reports creation counts for a period.
type TicketAnalyticsResponse struct {
	Period       string           `json:"period"`
	TotalTickets int64            `json:"total_tickets"`
	ByDepartment map[string]int64 `json:"by_department"`
}

// PerformanceResponse reports resolution figures.
type PerformanceResponse struct {
	TotalTickets                    int64   `json:"total_tickets"`
	ResolvedTickets                 int64   `json:"resolved_tickets"`
	ResolutionRate                  float64 `json:"resolution_rate"`
	AverageCategorizationConfidence float64 `json:"average_categorization_confidence"`
}

// DailyCountResponse is one day of creation volume.
type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TrendsResponse wraps the daily creation series.
type TrendsResponse struct {
	Days                int                  `json:"days"`
	DailyTicketCreation []DailyCountResponse `json:"daily_ticket_creation"`
}

// DepartmentAnalyticsResponse is the per-department drill-down.
type DepartmentAnalyticsResponse struct {
	Department        string           `json:"department"`
	TotalTickets      int64            `json:"total_tickets"`
	AverageConfidence float64          `json:"average_confidence"`
	ByStatus          map[string]int64 `json:"by_status"`
}
