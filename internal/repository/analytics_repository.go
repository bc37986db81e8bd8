package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartticket/platform/internal/domain"
)

// AnalyticsRepository appends observed events and derives the
// dashboard views from them. The event log is never mutated.
type AnalyticsRepository interface {
	Record(ctx context.Context, event domain.AnalyticsEvent) error
	DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
	RoutingBreakdown(ctx context.Context) (*domain.RoutingBreakdown, error)
	TicketAnalytics(ctx context.Context, period, department string) (*domain.TicketAnalytics, error)
	PerformanceMetrics(ctx context.Context) (*domain.PerformanceMetrics, error)
	Trends(ctx context.Context, days int) ([]domain.DailyCount, error)
	DepartmentAnalytics(ctx context.Context, department string) (*domain.DepartmentAnalytics, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository builds the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) Record(ctx context.Context, event domain.AnalyticsEvent) error {
	const query = `
        INSERT INTO analytics_events (event_type, ticket_id, department, status, confidence_score, metadata)
        VALUES ($1,$2,$3,$4,$5,$6)`
	var metadata any
	if event.Metadata != nil {
		metadata = event.Metadata
	}
	_, err := r.pool.Exec(ctx, query,
		event.EventType,
		event.TicketID,
		event.Department,
		event.Status,
		event.ConfidenceScore,
		metadata,
	)
	return err
}

// latestStatusCTE resolves each ticket's current status from its most
// recent status event.
const latestStatusCTE = `
    SELECT DISTINCT ON (ticket_id) ticket_id, status
    FROM analytics_events
    WHERE event_type = 'status_updated' AND status IS NOT NULL
    ORDER BY ticket_id, created_at DESC`

func (r *analyticsRepository) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	summary := &domain.DashboardSummary{
		ByDepartment: map[string]int64{},
		ByStatus:     map[string]int64{},
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT ticket_id) FROM analytics_events WHERE event_type = 'created'`).
		Scan(&summary.TotalTickets); err != nil {
		return nil, err
	}

	if err := countGroups(ctx, r.pool, `
        SELECT department, COUNT(DISTINCT ticket_id)
        FROM analytics_events
        WHERE event_type = 'routed' AND department IS NOT NULL
        GROUP BY department`, summary.ByDepartment); err != nil {
		return nil, err
	}

	if err := countGroups(ctx, r.pool, fmt.Sprintf(`
        WITH latest_status AS (%s)
        SELECT status, COUNT(*) FROM latest_status GROUP BY status`, latestStatusCTE),
		summary.ByStatus); err != nil {
		return nil, err
	}

	avg, err := r.avgCategorizedConfidence(ctx)
	if err != nil {
		return nil, err
	}
	summary.AverageConfidence = avg

	if err := r.pool.QueryRow(ctx, `
        SELECT COUNT(DISTINCT ticket_id)
        FROM analytics_events
        WHERE event_type = 'created' AND created_at >= NOW() - INTERVAL '24 hours'`).
		Scan(&summary.RecentTickets24h); err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *analyticsRepository) RoutingBreakdown(ctx context.Context) (*domain.RoutingBreakdown, error) {
	breakdown := &domain.RoutingBreakdown{
		DepartmentDistribution:  map[string]int64{},
		DepartmentPercentages:   map[string]float64{},
		AverageConfidenceByDept: map[string]float64{},
	}

	if err := countGroups(ctx, r.pool, `
        SELECT department, COUNT(DISTINCT ticket_id)
        FROM analytics_events
        WHERE event_type = 'routed' AND department IS NOT NULL
        GROUP BY department`, breakdown.DepartmentDistribution); err != nil {
		return nil, err
	}

	var total int64
	for _, count := range breakdown.DepartmentDistribution {
		total += count
	}
	if total > 0 {
		for dept, count := range breakdown.DepartmentDistribution {
			breakdown.DepartmentPercentages[dept] = round2(float64(count) / float64(total) * 100)
		}
	}

	rows, err := r.pool.Query(ctx, `
        SELECT department, AVG(confidence_score)
        FROM analytics_events
        WHERE event_type = 'categorized' AND department IS NOT NULL
        GROUP BY department`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dept string
		var avg float64
		if err := rows.Scan(&dept, &avg); err != nil {
			return nil, err
		}
		breakdown.AverageConfidenceByDept[dept] = round2(avg)
	}
	return breakdown, rows.Err()
}

func (r *analyticsRepository) TicketAnalytics(ctx context.Context, period, department string) (*domain.TicketAnalytics, error) {
	var timeFilter string
	switch period {
	case "day":
		timeFilter = `AND created_at >= NOW() - INTERVAL '1 day'`
	case "week":
		timeFilter = `AND created_at >= NOW() - INTERVAL '7 days'`
	case "month":
		timeFilter = `AND created_at >= NOW() - INTERVAL '30 days'`
	default:
		period = "all"
	}

	result := &domain.TicketAnalytics{
		Period:       period,
		ByDepartment: map[string]int64{},
	}

	totalQuery := fmt.Sprintf(`
        SELECT COUNT(DISTINCT ticket_id)
        FROM analytics_events
        WHERE event_type = 'created' %s`, timeFilter)
	if err := r.pool.QueryRow(ctx, totalQuery).Scan(&result.TotalTickets); err != nil {
		return nil, err
	}

	deptQuery := fmt.Sprintf(`
        SELECT department, COUNT(DISTINCT ticket_id)
        FROM analytics_events
        WHERE event_type = 'routed' AND department IS NOT NULL %s`, timeFilter)
	args := []any{}
	if department != "" {
		args = append(args, department)
		deptQuery += fmt.Sprintf(" AND department = $%d", len(args))
	}
	deptQuery += " GROUP BY department"

	rows, err := r.pool.Query(ctx, deptQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dept string
		var count int64
		if err := rows.Scan(&dept, &count); err != nil {
			return nil, err
		}
		result.ByDepartment[dept] = count
	}
	return result, rows.Err()
}

func (r *analyticsRepository) PerformanceMetrics(ctx context.Context) (*domain.PerformanceMetrics, error) {
	metrics := &domain.PerformanceMetrics{}

	var resolved *int64
	query := fmt.Sprintf(`
        WITH latest_status AS (%s)
        SELECT COUNT(*), SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END)
        FROM latest_status`, latestStatusCTE)
	if err := r.pool.QueryRow(ctx, query).Scan(&metrics.TotalTickets, &resolved); err != nil {
		return nil, err
	}
	if resolved != nil {
		metrics.ResolvedTickets = *resolved
	}
	if metrics.TotalTickets > 0 {
		metrics.ResolutionRate = round2(float64(metrics.ResolvedTickets) / float64(metrics.TotalTickets) * 100)
	}

	avg, err := r.avgCategorizedConfidence(ctx)
	if err != nil {
		return nil, err
	}
	metrics.AverageCategorizationConfidence = avg
	return metrics, nil
}

func (r *analyticsRepository) Trends(ctx context.Context, days int) ([]domain.DailyCount, error) {
	const query = `
        SELECT DATE(created_at) AS date, COUNT(DISTINCT ticket_id)
        FROM analytics_events
        WHERE event_type = 'created'
        AND created_at >= NOW() - ($1 * INTERVAL '1 day')
        GROUP BY DATE(created_at)
        ORDER BY date`
	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DailyCount
	for rows.Next() {
		var day time.Time
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		result = append(result, domain.DailyCount{Date: day.Format("2006-01-02"), Count: count})
	}
	return result, rows.Err()
}

func (r *analyticsRepository) DepartmentAnalytics(ctx context.Context, department string) (*domain.DepartmentAnalytics, error) {
	result := &domain.DepartmentAnalytics{
		Department: department,
		ByStatus:   map[string]int64{},
	}

	if err := r.pool.QueryRow(ctx, `
        SELECT COUNT(DISTINCT ticket_id)
        FROM analytics_events
        WHERE event_type = 'routed' AND department = $1`, department).
		Scan(&result.TotalTickets); err != nil {
		return nil, err
	}

	var avg *float64
	if err := r.pool.QueryRow(ctx, `
        SELECT AVG(confidence_score)
        FROM analytics_events
        WHERE event_type = 'categorized' AND department = $1`, department).
		Scan(&avg); err != nil {
		return nil, err
	}
	if avg != nil {
		result.AverageConfidence = round2(*avg)
	}

	rows, err := r.pool.Query(ctx, `
        WITH dept_tickets AS (
            SELECT DISTINCT ticket_id
            FROM analytics_events
            WHERE event_type = 'routed' AND department = $1
        ),
        latest_status AS (
            SELECT DISTINCT ON (ae.ticket_id) ae.ticket_id, ae.status
            FROM analytics_events ae
            INNER JOIN dept_tickets dt ON ae.ticket_id = dt.ticket_id
            WHERE ae.event_type = 'status_updated' AND ae.status IS NOT NULL
            ORDER BY ae.ticket_id, ae.created_at DESC
        )
        SELECT status, COUNT(*) FROM latest_status GROUP BY status`, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result.ByStatus[status] = count
	}
	return result, rows.Err()
}

func (r *analyticsRepository) avgCategorizedConfidence(ctx context.Context) (float64, error) {
	var avg *float64
	if err := r.pool.QueryRow(ctx, `
        SELECT AVG(confidence_score)
        FROM analytics_events
        WHERE event_type = 'categorized' AND confidence_score IS NOT NULL`).
		Scan(&avg); err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return round2(*avg), nil
}
