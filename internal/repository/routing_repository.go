package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartticket/platform/internal/domain"
)

// RoutingRepository stores routing decisions. Inserts only; history
// stays complete so reroutes are auditable.
type RoutingRepository interface {
	Create(ctx context.Context, record *domain.RoutingRecord) error
	HistoryByTicket(ctx context.Context, ticketID int64) ([]domain.RoutingRecord, error)
	Stats(ctx context.Context) (*domain.RoutingStats, error)
}

type routingRepository struct {
	pool *pgxpool.Pool
}

// NewRoutingRepository builds the repository.
func NewRoutingRepository(pool *pgxpool.Pool) RoutingRepository {
	return &routingRepository{pool: pool}
}

func (r *routingRepository) Create(ctx context.Context, record *domain.RoutingRecord) error {
	const query = `
        INSERT INTO ticket_routing (ticket_id, department, confidence_score)
        VALUES ($1,$2,$3)
        RETURNING id, routed_at`
	return r.pool.QueryRow(ctx, query,
		record.TicketID,
		record.Department,
		record.ConfidenceScore,
	).Scan(&record.ID, &record.RoutedAt)
}

func (r *routingRepository) HistoryByTicket(ctx context.Context, ticketID int64) ([]domain.RoutingRecord, error) {
	const query = `
        SELECT id, ticket_id, department, confidence_score, routed_at
        FROM ticket_routing
        WHERE ticket_id=$1
        ORDER BY routed_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoutingRecord
	for rows.Next() {
		var record domain.RoutingRecord
		if err := rows.Scan(&record.ID, &record.TicketID, &record.Department, &record.ConfidenceScore, &record.RoutedAt); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

// Stats distributes tickets over their latest routing record;
// percentages and the overall average keep every record in the
// denominator so reroute churn stays visible.
func (r *routingRepository) Stats(ctx context.Context) (*domain.RoutingStats, error) {
	stats := &domain.RoutingStats{
		DepartmentDistribution:  map[string]int64{},
		DepartmentPercentages:   map[string]float64{},
		AverageConfidenceByDept: map[string]float64{},
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_routing`).Scan(&stats.TotalRoutings); err != nil {
		return nil, err
	}

	const latestQuery = `
        WITH latest_routing AS (
            SELECT DISTINCT ON (ticket_id) ticket_id, department, confidence_score
            FROM ticket_routing
            ORDER BY ticket_id, routed_at DESC
        )
        SELECT department, COUNT(*), AVG(confidence_score)
        FROM latest_routing
        GROUP BY department`
	rows, err := r.pool.Query(ctx, latestQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dept string
		var count int64
		var avg float64
		if err := rows.Scan(&dept, &count, &avg); err != nil {
			return nil, err
		}
		stats.DepartmentDistribution[dept] = count
		stats.AverageConfidenceByDept[dept] = round2(avg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var overall *float64
	if err := r.pool.QueryRow(ctx, `SELECT AVG(confidence_score) FROM ticket_routing`).Scan(&overall); err != nil {
		return nil, err
	}
	if overall != nil {
		stats.OverallAverageConfidence = round2(*overall)
	}

	if stats.TotalRoutings > 0 {
		for dept, count := range stats.DepartmentDistribution {
			stats.DepartmentPercentages[dept] = round2(float64(count) / float64(stats.TotalRoutings) * 100)
		}
	}
	return stats, nil
}
