package repository

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartticket/platform/internal/domain"
)

// TicketUpdate carries the mutable ticket fields. Nil means leave the
// column untouched.
type TicketUpdate struct {
	Status          *string
	Department      *string
	ConfidenceScore *int
}

// Empty reports whether the update would touch nothing.
func (u TicketUpdate) Empty() bool {
	return u.Status == nil && u.Department == nil && u.ConfidenceScore == nil
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, user_name, user_email, department, confidence_score, status, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, user_name, user_email, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.UserName,
		ticket.UserEmail,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Update applies the provided fields and bumps updated_at, returning
// the resulting row. pgx.ErrNoRows signals an unknown ticket.
func (r *ticketRepository) Update(ctx context.Context, id int64, update TicketUpdate) (*domain.Ticket, error) {
	setClauses := []string{}
	args := []any{}

	if update.Status != nil {
		args = append(args, *update.Status)
		setClauses = append(setClauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if update.Department != nil {
		args = append(args, *update.Department)
		setClauses = append(setClauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if update.ConfidenceScore != nil {
		args = append(args, *update.ConfidenceScore)
		setClauses = append(setClauses, fmt.Sprintf("confidence_score=$%d", len(args)))
	}
	setClauses = append(setClauses, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), ticketColumns)

	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, args...), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketRepository) Stats(ctx context.Context) (*domain.TicketStats, error) {
	stats := &domain.TicketStats{
		ByDepartment: map[string]int64{},
		ByStatus:     map[string]int64{},
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&stats.TotalTickets); err != nil {
		return nil, err
	}

	if err := countGroups(ctx, r.pool,
		`SELECT department, COUNT(*) FROM tickets WHERE department IS NOT NULL GROUP BY department`,
		stats.ByDepartment); err != nil {
		return nil, err
	}
	if err := countGroups(ctx, r.pool,
		`SELECT status, COUNT(*) FROM tickets GROUP BY status`,
		stats.ByStatus); err != nil {
		return nil, err
	}

	var avg *float64
	if err := r.pool.QueryRow(ctx,
		`SELECT AVG(confidence_score) FROM tickets WHERE confidence_score IS NOT NULL`).Scan(&avg); err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AverageConfidence = round2(*avg)
	}
	return stats, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.UserName,
		&ticket.UserEmail,
		&ticket.Department,
		&ticket.ConfidenceScore,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// countGroups fills dest from a two-column (label, count) query.
func countGroups(ctx context.Context, pool *pgxpool.Pool, query string, dest map[string]int64) error {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return err
		}
		dest[label] = count
	}
	return rows.Err()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
