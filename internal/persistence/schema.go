package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/domain"
)

// Each service bootstraps only the tables it owns. Statements are
// idempotent so restarts are safe.

// EnsureTicketSchema creates the tickets table and its indexes.
func EnsureTicketSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tickets (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			user_name TEXT NOT NULL,
			user_email TEXT NOT NULL,
			department TEXT,
			confidence_score INTEGER,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_department ON tickets(department)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(created_at)`,
	}
	return execSchema(ctx, pool, logger, "tickets", stmts)
}

// EnsureRoutingSchema creates the routing tables and seeds the
// department catalog from the closed set.
func EnsureRoutingSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS departments (
			id BIGSERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			description TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_routing (
			id BIGSERIAL PRIMARY KEY,
			ticket_id BIGINT NOT NULL,
			department TEXT NOT NULL,
			confidence_score INTEGER NOT NULL,
			routed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routing_ticket_id ON ticket_routing(ticket_id)`,
		`CREATE INDEX IF NOT EXISTS idx_routing_department ON ticket_routing(department)`,
		`CREATE INDEX IF NOT EXISTS idx_routing_routed_at ON ticket_routing(routed_at)`,
	}
	if err := execSchema(ctx, pool, logger, "routing", stmts); err != nil {
		return err
	}

	const seed = `INSERT INTO departments (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	for _, dept := range domain.Departments() {
		if _, err := pool.Exec(ctx, seed, dept, fmt.Sprintf("%s department", dept)); err != nil {
			return fmt.Errorf("seed department %s: %w", dept, err)
		}
	}
	return nil
}

// EnsureAnalyticsSchema creates the analytics event log.
func EnsureAnalyticsSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analytics_events (
			id BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			ticket_id BIGINT,
			department TEXT,
			status TEXT,
			confidence_score INTEGER,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_event_type ON analytics_events(event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_ticket_id ON analytics_events(ticket_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_department ON analytics_events(department)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_created_at ON analytics_events(created_at)`,
	}
	return execSchema(ctx, pool, logger, "analytics", stmts)
}

func execSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger, name string, stmts []string) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping schema bootstrap", zap.String("schema", name))
		return nil
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap %s schema: %w", name, err)
		}
	}
	logger.Info("schema ready", zap.String("schema", name))
	return nil
}
