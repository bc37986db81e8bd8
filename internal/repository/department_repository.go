package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartticket/platform/internal/domain"
)

// DepartmentRepository reads the seeded department catalog. The
// catalog is bootstrapped from the closed set and not edited at
// runtime.
type DepartmentRepository interface {
	ListActive(ctx context.Context) ([]domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) ListActive(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT id, name, description, is_active, created_at
        FROM departments WHERE is_active = TRUE
        ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.IsActive, &dept.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	const query = `
        SELECT id, name, description, is_active, created_at
        FROM departments WHERE name=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Description,
		&dept.IsActive,
		&dept.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}
