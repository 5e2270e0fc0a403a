package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// PositionFilter defines query params for position listings.
type PositionFilter struct {
	DepartmentID *string
	IsActive     *bool
	Limit        int
	Offset       int
}

// PositionRepository handles persistence for positions.
type PositionRepository interface {
	List(ctx context.Context, filter PositionFilter) ([]domain.Position, error)
	ListActiveByDepartment(ctx context.Context, departmentID string) ([]domain.Position, error)
	CountActiveByDepartment(ctx context.Context, departmentID string) (int, error)
}

const positionColumns = "id, title, department_id, is_active, created_at, updated_at"

type positionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository instantiates the repository.
func NewPositionRepository(pool *pgxpool.Pool) PositionRepository {
	return &positionRepository{pool: pool}
}

func (r *positionRepository) List(ctx context.Context, filter PositionFilter) ([]domain.Position, error) {
	query := fmt.Sprintf("SELECT %s FROM positions", positionColumns)
	args := []any{}
	clauses := []string{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY title ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPositions(rows)
}

func (r *positionRepository) ListActiveByDepartment(ctx context.Context, departmentID string) ([]domain.Position, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM positions WHERE department_id=$1 AND is_active = TRUE ORDER BY title ASC",
		positionColumns)
	rows, err := r.pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPositions(rows)
}

func (r *positionRepository) CountActiveByDepartment(ctx context.Context, departmentID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM positions WHERE department_id=$1 AND is_active = TRUE",
		departmentID).Scan(&total)
	return total, err
}

func scanPositions(rows pgx.Rows) ([]domain.Position, error) {
	var result []domain.Position
	for rows.Next() {
		var pos domain.Position
		if err := rows.Scan(
			&pos.ID,
			&pos.Title,
			&pos.DepartmentID,
			&pos.IsActive,
			&pos.CreatedAt,
			&pos.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, pos)
	}
	return result, rows.Err()
}
