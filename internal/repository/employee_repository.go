package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// EmployeeFilter defines query params for employee listings.
type EmployeeFilter struct {
	DepartmentID *string
	Status       *domain.EmploymentStatus
	Limit        int
	Offset       int
}

// EmployeeRepository handles persistence for employees.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	ListActiveByDepartment(ctx context.Context, departmentID string) ([]domain.Employee, error)
	CountActiveByDepartment(ctx context.Context, departmentID string) (int, error)
}

const employeeColumns = "id, full_name, email, department_id, position_id, employment_status, created_at, updated_at"

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id=$1", employeeColumns)
	var emp domain.Employee
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&emp.ID,
		&emp.FullName,
		&emp.Email,
		&emp.DepartmentID,
		&emp.PositionID,
		&emp.EmploymentStatus,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees", employeeColumns)
	args := []any{}
	clauses := []string{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("employment_status=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY full_name ASC"
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
	return scanEmployees(rows)
}

func (r *employeeRepository) ListActiveByDepartment(ctx context.Context, departmentID string) ([]domain.Employee, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM employees WHERE department_id=$1 AND employment_status=$2 ORDER BY full_name ASC",
		employeeColumns)
	rows, err := r.pool.Query(ctx, query, departmentID, domain.EmploymentStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (r *employeeRepository) CountActiveByDepartment(ctx context.Context, departmentID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM employees WHERE department_id=$1 AND employment_status=$2",
		departmentID, domain.EmploymentStatusActive).Scan(&total)
	return total, err
}

func scanEmployees(rows pgx.Rows) ([]domain.Employee, error) {
	var result []domain.Employee
	for rows.Next() {
		var emp domain.Employee
		if err := rows.Scan(
			&emp.ID,
			&emp.FullName,
			&emp.Email,
			&emp.DepartmentID,
			&emp.PositionID,
			&emp.EmploymentStatus,
			&emp.CreatedAt,
			&emp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}
