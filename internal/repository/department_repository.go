package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/hr-service/internal/domain"
)

// DepartmentFilter defines query params for department listings.
type DepartmentFilter struct {
	IsActive *bool
	ParentID *string
	// Search matches name OR description, case-insensitively.
	Search *string
}

// DepartmentUpdate carries a partial field set for an update. The Set
// flags distinguish "clear to null" from "leave untouched" for nullable
// references.
type DepartmentUpdate struct {
	Name           *string
	Description    *string
	DescriptionSet bool
	ManagerID      *string
	ManagerSet     bool
	ParentID       *string
	ParentSet      bool
	IsActive       *bool
}

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, id string, fields DepartmentUpdate) (*domain.Department, error)
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetActiveByID(ctx context.Context, id string) (*domain.Department, error)
	GetByNameFold(ctx context.Context, name string, excludeID *string) (*domain.Department, error)
	List(ctx context.Context, filter DepartmentFilter, orderBy string, desc bool, offset, limit int) ([]domain.Department, error)
	Count(ctx context.Context, filter DepartmentFilter) (int, error)
	ListActive(ctx context.Context) ([]domain.Department, error)
	ListActiveChildren(ctx context.Context, parentID string) ([]domain.Department, error)
	CountActiveChildren(ctx context.Context, id string) (int, error)
}

const departmentColumns = "id, name, description, is_active, manager_id, parent_id, created_at, updated_at"

var departmentSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, description, is_active, manager_id, parent_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Description,
		dept.IsActive,
		dept.ManagerID,
		dept.ParentID,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, id string, fields DepartmentUpdate) (*domain.Department, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if fields.Name != nil {
		args = append(args, *fields.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if fields.DescriptionSet {
		args = append(args, fields.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if fields.ManagerSet {
		args = append(args, fields.ManagerID)
		sets = append(sets, fmt.Sprintf("manager_id=$%d", len(args)))
	}
	if fields.ParentSet {
		args = append(args, fields.ParentID)
		sets = append(sets, fmt.Sprintf("parent_id=$%d", len(args)))
	}
	if fields.IsActive != nil {
		args = append(args, *fields.IsActive)
		sets = append(sets, fmt.Sprintf("is_active=$%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE departments SET %s
        WHERE id=$%d
        RETURNING %s`, strings.Join(sets, ", "), len(args), departmentColumns)

	return r.scanOne(r.pool.QueryRow(ctx, query, args...))
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE id=$1", departmentColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *departmentRepository) GetActiveByID(ctx context.Context, id string) (*domain.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE id=$1 AND is_active = TRUE", departmentColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByNameFold performs a case-insensitive name lookup across active
// and inactive departments, optionally excluding one id.
func (r *departmentRepository) GetByNameFold(ctx context.Context, name string, excludeID *string) (*domain.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE LOWER(name)=LOWER($1)", departmentColumns)
	args := []any{name}
	if excludeID != nil {
		args = append(args, *excludeID)
		query += " AND id<>$2"
	}
	return r.scanOne(r.pool.QueryRow(ctx, query, args...))
}

func (r *departmentRepository) List(ctx context.Context, filter DepartmentFilter, orderBy string, desc bool, offset, limit int) ([]domain.Department, error) {
	where, args := buildDepartmentWhere(filter)

	column, ok := departmentSortColumns[orderBy]
	if !ok {
		column = "name"
		desc = false
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM departments%s ORDER BY %s %s LIMIT %d OFFSET %d",
		departmentColumns, where, column, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) Count(ctx context.Context, filter DepartmentFilter) (int, error) {
	where, args := buildDepartmentWhere(filter)
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM departments"+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *departmentRepository) ListActive(ctx context.Context) ([]domain.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE is_active = TRUE ORDER BY name ASC", departmentColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) ListActiveChildren(ctx context.Context, parentID string) ([]domain.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE parent_id=$1 AND is_active = TRUE ORDER BY name ASC", departmentColumns)
	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) CountActiveChildren(ctx context.Context, id string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM departments WHERE parent_id=$1 AND is_active = TRUE", id).Scan(&total)
	return total, err
}

func buildDepartmentWhere(filter DepartmentFilter) (string, []any) {
	args := []any{}
	clauses := []string{}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if filter.ParentID != nil {
		args = append(args, *filter.ParentID)
		clauses = append(clauses, fmt.Sprintf("parent_id=$%d", len(args)))
	}
	if filter.Search != nil {
		args = append(args, "%"+*filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *departmentRepository) scanOne(row pgx.Row) (*domain.Department, error) {
	var dept domain.Department
	if err := row.Scan(
		&dept.ID,
		&dept.Name,
		&dept.Description,
		&dept.IsActive,
		&dept.ManagerID,
		&dept.ParentID,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func scanDepartments(rows pgx.Rows) ([]domain.Department, error) {
	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(
			&dept.ID,
			&dept.Name,
			&dept.Description,
			&dept.IsActive,
			&dept.ManagerID,
			&dept.ParentID,
			&dept.CreatedAt,
			&dept.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}
