package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEntry records a department mutation for the audit trail.
type AuditEntry struct {
	ID           string
	ActorID      *string
	ActorRole    string
	Action       string
	DepartmentID string
	Detail       map[string]any
	CreatedAt    time.Time
}

// AuditLogRepository persists audit trail entries.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	ListByDepartment(ctx context.Context, departmentID string, limit, offset int) ([]AuditEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository constructs repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *AuditEntry) error {
	const query = `
        INSERT INTO audit_log (actor_id, actor_role, action, department_id, detail)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ActorID,
		entry.ActorRole,
		entry.Action,
		entry.DepartmentID,
		entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListByDepartment(ctx context.Context, departmentID string, limit, offset int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, actor_id, actor_role, action, department_id, detail, created_at
        FROM audit_log WHERE department_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, departmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorRole,
			&entry.Action,
			&entry.DepartmentID,
			&entry.Detail,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
