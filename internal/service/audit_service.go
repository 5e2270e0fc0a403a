package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/repository"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

// AuditService persists an audit trail of department mutations by
// subscribing to the event dispatcher.
type AuditService struct {
	dispatcher  events.Dispatcher
	entries     repository.AuditLogRepository
	departments repository.DepartmentRepository
	logger      *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, entries repository.AuditLogRepository, departments repository.DepartmentRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher:  dispatcher,
		entries:     entries,
		departments: departments,
		logger:      logger,
	}
}

// RegisterHandlers subscribes to department events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventDepartmentCreated, a.record)
	a.dispatcher.Subscribe(events.EventDepartmentUpdated, a.record)
	a.dispatcher.Subscribe(events.EventDepartmentDeactivated, a.record)
}

// ListByDepartment returns audit entries for one department, newest
// first. Restricted to roles permitted to mutate departments.
func (a *AuditService) ListByDepartment(ctx context.Context, role domain.Role, departmentID string, limit, offset int) ([]repository.AuditEntry, error) {
	if !canWrite(role) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if _, err := a.departments.GetByID(ctx, departmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Department")
		}
		return nil, apperrors.NewRepositoryError(err)
	}
	entries, err := a.entries.ListByDepartment(ctx, departmentID, limit, offset)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	return entries, nil
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	entry := &repository.AuditEntry{
		ActorID:      event.Actor.UserID,
		ActorRole:    string(event.Actor.Role),
		Action:       string(event.Type),
		DepartmentID: event.DepartmentID,
		Detail:       payloadDetail(event.Payload),
	}
	if err := a.entries.Create(ctx, entry); err != nil {
		a.logger.Error("failed to write audit entry",
			zap.String("action", entry.Action),
			zap.String("department_id", entry.DepartmentID),
			zap.Error(err))
		return err
	}
	return nil
}

func payloadDetail(payload interface{}) map[string]any {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	detail := map[string]any{}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil
	}
	return detail
}
