package service

import (
	"context"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

// DirectoryService exposes the employee and position listings the
// department UI needs for manager pickers and dependent views.
type DirectoryService struct {
	employees repository.EmployeeRepository
	positions repository.PositionRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(employees repository.EmployeeRepository, positions repository.PositionRepository) *DirectoryService {
	return &DirectoryService{employees: employees, positions: positions}
}

// ListEmployees returns employees filtered by department and status.
func (s *DirectoryService) ListEmployees(ctx context.Context, role domain.Role, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	if !canRead(role) {
		return nil, apperrors.NewForbidden("access denied")
	}
	result, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	return result, nil
}

// ListPositions returns positions filtered by department and status.
func (s *DirectoryService) ListPositions(ctx context.Context, role domain.Role, filter repository.PositionFilter) ([]domain.Position, error) {
	if !canRead(role) {
		return nil, apperrors.NewForbidden("access denied")
	}
	result, err := s.positions.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	return result, nil
}
