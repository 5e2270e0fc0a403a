package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/hierarchy"
	"github.com/spec-kit/hr-service/internal/repository"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
	defaultPageLimit     = 10
	maxPageLimit         = 100
)

// SelectionCache caches the active-department selection projection.
// Implementations may be absent (nil) without affecting correctness.
type SelectionCache interface {
	GetSelection(ctx context.Context) ([]DepartmentOption, bool)
	SetSelection(ctx context.Context, options []DepartmentOption)
	InvalidateSelection(ctx context.Context)
}

// DepartmentService owns the department lifecycle: listing, hierarchy
// reads, creation, partial updates and soft deletion, together with the
// business invariants around name uniqueness, manager/parent references
// and hierarchy integrity.
type DepartmentService struct {
	departments repository.DepartmentRepository
	employees   repository.EmployeeRepository
	positions   repository.PositionRepository
	validator   *hierarchy.Validator
	cache       SelectionCache
}

// DepartmentDependencies bundles repositories for the department service.
type DepartmentDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	EmployeeRepo   repository.EmployeeRepository
	PositionRepo   repository.PositionRepository
	Cache          SelectionCache
}

// NewDepartmentService constructs the service.
func NewDepartmentService(deps DepartmentDependencies) *DepartmentService {
	return &DepartmentService{
		departments: deps.DepartmentRepo,
		employees:   deps.EmployeeRepo,
		positions:   deps.PositionRepo,
		validator:   hierarchy.NewValidator(departmentNodeReader{departments: deps.DepartmentRepo}),
		cache:       deps.Cache,
	}
}

// departmentNodeReader adapts the department repository to the
// hierarchy validator's read interface.
type departmentNodeReader struct {
	departments repository.DepartmentRepository
}

func (r departmentNodeReader) Node(ctx context.Context, id string) (*hierarchy.Node, error) {
	dept, err := r.departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &hierarchy.Node{ID: dept.ID, Name: dept.Name, ParentID: dept.ParentID}, nil
}

// ListFilter describes department listing parameters.
type ListFilter struct {
	IsActive  *bool
	ParentID  *string
	Search    *string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination describes the page arithmetic of a listing response.
type Pagination struct {
	Total   int
	Page    int
	Limit   int
	Pages   int
	HasNext bool
	HasPrev bool
}

// DepartmentPage is a page of departments plus pagination metadata.
type DepartmentPage struct {
	Items      []domain.Department
	Pagination Pagination
}

// DepartmentView is a department with manager and parent expanded.
type DepartmentView struct {
	Department domain.Department
	Manager    *domain.Employee
	Parent     *domain.Department
}

// DepartmentDetail adds the active dependent collections to a view.
type DepartmentDetail struct {
	DepartmentView
	Children  []domain.Department
	Employees []domain.Employee
	Positions []domain.Position
}

// PathEntry is one breadcrumb step of an ancestor path.
type PathEntry struct {
	ID   string
	Name string
}

// HierarchyChild is an active child with one level of active grandchildren.
type HierarchyChild struct {
	Department domain.Department
	Children   []domain.Department
}

// HierarchyView is the two-level hierarchy read for one department.
type HierarchyView struct {
	Department   domain.Department
	AncestorPath []PathEntry
	Children     []HierarchyChild
}

// DepartmentOption is the lightweight projection used to populate
// selection controls.
type DepartmentOption struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ParentID   *string `json:"parent_id,omitempty"`
	ParentName *string `json:"parent_name,omitempty"`
}

// CreateInput describes department creation payload.
type CreateInput struct {
	Name        string
	Description *string
	ManagerID   *string
	ParentID    *string
	IsActive    *bool
}

// UpdateInput describes a partial department update. The Set flags
// distinguish a field sent as null (clear) from a field omitted
// entirely (untouched).
type UpdateInput struct {
	Name           *string
	Description    *string
	DescriptionSet bool
	ManagerID      *string
	ManagerSet     bool
	ParentID       *string
	ParentSet      bool
}

func canRead(role domain.Role) bool {
	return domain.ValidRole(role)
}

func canWrite(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleHRManager
}

// List returns a filtered, sorted, paginated department page.
func (s *DepartmentService) List(ctx context.Context, role domain.Role, filter ListFilter) (*DepartmentPage, error) {
	if !canRead(role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	sortBy, desc := normalizeSort(filter.SortBy, filter.SortOrder)
	repoFilter := repository.DepartmentFilter{
		IsActive: filter.IsActive,
		ParentID: filter.ParentID,
		Search:   filter.Search,
	}

	total, err := s.departments.Count(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	items, err := s.departments.List(ctx, repoFilter, sortBy, desc, (page-1)*limit, limit)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}

	pages := (total + limit - 1) / limit
	return &DepartmentPage{
		Items: items,
		Pagination: Pagination{
			Total:   total,
			Page:    page,
			Limit:   limit,
			Pages:   pages,
			HasNext: page < pages,
			HasPrev: page > 1,
		},
	}, nil
}

// GetByID returns one department with manager, parent and the active
// dependent collections expanded. Inactive dependents are hidden.
func (s *DepartmentService) GetByID(ctx context.Context, role domain.Role, id string) (*DepartmentDetail, error) {
	if !canRead(role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	view, err := s.expand(ctx, dept)
	if err != nil {
		return nil, err
	}

	children, err := s.departments.ListActiveChildren(ctx, dept.ID)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	employees, err := s.employees.ListActiveByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	positions, err := s.positions.ListActiveByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}

	return &DepartmentDetail{
		DepartmentView: *view,
		Children:       children,
		Employees:      employees,
		Positions:      positions,
	}, nil
}

// Create validates and persists a new department.
func (s *DepartmentService) Create(ctx context.Context, role domain.Role, input CreateInput) (*DepartmentView, error) {
	if !canWrite(role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	description, err := validateDescription(input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.checkNameAvailable(ctx, name, nil); err != nil {
		return nil, err
	}
	if input.ManagerID != nil {
		if err := s.checkManager(ctx, *input.ManagerID); err != nil {
			return nil, err
		}
	}
	if input.ParentID != nil {
		if err := s.checkParent(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	dept := &domain.Department{
		Name:        name,
		Description: description,
		IsActive:    true,
		ManagerID:   input.ManagerID,
		ParentID:    input.ParentID,
	}
	if input.IsActive != nil {
		dept.IsActive = *input.IsActive
	}

	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	s.invalidateCache(ctx)
	return s.expand(ctx, dept)
}

// Update applies a partial update, re-validating only the fields that
// changed. Parent changes run the hierarchy cycle check.
func (s *DepartmentService) Update(ctx context.Context, role domain.Role, id string, input UpdateInput) (*DepartmentView, error) {
	if !canWrite(role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	current, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := repository.DepartmentUpdate{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		if name != current.Name {
			if err := s.checkNameAvailable(ctx, name, &id); err != nil {
				return nil, err
			}
		}
		fields.Name = &name
	}

	if input.DescriptionSet {
		description, err := validateDescription(input.Description)
		if err != nil {
			return nil, err
		}
		fields.Description = description
		fields.DescriptionSet = true
	}

	if input.ManagerSet {
		if input.ManagerID != nil {
			if err := s.checkManager(ctx, *input.ManagerID); err != nil {
				return nil, err
			}
		}
		fields.ManagerID = input.ManagerID
		fields.ManagerSet = true
	}

	if input.ParentSet {
		if input.ParentID != nil {
			if err := s.checkParent(ctx, *input.ParentID); err != nil {
				return nil, err
			}
			if s.validator.DetectCycle(ctx, id, *input.ParentID) {
				return nil, apperrors.NewValidationError("Cannot create circular parent-child relationship", nil)
			}
		}
		fields.ParentID = input.ParentID
		fields.ParentSet = true
	}

	updated, err := s.departments.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Department")
		}
		return nil, apperrors.NewRepositoryError(err)
	}
	s.invalidateCache(ctx)
	return s.expand(ctx, updated)
}

// Deactivate soft-deletes a department. The transition is rejected while
// the department still has active employees, child departments or
// positions; on success the manager reference is cleared in the same
// update.
func (s *DepartmentService) Deactivate(ctx context.Context, role domain.Role, id string) (*domain.Department, error) {
	if !canWrite(role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, apperrors.NewValidationError("Department is already inactive", nil)
	}

	// Dependents are checked in a fixed order; the first nonzero
	// category is the one reported.
	employees, err := s.employees.CountActiveByDepartment(ctx, id)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	if employees > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Cannot deactivate department with %d active employee(s)", employees), nil)
	}
	children, err := s.departments.CountActiveChildren(ctx, id)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	if children > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Cannot deactivate department with %d active child department(s)", children), nil)
	}
	positions, err := s.positions.CountActiveByDepartment(ctx, id)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	if positions > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Cannot deactivate department with %d active position(s)", positions), nil)
	}

	inactive := false
	updated, err := s.departments.Update(ctx, id, repository.DepartmentUpdate{
		IsActive:   &inactive,
		ManagerID:  nil,
		ManagerSet: true,
	})
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	s.invalidateCache(ctx)
	return updated, nil
}

// Hierarchy returns the ancestor breadcrumb path plus a two-level
// expansion of active children for one department.
func (s *DepartmentService) Hierarchy(ctx context.Context, role domain.Role, id string) (*HierarchyView, error) {
	if !canRead(role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	dept, err := s.getDepartment(ctx, id)
	if err != nil {
		return nil, err
	}

	nodes := s.validator.ResolveAncestorPath(ctx, dept.ID)
	path := make([]PathEntry, 0, len(nodes))
	for _, node := range nodes {
		path = append(path, PathEntry{ID: node.ID, Name: node.Name})
	}

	children, err := s.departments.ListActiveChildren(ctx, dept.ID)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}
	expanded := make([]HierarchyChild, 0, len(children))
	for _, child := range children {
		grandchildren, err := s.departments.ListActiveChildren(ctx, child.ID)
		if err != nil {
			return nil, apperrors.NewRepositoryError(err)
		}
		expanded = append(expanded, HierarchyChild{Department: child, Children: grandchildren})
	}

	return &HierarchyView{
		Department:   *dept,
		AncestorPath: path,
		Children:     expanded,
	}, nil
}

// ListActiveForSelection returns all active departments sorted by name,
// shaped for selection controls. Results are cached when a cache is
// configured.
func (s *DepartmentService) ListActiveForSelection(ctx context.Context, role domain.Role) ([]DepartmentOption, error) {
	if !canRead(role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	if s.cache != nil {
		if options, ok := s.cache.GetSelection(ctx); ok {
			return options, nil
		}
	}

	departments, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, apperrors.NewRepositoryError(err)
	}

	names := make(map[string]string, len(departments))
	for _, dept := range departments {
		names[dept.ID] = dept.Name
	}

	options := make([]DepartmentOption, 0, len(departments))
	for _, dept := range departments {
		option := DepartmentOption{ID: dept.ID, Name: dept.Name, ParentID: dept.ParentID}
		if dept.ParentID != nil {
			if name, ok := names[*dept.ParentID]; ok {
				option.ParentName = &name
			}
		}
		options = append(options, option)
	}

	if s.cache != nil {
		s.cache.SetSelection(ctx, options)
	}
	return options, nil
}

func (s *DepartmentService) getDepartment(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Department")
		}
		return nil, apperrors.NewRepositoryError(err)
	}
	return dept, nil
}

func (s *DepartmentService) expand(ctx context.Context, dept *domain.Department) (*DepartmentView, error) {
	view := &DepartmentView{Department: *dept}

	if dept.ManagerID != nil {
		manager, err := s.employees.GetByID(ctx, *dept.ManagerID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewRepositoryError(err)
		}
		view.Manager = manager
	}
	if dept.ParentID != nil {
		parent, err := s.departments.GetByID(ctx, *dept.ParentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewRepositoryError(err)
		}
		view.Parent = parent
	}
	return view, nil
}

func (s *DepartmentService) checkNameAvailable(ctx context.Context, name string, excludeID *string) error {
	existing, err := s.departments.GetByNameFold(ctx, name, excludeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.NewRepositoryError(err)
	}
	if existing != nil {
		return apperrors.NewConflict("Department name already exists", nil)
	}
	return nil
}

func (s *DepartmentService) checkManager(ctx context.Context, managerID string) error {
	manager, err := s.employees.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Manager must be an active employee", nil)
		}
		return apperrors.NewRepositoryError(err)
	}
	if manager.EmploymentStatus != domain.EmploymentStatusActive {
		return apperrors.NewValidationError("Manager must be an active employee", nil)
	}
	return nil
}

func (s *DepartmentService) checkParent(ctx context.Context, parentID string) error {
	if _, err := s.departments.GetActiveByID(ctx, parentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Parent department not found or inactive", nil)
		}
		return apperrors.NewRepositoryError(err)
	}
	return nil
}

func (s *DepartmentService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateSelection(ctx)
	}
}

func validateName(name string) error {
	if name == "" {
		return apperrors.NewValidationError("Department name is required", nil)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("Department name must be at most %d characters", maxNameLength), nil)
	}
	return nil
}

func validateDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxDescriptionLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Department description must be at most %d characters", maxDescriptionLength), nil)
	}
	return &trimmed, nil
}

func normalizeSort(sortBy, sortOrder string) (string, bool) {
	switch sortBy {
	case "name", "created_at", "updated_at":
	default:
		return "name", false
	}
	return sortBy, strings.EqualFold(sortOrder, "desc")
}
