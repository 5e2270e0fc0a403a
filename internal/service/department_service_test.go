package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

// ---- in-memory fakes -------------------------------------------------

type fakeDepartmentRepo struct {
	seq   int
	items map[string]*domain.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{items: map[string]*domain.Department{}}
}

func (r *fakeDepartmentRepo) put(dept domain.Department) *domain.Department {
	if dept.ID == "" {
		r.seq++
		dept.ID = fmt.Sprintf("dept-%d", r.seq)
	}
	if dept.CreatedAt.IsZero() {
		dept.CreatedAt = time.Now()
		dept.UpdatedAt = dept.CreatedAt
	}
	stored := dept
	r.items[stored.ID] = &stored
	return &stored
}

func (r *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	stored := r.put(*dept)
	*dept = *stored
	return nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, id string, fields repository.DepartmentUpdate) (*domain.Department, error) {
	dept, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if fields.Name != nil {
		dept.Name = *fields.Name
	}
	if fields.DescriptionSet {
		dept.Description = fields.Description
	}
	if fields.ManagerSet {
		dept.ManagerID = fields.ManagerID
	}
	if fields.ParentSet {
		dept.ParentID = fields.ParentID
	}
	if fields.IsActive != nil {
		dept.IsActive = *fields.IsActive
	}
	dept.UpdatedAt = time.Now()
	copied := *dept
	return &copied, nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *dept
	return &copied, nil
}

func (r *fakeDepartmentRepo) GetActiveByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := r.items[id]
	if !ok || !dept.IsActive {
		return nil, pgx.ErrNoRows
	}
	copied := *dept
	return &copied, nil
}

func (r *fakeDepartmentRepo) GetByNameFold(_ context.Context, name string, excludeID *string) (*domain.Department, error) {
	for _, dept := range r.items {
		if excludeID != nil && dept.ID == *excludeID {
			continue
		}
		if strings.EqualFold(dept.Name, name) {
			copied := *dept
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDepartmentRepo) matches(dept *domain.Department, filter repository.DepartmentFilter) bool {
	if filter.IsActive != nil && dept.IsActive != *filter.IsActive {
		return false
	}
	if filter.ParentID != nil {
		if dept.ParentID == nil || *dept.ParentID != *filter.ParentID {
			return false
		}
	}
	if filter.Search != nil {
		needle := strings.ToLower(*filter.Search)
		haystack := strings.ToLower(dept.Name)
		if dept.Description != nil {
			haystack += " " + strings.ToLower(*dept.Description)
		}
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (r *fakeDepartmentRepo) filtered(filter repository.DepartmentFilter) []domain.Department {
	out := make([]domain.Department, 0, len(r.items))
	for _, dept := range r.items {
		if r.matches(dept, filter) {
			out = append(out, *dept)
		}
	}
	return out
}

func (r *fakeDepartmentRepo) List(_ context.Context, filter repository.DepartmentFilter, orderBy string, desc bool, offset, limit int) ([]domain.Department, error) {
	out := r.filtered(filter)
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch orderBy {
		case "created_at":
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		case "updated_at":
			less = out[i].UpdatedAt.Before(out[j].UpdatedAt)
		default:
			less = out[i].Name < out[j].Name
		}
		if desc {
			return !less
		}
		return less
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeDepartmentRepo) Count(_ context.Context, filter repository.DepartmentFilter) (int, error) {
	return len(r.filtered(filter)), nil
}

func (r *fakeDepartmentRepo) ListActive(_ context.Context) ([]domain.Department, error) {
	active := true
	out := r.filtered(repository.DepartmentFilter{IsActive: &active})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeDepartmentRepo) ListActiveChildren(_ context.Context, parentID string) ([]domain.Department, error) {
	active := true
	out := r.filtered(repository.DepartmentFilter{IsActive: &active, ParentID: &parentID})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeDepartmentRepo) CountActiveChildren(_ context.Context, id string) (int, error) {
	children, _ := r.ListActiveChildren(context.Background(), id)
	return len(children), nil
}

type fakeEmployeeRepo struct {
	items map[string]*domain.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{items: map[string]*domain.Employee{}}
}

func (r *fakeEmployeeRepo) put(emp domain.Employee) {
	stored := emp
	r.items[stored.ID] = &stored
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	emp, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *emp
	return &copied, nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	out := make([]domain.Employee, 0, len(r.items))
	for _, emp := range r.items {
		if filter.DepartmentID != nil && (emp.DepartmentID == nil || *emp.DepartmentID != *filter.DepartmentID) {
			continue
		}
		if filter.Status != nil && emp.EmploymentStatus != *filter.Status {
			continue
		}
		out = append(out, *emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakeEmployeeRepo) ListActiveByDepartment(ctx context.Context, departmentID string) ([]domain.Employee, error) {
	status := domain.EmploymentStatusActive
	return r.List(ctx, repository.EmployeeFilter{DepartmentID: &departmentID, Status: &status})
}

func (r *fakeEmployeeRepo) CountActiveByDepartment(ctx context.Context, departmentID string) (int, error) {
	active, _ := r.ListActiveByDepartment(ctx, departmentID)
	return len(active), nil
}

type fakePositionRepo struct {
	items map[string]*domain.Position
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{items: map[string]*domain.Position{}}
}

func (r *fakePositionRepo) put(pos domain.Position) {
	stored := pos
	r.items[stored.ID] = &stored
}

func (r *fakePositionRepo) List(_ context.Context, filter repository.PositionFilter) ([]domain.Position, error) {
	out := make([]domain.Position, 0, len(r.items))
	for _, pos := range r.items {
		if filter.DepartmentID != nil && pos.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.IsActive != nil && pos.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *fakePositionRepo) ListActiveByDepartment(ctx context.Context, departmentID string) ([]domain.Position, error) {
	active := true
	return r.List(ctx, repository.PositionFilter{DepartmentID: &departmentID, IsActive: &active})
}

func (r *fakePositionRepo) CountActiveByDepartment(ctx context.Context, departmentID string) (int, error) {
	positions, _ := r.ListActiveByDepartment(ctx, departmentID)
	return len(positions), nil
}

type fakeSelectionCache struct {
	options       []DepartmentOption
	populated     bool
	hits          int
	invalidations int
}

func (c *fakeSelectionCache) GetSelection(context.Context) ([]DepartmentOption, bool) {
	if c.populated {
		c.hits++
		return c.options, true
	}
	return nil, false
}

func (c *fakeSelectionCache) SetSelection(_ context.Context, options []DepartmentOption) {
	c.options = options
	c.populated = true
}

func (c *fakeSelectionCache) InvalidateSelection(context.Context) {
	c.options = nil
	c.populated = false
	c.invalidations++
}

// ---- fixture ---------------------------------------------------------

type fixture struct {
	service     *DepartmentService
	departments *fakeDepartmentRepo
	employees   *fakeEmployeeRepo
	positions   *fakePositionRepo
	cache       *fakeSelectionCache
}

func newFixture() *fixture {
	departments := newFakeDepartmentRepo()
	employees := newFakeEmployeeRepo()
	positions := newFakePositionRepo()
	cache := &fakeSelectionCache{}
	return &fixture{
		service: NewDepartmentService(DepartmentDependencies{
			DepartmentRepo: departments,
			EmployeeRepo:   employees,
			PositionRepo:   positions,
			Cache:          cache,
		}),
		departments: departments,
		employees:   employees,
		positions:   positions,
		cache:       cache,
	}
}

func ptr[T any](v T) *T { return &v }

func requireDomainError(t *testing.T, err error, kind apperrors.ErrorKind, message string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, kind, domainErr.Kind)
	if message != "" {
		assert.Equal(t, message, domainErr.Message)
	}
}

// ---- create ----------------------------------------------------------

func TestCreateDefaultsToActive(t *testing.T) {
	f := newFixture()

	view, err := f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{Name: "  Engineering  "})
	require.NoError(t, err)
	assert.Equal(t, "Engineering", view.Department.Name)
	assert.True(t, view.Department.IsActive)
	assert.Nil(t, view.Department.Description)
	assert.NotEmpty(t, view.Department.ID)
}

func TestCreateBlankDescriptionStoredAsNull(t *testing.T) {
	f := newFixture()

	view, err := f.service.Create(context.Background(), domain.RoleHRManager, CreateInput{
		Name:        "Engineering",
		Description: ptr("   "),
	})
	require.NoError(t, err)
	assert.Nil(t, view.Department.Description)
}

func TestCreateDuplicateNameCaseInsensitive(t *testing.T) {
	f := newFixture()
	f.departments.put(domain.Department{Name: "Engineering", IsActive: true})

	_, err := f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{Name: "ENGINEERING"})
	requireDomainError(t, err, apperrors.KindConflict, "Department name already exists")
}

func TestCreateRequiresWriteRole(t *testing.T) {
	f := newFixture()

	for _, role := range []domain.Role{domain.RoleManager, domain.RoleEmployee, domain.Role("AUDITOR")} {
		_, err := f.service.Create(context.Background(), role, CreateInput{Name: "Engineering"})
		requireDomainError(t, err, apperrors.KindUnauthorized, "access denied")
	}
}

func TestCreateNameValidation(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{Name: "   "})
	requireDomainError(t, err, apperrors.KindValidation, "Department name is required")

	_, err = f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{
		Name: strings.Repeat("x", maxNameLength+1),
	})
	requireDomainError(t, err, apperrors.KindValidation, "")
}

func TestCreateManagerMustBeActiveEmployee(t *testing.T) {
	f := newFixture()
	f.employees.put(domain.Employee{ID: "emp-1", FullName: "Dana Reed", EmploymentStatus: domain.EmploymentStatusOnLeave})

	_, err := f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{
		Name:      "Engineering",
		ManagerID: ptr("emp-1"),
	})
	requireDomainError(t, err, apperrors.KindValidation, "Manager must be an active employee")

	_, err = f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{
		Name:      "Engineering",
		ManagerID: ptr("ghost"),
	})
	requireDomainError(t, err, apperrors.KindValidation, "Manager must be an active employee")
}

func TestCreateParentMustBeActive(t *testing.T) {
	f := newFixture()
	parent := f.departments.put(domain.Department{Name: "Legacy", IsActive: false})

	_, err := f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{
		Name:     "Engineering",
		ParentID: ptr(parent.ID),
	})
	requireDomainError(t, err, apperrors.KindValidation, "Parent department not found or inactive")
}

func TestCreateExpandsManagerAndParent(t *testing.T) {
	f := newFixture()
	parent := f.departments.put(domain.Department{Name: "Operations", IsActive: true})
	f.employees.put(domain.Employee{ID: "emp-1", FullName: "Dana Reed", EmploymentStatus: domain.EmploymentStatusActive})

	view, err := f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{
		Name:      "Engineering",
		ManagerID: ptr("emp-1"),
		ParentID:  ptr(parent.ID),
	})
	require.NoError(t, err)
	require.NotNil(t, view.Manager)
	assert.Equal(t, "Dana Reed", view.Manager.FullName)
	require.NotNil(t, view.Parent)
	assert.Equal(t, "Operations", view.Parent.Name)
}

func TestCreateInvalidatesSelectionCache(t *testing.T) {
	f := newFixture()
	f.cache.SetSelection(context.Background(), []DepartmentOption{{ID: "stale"}})

	_, err := f.service.Create(context.Background(), domain.RoleAdmin, CreateInput{Name: "Engineering"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.invalidations)
}

// ---- update ----------------------------------------------------------

func TestUpdateOmittedFieldsUntouched(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{
		Name:        "Engineering",
		Description: ptr("Builds things"),
		IsActive:    true,
	})

	view, err := f.service.Update(context.Background(), domain.RoleAdmin, dept.ID, UpdateInput{
		Name: ptr("Platform Engineering"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineering", view.Department.Name)
	require.NotNil(t, view.Department.Description)
	assert.Equal(t, "Builds things", *view.Department.Description)
}

func TestUpdateExplicitNullClearsDescription(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{
		Name:        "Engineering",
		Description: ptr("Builds things"),
		IsActive:    true,
	})

	view, err := f.service.Update(context.Background(), domain.RoleAdmin, dept.ID, UpdateInput{
		Description:    nil,
		DescriptionSet: true,
	})
	require.NoError(t, err)
	assert.Nil(t, view.Department.Description)
}

func TestUpdateKeepingOwnNameIsNotConflict(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})

	_, err := f.service.Update(context.Background(), domain.RoleAdmin, dept.ID, UpdateInput{
		Name: ptr("engineering"),
	})
	require.NoError(t, err)
}

func TestUpdateNameConflictWithOtherDepartment(t *testing.T) {
	f := newFixture()
	f.departments.put(domain.Department{Name: "Sales", IsActive: true})
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})

	_, err := f.service.Update(context.Background(), domain.RoleAdmin, dept.ID, UpdateInput{
		Name: ptr("sales"),
	})
	requireDomainError(t, err, apperrors.KindConflict, "Department name already exists")
}

func TestUpdateRejectsCircularParent(t *testing.T) {
	f := newFixture()
	root := f.departments.put(domain.Department{Name: "Root", IsActive: true})
	child := f.departments.put(domain.Department{Name: "Child", IsActive: true, ParentID: ptr(root.ID)})
	grandchild := f.departments.put(domain.Department{Name: "Grandchild", IsActive: true, ParentID: ptr(child.ID)})

	_, err := f.service.Update(context.Background(), domain.RoleAdmin, root.ID, UpdateInput{
		ParentID:  ptr(grandchild.ID),
		ParentSet: true,
	})
	requireDomainError(t, err, apperrors.KindValidation, "Cannot create circular parent-child relationship")
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})

	_, err := f.service.Update(context.Background(), domain.RoleAdmin, dept.ID, UpdateInput{
		ParentID:  ptr(dept.ID),
		ParentSet: true,
	})
	requireDomainError(t, err, apperrors.KindValidation, "Cannot create circular parent-child relationship")
}

func TestUpdateDetachParent(t *testing.T) {
	f := newFixture()
	root := f.departments.put(domain.Department{Name: "Root", IsActive: true})
	child := f.departments.put(domain.Department{Name: "Child", IsActive: true, ParentID: ptr(root.ID)})

	view, err := f.service.Update(context.Background(), domain.RoleAdmin, child.ID, UpdateInput{
		ParentID:  nil,
		ParentSet: true,
	})
	require.NoError(t, err)
	assert.Nil(t, view.Department.ParentID)
}

func TestUpdateNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.Update(context.Background(), domain.RoleAdmin, "ghost", UpdateInput{
		Name: ptr("Engineering"),
	})
	requireDomainError(t, err, apperrors.KindNotFound, "Department not found")
}

// ---- deactivate ------------------------------------------------------

func TestDeactivateBlockedByActiveEmployees(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})
	f.employees.put(domain.Employee{ID: "emp-1", FullName: "Dana Reed", DepartmentID: ptr(dept.ID), EmploymentStatus: domain.EmploymentStatusActive})

	_, err := f.service.Deactivate(context.Background(), domain.RoleAdmin, dept.ID)
	requireDomainError(t, err, apperrors.KindValidation, "Cannot deactivate department with 1 active employee(s)")
}

func TestDeactivateEmployeesReportedBeforeChildren(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})
	f.departments.put(domain.Department{Name: "Platform", IsActive: true, ParentID: ptr(dept.ID)})
	f.employees.put(domain.Employee{ID: "emp-1", FullName: "Dana Reed", DepartmentID: ptr(dept.ID), EmploymentStatus: domain.EmploymentStatusActive})
	f.employees.put(domain.Employee{ID: "emp-2", FullName: "Lee Park", DepartmentID: ptr(dept.ID), EmploymentStatus: domain.EmploymentStatusActive})

	_, err := f.service.Deactivate(context.Background(), domain.RoleAdmin, dept.ID)
	requireDomainError(t, err, apperrors.KindValidation, "Cannot deactivate department with 2 active employee(s)")
}

func TestDeactivateBlockedByActiveChildren(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})
	f.departments.put(domain.Department{Name: "Platform", IsActive: true, ParentID: ptr(dept.ID)})

	_, err := f.service.Deactivate(context.Background(), domain.RoleAdmin, dept.ID)
	requireDomainError(t, err, apperrors.KindValidation, "Cannot deactivate department with 1 active child department(s)")
}

func TestDeactivateBlockedByActivePositions(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})
	f.positions.put(domain.Position{ID: "pos-1", Title: "Engineer", DepartmentID: dept.ID, IsActive: true})

	_, err := f.service.Deactivate(context.Background(), domain.RoleAdmin, dept.ID)
	requireDomainError(t, err, apperrors.KindValidation, "Cannot deactivate department with 1 active position(s)")
}

func TestDeactivateIgnoresInactiveDependents(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})
	f.departments.put(domain.Department{Name: "Legacy", IsActive: false, ParentID: ptr(dept.ID)})
	f.employees.put(domain.Employee{ID: "emp-1", FullName: "Dana Reed", DepartmentID: ptr(dept.ID), EmploymentStatus: domain.EmploymentStatusTerminated})
	f.positions.put(domain.Position{ID: "pos-1", Title: "Engineer", DepartmentID: dept.ID, IsActive: false})

	updated, err := f.service.Deactivate(context.Background(), domain.RoleAdmin, dept.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestDeactivateClearsManagerReference(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true, ManagerID: ptr("emp-1")})

	updated, err := f.service.Deactivate(context.Background(), domain.RoleAdmin, dept.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Nil(t, updated.ManagerID)
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestDeactivateAlreadyInactive(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: false})

	_, err := f.service.Deactivate(context.Background(), domain.RoleAdmin, dept.ID)
	requireDomainError(t, err, apperrors.KindValidation, "Department is already inactive")
}

func TestDeactivateRequiresWriteRole(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true})

	_, err := f.service.Deactivate(context.Background(), domain.RoleManager, dept.ID)
	requireDomainError(t, err, apperrors.KindUnauthorized, "access denied")
}

// ---- list ------------------------------------------------------------

func TestListPaginationMath(t *testing.T) {
	f := newFixture()
	for i := 0; i < 25; i++ {
		f.departments.put(domain.Department{Name: fmt.Sprintf("Dept %02d", i), IsActive: true})
	}

	page, err := f.service.List(context.Background(), domain.RoleEmployee, ListFilter{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 25, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 3, page.Pagination.Pages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
	assert.Equal(t, "Dept 10", page.Items[0].Name)
}

func TestListLimitClampedAndPageFloored(t *testing.T) {
	f := newFixture()
	f.departments.put(domain.Department{Name: "Engineering", IsActive: true})

	page, err := f.service.List(context.Background(), domain.RoleAdmin, ListFilter{Page: -3, Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, maxPageLimit, page.Pagination.Limit)

	page, err = f.service.List(context.Background(), domain.RoleAdmin, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, defaultPageLimit, page.Pagination.Limit)
}

func TestListUnknownSortFallsBackToName(t *testing.T) {
	f := newFixture()
	f.departments.put(domain.Department{Name: "Zeta", IsActive: true})
	f.departments.put(domain.Department{Name: "Alpha", IsActive: true})

	page, err := f.service.List(context.Background(), domain.RoleAdmin, ListFilter{SortBy: "manager_id; DROP TABLE", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Alpha", page.Items[0].Name)
}

func TestListFiltersByActiveAndSearch(t *testing.T) {
	f := newFixture()
	f.departments.put(domain.Department{Name: "Engineering", IsActive: true})
	f.departments.put(domain.Department{Name: "Legacy Engineering", IsActive: false})
	f.departments.put(domain.Department{Name: "Sales", IsActive: true, Description: ptr("engineering adjacent")})

	active := true
	page, err := f.service.List(context.Background(), domain.RoleAdmin, ListFilter{
		IsActive: &active,
		Search:   ptr("engineering"),
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestListRejectsUnknownRole(t *testing.T) {
	f := newFixture()

	_, err := f.service.List(context.Background(), domain.Role("GUEST"), ListFilter{})
	requireDomainError(t, err, apperrors.KindUnauthorized, "access denied")
}

// ---- get / hierarchy -------------------------------------------------

func TestGetByIDExpandsActiveDependentsOnly(t *testing.T) {
	f := newFixture()
	dept := f.departments.put(domain.Department{Name: "Engineering", IsActive: true, ManagerID: ptr("emp-1")})
	f.departments.put(domain.Department{Name: "Platform", IsActive: true, ParentID: ptr(dept.ID)})
	f.departments.put(domain.Department{Name: "Legacy", IsActive: false, ParentID: ptr(dept.ID)})
	f.employees.put(domain.Employee{ID: "emp-1", FullName: "Dana Reed", DepartmentID: ptr(dept.ID), EmploymentStatus: domain.EmploymentStatusActive})
	f.employees.put(domain.Employee{ID: "emp-2", FullName: "Gone Person", DepartmentID: ptr(dept.ID), EmploymentStatus: domain.EmploymentStatusTerminated})
	f.positions.put(domain.Position{ID: "pos-1", Title: "Engineer", DepartmentID: dept.ID, IsActive: true})
	f.positions.put(domain.Position{ID: "pos-2", Title: "Retired Role", DepartmentID: dept.ID, IsActive: false})

	detail, err := f.service.GetByID(context.Background(), domain.RoleEmployee, dept.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Manager)
	assert.Equal(t, "Dana Reed", detail.Manager.FullName)
	require.Len(t, detail.Children, 1)
	assert.Equal(t, "Platform", detail.Children[0].Name)
	require.Len(t, detail.Employees, 1)
	require.Len(t, detail.Positions, 1)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.GetByID(context.Background(), domain.RoleAdmin, "ghost")
	requireDomainError(t, err, apperrors.KindNotFound, "Department not found")
}

func TestHierarchyPathAndTwoLevelChildren(t *testing.T) {
	f := newFixture()
	root := f.departments.put(domain.Department{Name: "Company", IsActive: true})
	mid := f.departments.put(domain.Department{Name: "Engineering", IsActive: true, ParentID: ptr(root.ID)})
	child := f.departments.put(domain.Department{Name: "Platform", IsActive: true, ParentID: ptr(mid.ID)})
	f.departments.put(domain.Department{Name: "Infra", IsActive: true, ParentID: ptr(child.ID)})

	view, err := f.service.Hierarchy(context.Background(), domain.RoleManager, mid.ID)
	require.NoError(t, err)
	require.Len(t, view.AncestorPath, 2)
	assert.Equal(t, "Company", view.AncestorPath[0].Name)
	assert.Equal(t, "Engineering", view.AncestorPath[1].Name)
	require.Len(t, view.Children, 1)
	assert.Equal(t, "Platform", view.Children[0].Department.Name)
	require.Len(t, view.Children[0].Children, 1)
	assert.Equal(t, "Infra", view.Children[0].Children[0].Name)
}

// ---- selection -------------------------------------------------------

func TestListActiveForSelectionResolvesParentNames(t *testing.T) {
	f := newFixture()
	root := f.departments.put(domain.Department{Name: "Company", IsActive: true})
	f.departments.put(domain.Department{Name: "Engineering", IsActive: true, ParentID: ptr(root.ID)})
	f.departments.put(domain.Department{Name: "Archived", IsActive: false})

	options, err := f.service.ListActiveForSelection(context.Background(), domain.RoleEmployee)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Company", options[0].Name)
	assert.Equal(t, "Engineering", options[1].Name)
	require.NotNil(t, options[1].ParentName)
	assert.Equal(t, "Company", *options[1].ParentName)
}

func TestListActiveForSelectionUsesCache(t *testing.T) {
	f := newFixture()
	f.departments.put(domain.Department{Name: "Engineering", IsActive: true})

	_, err := f.service.ListActiveForSelection(context.Background(), domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, f.cache.populated)

	_, err = f.service.ListActiveForSelection(context.Background(), domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
}
