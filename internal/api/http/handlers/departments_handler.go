package handlers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/service"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

// DepartmentsHandler manages department endpoints.
type DepartmentsHandler struct {
	service    *service.DepartmentService
	audit      *service.AuditService
	dispatcher events.Dispatcher
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService, auditService *service.AuditService, dispatcher events.Dispatcher) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService, audit: auditService, dispatcher: dispatcher}
}

// List GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := parseListQuery(c)
	page, err := h.service.List(c.UserContext(), principal.Role, filter)
	if err != nil {
		return err
	}

	items := make([]dto.DepartmentResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, departmentResponse(&page.Items[i], nil, nil))
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentListResponse{
		Items: items,
		Pagination: dto.PaginationResponse{
			Total:   page.Pagination.Total,
			Page:    page.Pagination.Page,
			Limit:   page.Pagination.Limit,
			Pages:   page.Pagination.Pages,
			HasNext: page.Pagination.HasNext,
			HasPrev: page.Pagination.HasPrev,
		},
	}})
}

// Options GET /departments/options.
func (h *DepartmentsHandler) Options(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	options, err := h.service.ListActiveForSelection(c.UserContext(), principal.Role)
	if err != nil {
		return err
	}
	resp := make([]dto.DepartmentOptionResponse, 0, len(options))
	for _, option := range options {
		resp = append(resp, dto.DepartmentOptionResponse{
			ID:         option.ID,
			Name:       option.Name,
			ParentID:   option.ParentID,
			ParentName: option.ParentName,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	detail, err := h.service.GetByID(c.UserContext(), principal.Role, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detailResponse(detail)})
}

// Hierarchy GET /departments/:id/hierarchy.
func (h *DepartmentsHandler) Hierarchy(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	view, err := h.service.Hierarchy(c.UserContext(), principal.Role, c.Params("id"))
	if err != nil {
		return err
	}

	path := make([]dto.PathEntryResponse, 0, len(view.AncestorPath))
	for _, entry := range view.AncestorPath {
		path = append(path, dto.PathEntryResponse{ID: entry.ID, Name: entry.Name})
	}
	children := make([]dto.HierarchyChildResponse, 0, len(view.Children))
	for _, child := range view.Children {
		children = append(children, dto.HierarchyChildResponse{
			DepartmentSummary: departmentSummary(child.Department),
			Children:          departmentSummaries(child.Children),
		})
	}

	return c.JSON(fiber.Map{"data": dto.HierarchyResponse{
		Department:   departmentResponse(&view.Department, nil, nil),
		AncestorPath: path,
		Children:     children,
	}})
}

// Create POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	view, err := h.service.Create(c.UserContext(), principal.Role, service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
		ParentID:    req.ParentID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}

	h.publish(c, principal, events.EventDepartmentCreated, view.Department.ID, events.DepartmentCreatedPayload{
		Name:     view.Department.Name,
		ParentID: view.Department.ParentID,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": viewResponse(view)})
}

// Update PATCH /departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	// Partial-update semantics need to distinguish a key sent as null
	// from a key that is absent.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	_, descriptionSet := raw["description"]
	_, managerSet := raw["manager_id"]
	_, parentSet := raw["parent_id"]

	input := service.UpdateInput{
		Name:           req.Name,
		Description:    req.Description,
		DescriptionSet: descriptionSet,
		ManagerID:      req.ManagerID,
		ManagerSet:     managerSet,
		ParentID:       req.ParentID,
		ParentSet:      parentSet,
	}

	view, err := h.service.Update(c.UserContext(), principal.Role, c.Params("id"), input)
	if err != nil {
		return err
	}

	changed := make([]string, 0, 4)
	if req.Name != nil {
		changed = append(changed, "name")
	}
	if descriptionSet {
		changed = append(changed, "description")
	}
	if managerSet {
		changed = append(changed, "manager_id")
	}
	if parentSet {
		changed = append(changed, "parent_id")
	}
	h.publish(c, principal, events.EventDepartmentUpdated, view.Department.ID, events.DepartmentUpdatedPayload{
		ChangedFields: changed,
	})
	return c.JSON(fiber.Map{"data": viewResponse(view)})
}

// Deactivate DELETE /departments/:id.
func (h *DepartmentsHandler) Deactivate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	dept, err := h.service.Deactivate(c.UserContext(), principal.Role, c.Params("id"))
	if err != nil {
		return err
	}

	h.publish(c, principal, events.EventDepartmentDeactivated, dept.ID, events.DepartmentDeactivatedPayload{
		Name: dept.Name,
	})
	return c.JSON(fiber.Map{"data": departmentResponse(dept, nil, nil)})
}

// Audit GET /departments/:id/audit.
func (h *DepartmentsHandler) Audit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := parseIntQuery(c.Query("limit"), 50)
	offset := parseIntQuery(c.Query("offset"), 0)
	entries, err := h.audit.ListByDepartment(c.UserContext(), principal.Role, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}

	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			ActorRole: entry.ActorRole,
			Action:    entry.Action,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

func (h *DepartmentsHandler) publish(c *fiber.Ctx, principal *auth.Principal, eventType events.EventType, departmentID string, payload interface{}) {
	if h.dispatcher == nil {
		return
	}
	actor := events.Actor{Role: principal.Role}
	if principal.User != nil {
		actor.UserID = &principal.User.ID
	}
	_ = h.dispatcher.Publish(c.UserContext(), events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		DepartmentID: departmentID,
		Actor:        actor,
		Timestamp:    time.Now(),
		Payload:      payload,
	})
}

func parseListQuery(c *fiber.Ctx) service.ListFilter {
	filter := service.ListFilter{
		Page:      parseIntQuery(c.Query("page"), 1),
		Limit:     parseIntQuery(c.Query("limit"), 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if activeStr := c.Query("active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			filter.IsActive = &active
		}
	}
	if parentID := c.Query("parent_id"); parentID != "" {
		filter.ParentID = &parentID
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}
	return filter
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func departmentResponse(dept *domain.Department, manager *domain.Employee, parent *domain.Department) dto.DepartmentResponse {
	resp := dto.DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Description: dept.Description,
		IsActive:    dept.IsActive,
		ManagerID:   dept.ManagerID,
		ParentID:    dept.ParentID,
		CreatedAt:   dept.CreatedAt,
		UpdatedAt:   dept.UpdatedAt,
	}
	if manager != nil {
		summary := employeeSummary(*manager)
		resp.Manager = &summary
	}
	if parent != nil {
		summary := departmentSummary(*parent)
		resp.Parent = &summary
	}
	return resp
}

func viewResponse(view *service.DepartmentView) dto.DepartmentResponse {
	return departmentResponse(&view.Department, view.Manager, view.Parent)
}

func detailResponse(detail *service.DepartmentDetail) dto.DepartmentDetailResponse {
	employees := make([]dto.EmployeeSummary, 0, len(detail.Employees))
	for _, emp := range detail.Employees {
		employees = append(employees, employeeSummary(emp))
	}
	positions := make([]dto.PositionSummary, 0, len(detail.Positions))
	for _, pos := range detail.Positions {
		positions = append(positions, dto.PositionSummary{ID: pos.ID, Title: pos.Title, IsActive: pos.IsActive})
	}
	return dto.DepartmentDetailResponse{
		DepartmentResponse: viewResponse(&detail.DepartmentView),
		Children:           departmentSummaries(detail.Children),
		Employees:          employees,
		Positions:          positions,
	}
}

func departmentSummary(dept domain.Department) dto.DepartmentSummary {
	return dto.DepartmentSummary{ID: dept.ID, Name: dept.Name, IsActive: dept.IsActive}
}

func departmentSummaries(departments []domain.Department) []dto.DepartmentSummary {
	result := make([]dto.DepartmentSummary, 0, len(departments))
	for _, dept := range departments {
		result = append(result, departmentSummary(dept))
	}
	return result
}

func employeeSummary(emp domain.Employee) dto.EmployeeSummary {
	return dto.EmployeeSummary{
		ID:               emp.ID,
		FullName:         emp.FullName,
		Email:            emp.Email,
		EmploymentStatus: string(emp.EmploymentStatus),
	}
}
