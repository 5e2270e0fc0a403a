package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/dto"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/repository"
	"github.com/spec-kit/hr-service/internal/service"
	apperrors "github.com/spec-kit/hr-service/pkg/util"
)

// DirectoryHandler serves employee and position listings.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// ListEmployees GET /employees.
func (h *DirectoryHandler) ListEmployees(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := repository.EmployeeFilter{
		Limit:  parseIntQuery(c.Query("limit"), 50),
		Offset: parseIntQuery(c.Query("offset"), 0),
	}
	if departmentID := c.Query("department_id"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.EmploymentStatus(statusStr)
		filter.Status = &status
	}

	employees, err := h.service.ListEmployees(c.UserContext(), principal.Role, filter)
	if err != nil {
		return err
	}

	resp := make([]dto.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		resp = append(resp, dto.EmployeeResponse{
			ID:               emp.ID,
			FullName:         emp.FullName,
			Email:            emp.Email,
			DepartmentID:     emp.DepartmentID,
			PositionID:       emp.PositionID,
			EmploymentStatus: string(emp.EmploymentStatus),
			CreatedAt:        emp.CreatedAt,
			UpdatedAt:        emp.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ListPositions GET /positions.
func (h *DirectoryHandler) ListPositions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := repository.PositionFilter{
		Limit:  parseIntQuery(c.Query("limit"), 50),
		Offset: parseIntQuery(c.Query("offset"), 0),
	}
	if departmentID := c.Query("department_id"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	if activeStr := c.Query("active"); activeStr != "" {
		active := activeStr == "true"
		filter.IsActive = &active
	}

	positions, err := h.service.ListPositions(c.UserContext(), principal.Role, filter)
	if err != nil {
		return err
	}

	resp := make([]dto.PositionResponse, 0, len(positions))
	for _, pos := range positions {
		resp = append(resp, dto.PositionResponse{
			ID:           pos.ID,
			Title:        pos.Title,
			DepartmentID: pos.DepartmentID,
			IsActive:     pos.IsActive,
			CreatedAt:    pos.CreatedAt,
			UpdatedAt:    pos.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}
