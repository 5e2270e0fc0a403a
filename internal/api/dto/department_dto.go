package dto

import "time"

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ManagerID   *string `json:"manager_id"`
	ParentID    *string `json:"parent_id"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateDepartmentRequest payload. Omitted fields are left untouched;
// manager_id and parent_id sent as explicit null clear the reference.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ManagerID   *string `json:"manager_id"`
	ParentID    *string `json:"parent_id"`
}

// DepartmentSummary is the compact department shape used in expansions.
type DepartmentSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// EmployeeSummary is the compact employee shape used in expansions.
type EmployeeSummary struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	EmploymentStatus string `json:"employment_status"`
}

// PositionSummary is the compact position shape used in expansions.
type PositionSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	IsActive bool   `json:"is_active"`
}

// DepartmentResponse is the standard department payload.
type DepartmentResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	IsActive    bool               `json:"is_active"`
	ManagerID   *string            `json:"manager_id"`
	ParentID    *string            `json:"parent_id"`
	Manager     *EmployeeSummary   `json:"manager,omitempty"`
	Parent      *DepartmentSummary `json:"parent,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// DepartmentDetailResponse adds the active dependent collections.
type DepartmentDetailResponse struct {
	DepartmentResponse
	Children  []DepartmentSummary `json:"children"`
	Employees []EmployeeSummary   `json:"employees"`
	Positions []PositionSummary   `json:"positions"`
}

// PaginationResponse carries the page arithmetic of a listing.
type PaginationResponse struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// DepartmentListResponse is a page of departments.
type DepartmentListResponse struct {
	Items      []DepartmentResponse `json:"items"`
	Pagination PaginationResponse   `json:"pagination"`
}

// PathEntryResponse is one breadcrumb step, root first.
type PathEntryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HierarchyChildResponse is an active child with its active children.
type HierarchyChildResponse struct {
	DepartmentSummary
	Children []DepartmentSummary `json:"children"`
}

// HierarchyResponse is the two-level hierarchy view.
type HierarchyResponse struct {
	Department   DepartmentResponse       `json:"department"`
	AncestorPath []PathEntryResponse      `json:"ancestor_path"`
	Children     []HierarchyChildResponse `json:"children"`
}

// DepartmentOptionResponse populates selection controls.
type DepartmentOptionResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ParentID   *string `json:"parent_id"`
	ParentName *string `json:"parent_name,omitempty"`
}

// AuditEntryResponse is one audit trail row.
type AuditEntryResponse struct {
	ID        string         `json:"id"`
	ActorID   *string        `json:"actor_id"`
	ActorRole string         `json:"actor_role"`
	Action    string         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
