package domain

import "time"

// Department represents an organizational unit with an optional manager
// and an optional parent department. ParentID == nil means root level.
type Department struct {
	ID          string
	Name        string
	Description *string
	IsActive    bool
	ManagerID   *string
	ParentID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
