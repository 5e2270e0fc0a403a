package domain

import "time"

// Position is a job role attached to a department.
type Position struct {
	ID           string
	Title        string
	DepartmentID string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
