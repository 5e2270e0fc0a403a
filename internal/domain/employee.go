package domain

import "time"

// EmploymentStatus enumerates employee lifecycle states.
type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "ACTIVE"
	EmploymentStatusOnLeave    EmploymentStatus = "ON_LEAVE"
	EmploymentStatusTerminated EmploymentStatus = "TERMINATED"
)

// Employee models a person employed by the organization. Department
// membership and position are optional references.
type Employee struct {
	ID               string
	FullName         string
	Email            string
	DepartmentID     *string
	PositionID       *string
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
