package domain

import "time"

// Role enumerates HR application roles carried by user accounts.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleHRManager Role = "HR_MANAGER"
	RoleManager   Role = "MANAGER"
	RoleEmployee  Role = "EMPLOYEE"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleHRManager, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User is an application account able to authenticate against the API.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
