package events

import (
	"time"

	"github.com/spec-kit/hr-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDepartmentCreated     EventType = "department_created"
	EventDepartmentUpdated     EventType = "department_updated"
	EventDepartmentDeactivated EventType = "department_deactivated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted after a department mutation.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	DepartmentID string      `json:"department_id"`
	Actor        Actor       `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// DepartmentCreatedPayload payload.
type DepartmentCreatedPayload struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// DepartmentUpdatedPayload payload.
type DepartmentUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

// DepartmentDeactivatedPayload payload.
type DepartmentDeactivatedPayload struct {
	Name string `json:"name"`
}
