package employee

import (
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
)

// Employee is the directory view of a person: who they are, what role they hold
// and which department they belong to.
type Employee struct {
	ID             string
	FullName       string
	Email          string
	Role           user.Role
	DepartmentID   string
	DepartmentName *string
	WorkMode       string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

// Actor returns the authorization context for this employee.
func (e Employee) Actor() user.Actor {
	return user.Actor{UserID: e.ID, Role: e.Role, DepartmentID: e.DepartmentID}
}
