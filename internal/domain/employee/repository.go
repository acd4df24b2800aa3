package employee

import (
	"context"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
)

// Directory resolves employees for attendance and approval routing.
type Directory interface {
	// FindByID returns ErrEmployeeNotFound when no employee has the id.
	FindByID(ctx context.Context, id string) (Employee, error)

	// FindActiveByRoleAndDepartment returns the first active employee holding role,
	// restricted to departmentID when it is non-nil. ErrEmployeeNotFound when none match.
	FindActiveByRoleAndDepartment(ctx context.Context, role user.Role, departmentID *string) (Employee, error)
}
