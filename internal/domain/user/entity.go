package user

type Role string

const (
	RoleStaff          Role = "staff"           // Regular employee
	RoleDepartmentHead Role = "department_head" // Approves leave for their department
	RoleManager        Role = "manager"         // Approves long and special leave
	RoleAdmin          Role = "admin"           // Full access
)

var ValidRoles = []Role{RoleStaff, RoleDepartmentHead, RoleManager, RoleAdmin}

func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of a mutating operation, resolved by the transport layer.
type Actor struct {
	UserID       string
	Role         Role
	DepartmentID string
}

// IsAdmin checks if actor is an admin
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsManager checks if actor is manager or admin
func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}
