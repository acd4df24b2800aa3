package user

type Permission string

const (
	// Attendance Management
	PermissionAttendanceCreate       Permission = "attendance.create"
	PermissionAttendanceViewOwn      Permission = "attendance.view_own"
	PermissionAttendanceViewAll      Permission = "attendance.view_all"
	PermissionAttendanceDelete       Permission = "attendance.delete"
	PermissionAttendanceAutoCheckout Permission = "attendance.auto_checkout"

	// Leave Management
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveApprove Permission = "leave.approve"

	// Reports
	PermissionReportsView   Permission = "reports.view"
	PermissionReportsExport Permission = "reports.export"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admin has all permissions
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceDelete,
		PermissionAttendanceAutoCheckout,
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveApprove,
		PermissionReportsView,
		PermissionReportsExport,
	},
	RoleManager: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceDelete,
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveApprove,
		PermissionReportsView,
		PermissionReportsExport,
	},
	RoleDepartmentHead: {
		// Department heads see their department, but cannot delete records
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionLeaveApprove,
		PermissionReportsView,
	},
	RoleStaff: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewOwn,
		PermissionReportsView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
