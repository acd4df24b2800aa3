package report

import (
	"context"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
)

// ReportService defines the interface for report generation
type ReportService interface {
	AttendanceSummary(ctx context.Context, actor user.Actor, req AttendanceSummaryRequest) (AttendanceSummaryReport, error)
	LeaveStatistics(ctx context.Context, actor user.Actor, req LeaveStatisticsRequest) (LeaveStatistics, error)

	// Dashboard runs its independent reads concurrently.
	Dashboard(ctx context.Context, actor user.Actor) (DashboardResponse, error)

	// ExportAttendanceXLSX renders the scoped attendance records as a spreadsheet.
	ExportAttendanceXLSX(ctx context.Context, actor user.Actor, dateRange attendance.DateRange) ([]byte, error)
}

// ScopeFor limits staff to themselves and department heads to their department.
func ScopeFor(actor user.Actor) Scope {
	switch actor.Role {
	case user.RoleAdmin, user.RoleManager:
		return Scope{}
	case user.RoleDepartmentHead:
		department := actor.DepartmentID
		return Scope{DepartmentID: &department}
	default:
		userID := actor.UserID
		return Scope{UserID: &userID}
	}
}
