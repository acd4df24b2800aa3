package report

import "context"

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// AttendanceSummary groups attendance between two day keys (inclusive).
	// AverageHours is left for the caller.
	AttendanceSummary(ctx context.Context, scope Scope, startDate, endDate string, groupBy GroupBy) ([]AttendanceSummaryRow, error)

	// AttendanceForDay counts records for one office day.
	AttendanceForDay(ctx context.Context, scope Scope, dateKey string) (TodayAttendance, error)

	// LeaveCounts buckets requests starting in year by status and leave type.
	LeaveCounts(ctx context.Context, scope Scope, year int) ([]LeaveCountRow, error)

	// CountPendingApprovals counts pending requests whose current step belongs to approverID.
	CountPendingApprovals(ctx context.Context, approverID string) (int, error)
}
