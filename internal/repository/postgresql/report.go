package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// groupExpressions maps a grouping to its key and label SQL.
var groupExpressions = map[report.GroupBy][2]string{
	report.GroupByDay:        {`to_char(a.date, 'YYYY-MM-DD')`, `to_char(a.date, 'Dy DD Mon YYYY')`},
	report.GroupByWeek:       {`to_char(a.date, 'IYYY-"W"IW')`, `'Week of ' || to_char(date_trunc('week', a.date), 'YYYY-MM-DD')`},
	report.GroupByMonth:      {`to_char(a.date, 'YYYY-MM')`, `to_char(a.date, 'FMMonth YYYY')`},
	report.GroupByQuarter:    {`to_char(a.date, 'YYYY-"Q"Q')`, `'Q' || to_char(a.date, 'Q YYYY')`},
	report.GroupByDepartment: {`a.department_id::text`, `COALESCE(d.name, 'Unassigned')`},
	report.GroupByUser:       {`a.user_id::text`, `COALESCE(e.full_name, a.user_id::text)`},
	report.GroupByWorkMode:   {`a.work_mode`, `a.work_mode`},
}

// scopeClause appends the scope filters for alias to where.
func scopeClause(scope report.Scope, alias, userColumn string, where string, args []interface{}) (string, []interface{}) {
	if scope.UserID != nil {
		args = append(args, *scope.UserID)
		where += fmt.Sprintf(" AND %s.%s = $%d", alias, userColumn, len(args))
	}
	if scope.DepartmentID != nil {
		args = append(args, *scope.DepartmentID)
		where += fmt.Sprintf(" AND %s.department_id = $%d", alias, len(args))
	}
	return where, args
}

// AttendanceSummary implements report.ReportRepository.
func (r *reportRepositoryImpl) AttendanceSummary(ctx context.Context, scope report.Scope, startDate, endDate string, groupBy report.GroupBy) ([]report.AttendanceSummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	exprs, ok := groupExpressions[groupBy]
	if !ok {
		return nil, report.ErrInvalidGroupBy
	}

	where, args := scopeClause(scope, "a", "user_id",
		"a.local_date_key >= $1 AND a.local_date_key <= $2",
		[]interface{}{startDate, endDate},
	)

	query := fmt.Sprintf(`
		SELECT
			%[1]s AS group_key,
			%[2]s AS group_label,
			COUNT(*) AS records,
			COUNT(a.check_out_time) AS completed,
			COUNT(*) FILTER (WHERE a.status = 'auto_checked_out') AS auto_checked_out,
			COALESCE(SUM(a.work_hours), 0)::float8 AS total_hours
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.user_id
		LEFT JOIN departments d ON d.id = a.department_id
		WHERE %[3]s
		GROUP BY group_key, group_label
		ORDER BY group_key
	`, exprs[0], exprs[1], where)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance summary: %w", err)
	}
	defer rows.Close()

	result := []report.AttendanceSummaryRow{}
	for rows.Next() {
		var row report.AttendanceSummaryRow
		if err := rows.Scan(&row.Key, &row.Label, &row.Records, &row.Completed, &row.AutoCheckedOut, &row.TotalHours); err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// AttendanceForDay implements report.ReportRepository.
func (r *reportRepositoryImpl) AttendanceForDay(ctx context.Context, scope report.Scope, dateKey string) (report.TodayAttendance, error) {
	q := GetQuerier(ctx, r.db)

	where, args := scopeClause(scope, "a", "user_id", "a.local_date_key = $1", []interface{}{dateKey})

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE a.check_out_time IS NULL),
			COUNT(*) FILTER (WHERE a.check_out_time IS NOT NULL),
			COUNT(*) FILTER (WHERE a.status = 'auto_checked_out'),
			COUNT(*) FILTER (WHERE a.work_mode = 'remote'),
			COUNT(*) FILTER (WHERE a.work_mode = 'in-house')
		FROM attendances a
		WHERE ` + where

	today := report.TodayAttendance{Date: dateKey}
	err := q.QueryRow(ctx, query, args...).Scan(
		&today.CheckedIn,
		&today.StillOpen,
		&today.CheckedOut,
		&today.AutoCheckedOut,
		&today.Remote,
		&today.InHouse,
	)
	if err != nil {
		return report.TodayAttendance{}, fmt.Errorf("failed to count today's attendance: %w", err)
	}

	return today, nil
}

// LeaveCounts implements report.ReportRepository.
func (r *reportRepositoryImpl) LeaveCounts(ctx context.Context, scope report.Scope, year int) ([]report.LeaveCountRow, error) {
	q := GetQuerier(ctx, r.db)

	where, args := scopeClause(scope, "lr", "employee_id",
		"EXTRACT(YEAR FROM lr.start_date) = $1",
		[]interface{}{year},
	)

	query := `
		SELECT lr.status, lr.leave_type, COUNT(*), COALESCE(SUM(lr.total_days), 0)::float8
		FROM leave_requests lr
		WHERE ` + where + `
		GROUP BY lr.status, lr.leave_type
		ORDER BY lr.status, lr.leave_type
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave counts: %w", err)
	}
	defer rows.Close()

	var result []report.LeaveCountRow
	for rows.Next() {
		var row report.LeaveCountRow
		if err := rows.Scan(&row.Status, &row.LeaveType, &row.Count, &row.Days); err != nil {
			return nil, fmt.Errorf("failed to scan leave counts: %w", err)
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// CountPendingApprovals implements report.ReportRepository.
func (r *reportRepositoryImpl) CountPendingApprovals(ctx context.Context, approverID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM leave_requests lr
		WHERE lr.status = 'pending'
		  AND EXISTS (
			SELECT 1
			FROM jsonb_array_elements(lr.approval_workflow) AS step
			WHERE step->>'approver_id' = $1
			  AND step->>'status' = 'pending'
			  AND (step->>'order')::int = lr.current_approval_level
		  )
	`

	var count int
	if err := q.QueryRow(ctx, query, approverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending approvals: %w", err)
	}

	return count, nil
}
