package report

import (
	"fmt"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

type GroupBy string

const (
	GroupByDay        GroupBy = "day"
	GroupByWeek       GroupBy = "week"
	GroupByMonth      GroupBy = "month"
	GroupByQuarter    GroupBy = "quarter"
	GroupByDepartment GroupBy = "department"
	GroupByUser       GroupBy = "user"
	GroupByWorkMode   GroupBy = "work_mode"
)

var ValidGroupBy = []string{
	string(GroupByDay), string(GroupByWeek), string(GroupByMonth), string(GroupByQuarter),
	string(GroupByDepartment), string(GroupByUser), string(GroupByWorkMode),
}

// Scope narrows a report to what the caller may see. Nil fields mean unrestricted.
type Scope struct {
	UserID       *string
	DepartmentID *string
}

// ========================================
// ATTENDANCE SUMMARY
// ========================================

type AttendanceSummaryRequest struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	GroupBy   GroupBy `json:"group_by"`
}

func (r *AttendanceSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must be on or after start_date")
	}

	if r.GroupBy == "" {
		r.GroupBy = GroupByDay
	}
	if !validator.IsInSlice(string(r.GroupBy), ValidGroupBy) {
		errs.Add("group_by", "group_by must be one of: day, week, month, quarter, department, user, work_mode")
	}

	return errs.Err()
}

type AttendanceSummaryRow struct {
	Key            string  `json:"key"`
	Label          string  `json:"label"`
	Records        int     `json:"records"`
	Completed      int     `json:"completed"`
	AutoCheckedOut int     `json:"auto_checked_out"`
	TotalHours     float64 `json:"total_hours"`
	AverageHours   float64 `json:"average_hours"`
}

type AttendanceSummaryReport struct {
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	GroupBy     GroupBy                `json:"group_by"`
	GeneratedAt string                 `json:"generated_at"`
	Rows        []AttendanceSummaryRow `json:"rows"`
	Totals      AttendanceSummaryRow   `json:"totals"`
}

// ========================================
// LEAVE STATISTICS
// ========================================

type LeaveStatisticsRequest struct {
	Year int `json:"year"`
}

func (r *LeaveStatisticsRequest) Validate(currentYear int) error {
	var errs validator.ValidationErrors

	if r.Year < 2020 || r.Year > currentYear+1 {
		errs.Add("year", fmt.Sprintf("year must be between 2020 and %d", currentYear+1))
	}

	return errs.Err()
}

// LeaveCountRow is one (status, leave type) bucket.
type LeaveCountRow struct {
	Status    string
	LeaveType string
	Count     int
	Days      float64
}

type LeaveStatistics struct {
	Year          int            `json:"year"`
	TotalRequests int            `json:"total_requests"`
	ByStatus      map[string]int `json:"by_status"`
	ByType        map[string]int `json:"by_type"`
	TotalDays     float64        `json:"total_days"`
	AverageDays   float64        `json:"average_days"`
}

// ========================================
// DASHBOARD
// ========================================

type TodayAttendance struct {
	Date           string `json:"date"`
	CheckedIn      int    `json:"checked_in"`
	StillOpen      int    `json:"still_open"`
	CheckedOut     int    `json:"checked_out"`
	AutoCheckedOut int    `json:"auto_checked_out"`
	Remote         int    `json:"remote"`
	InHouse        int    `json:"in_house"`
}

type DashboardResponse struct {
	AttendanceToday  TodayAttendance `json:"attendance_today"`
	PendingApprovals int             `json:"pending_approvals"`
	LeaveStatistics  LeaveStatistics `json:"leave_statistics"`
	GeneratedAt      string          `json:"generated_at"`
}
