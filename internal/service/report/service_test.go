package report

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeReportRepo struct {
	mu          sync.Mutex
	scopes      []report.Scope
	summaryRows []report.AttendanceSummaryRow
	today       report.TodayAttendance
	leaveRows   []report.LeaveCountRow
	pending     int
	pendingErr  error
	dateKeys    []string
	years       []int
}

func (f *fakeReportRepo) record(scope report.Scope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, scope)
}

func (f *fakeReportRepo) AttendanceSummary(_ context.Context, scope report.Scope, _, _ string, _ report.GroupBy) ([]report.AttendanceSummaryRow, error) {
	f.record(scope)
	return append([]report.AttendanceSummaryRow(nil), f.summaryRows...), nil
}

func (f *fakeReportRepo) AttendanceForDay(_ context.Context, scope report.Scope, dateKey string) (report.TodayAttendance, error) {
	f.record(scope)
	f.mu.Lock()
	f.dateKeys = append(f.dateKeys, dateKey)
	f.mu.Unlock()
	return f.today, nil
}

func (f *fakeReportRepo) LeaveCounts(_ context.Context, scope report.Scope, year int) ([]report.LeaveCountRow, error) {
	f.record(scope)
	f.mu.Lock()
	f.years = append(f.years, year)
	f.mu.Unlock()
	return f.leaveRows, nil
}

func (f *fakeReportRepo) CountPendingApprovals(_ context.Context, _ string) (int, error) {
	return f.pending, f.pendingErr
}

// fakeAttendanceRepo only serves List; the export path needs nothing else.
type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	records    []attendance.Attendance
	lastFilter attendance.AttendanceFilter
}

func (f *fakeAttendanceRepo) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	f.lastFilter = filter
	records := f.records
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, int64(len(f.records)), nil
}

func newService(t *testing.T, reports *fakeReportRepo, attendances *fakeAttendanceRepo) *ReportServiceImpl {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Accra")
	require.NoError(t, err)
	clk := clock.NewFixed(time.Date(2026, 10, 14, 12, 0, 0, 0, loc))
	return NewReportService(reports, attendances, clk, config.OfficeConfig{Timezone: "Africa/Accra"})
}

func ptr[T any](v T) *T { return &v }

var (
	staff = user.Actor{UserID: "emp-1", Role: user.RoleStaff, DepartmentID: "eng"}
	head  = user.Actor{UserID: "head-1", Role: user.RoleDepartmentHead, DepartmentID: "eng"}
	admin = user.Actor{UserID: "adm-1", Role: user.RoleAdmin}
)

func TestScopeFor(t *testing.T) {
	assert.Equal(t, report.Scope{UserID: ptr("emp-1")}, report.ScopeFor(staff))
	assert.Equal(t, report.Scope{DepartmentID: ptr("eng")}, report.ScopeFor(head))
	assert.Equal(t, report.Scope{}, report.ScopeFor(admin))
	assert.Equal(t, report.Scope{}, report.ScopeFor(user.Actor{UserID: "mgr-1", Role: user.RoleManager}))
}

func TestAttendanceSummary_AveragesAndTotals(t *testing.T) {
	reports := &fakeReportRepo{summaryRows: []report.AttendanceSummaryRow{
		{Key: "2026-10-12", Label: "2026-10-12", Records: 3, Completed: 2, AutoCheckedOut: 1, TotalHours: 25},
		{Key: "2026-10-13", Label: "2026-10-13", Records: 0},
		{Key: "2026-10-14", Label: "2026-10-14", Records: 2, Completed: 2, TotalHours: 15.5},
	}}
	svc := newService(t, reports, &fakeAttendanceRepo{})

	summary, err := svc.AttendanceSummary(context.Background(), head, report.AttendanceSummaryRequest{
		StartDate: "2026-10-12",
		EndDate:   "2026-10-14",
	})
	require.NoError(t, err)

	assert.Equal(t, report.GroupByDay, summary.GroupBy)
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, 8.33, summary.Rows[0].AverageHours)
	assert.Equal(t, 0.0, summary.Rows[1].AverageHours)
	assert.Equal(t, 7.75, summary.Rows[2].AverageHours)

	assert.Equal(t, 5, summary.Totals.Records)
	assert.Equal(t, 4, summary.Totals.Completed)
	assert.Equal(t, 1, summary.Totals.AutoCheckedOut)
	assert.Equal(t, 40.5, summary.Totals.TotalHours)
	assert.Equal(t, 8.1, summary.Totals.AverageHours)
	assert.Equal(t, "2026-10-14T12:00:00Z", summary.GeneratedAt)

	assert.Equal(t, []report.Scope{{DepartmentID: ptr("eng")}}, reports.scopes)
}

func TestAttendanceSummary_InvalidRequest(t *testing.T) {
	svc := newService(t, &fakeReportRepo{}, &fakeAttendanceRepo{})

	_, err := svc.AttendanceSummary(context.Background(), admin, report.AttendanceSummaryRequest{
		StartDate: "2026-10-12",
		EndDate:   "2026-10-14",
		GroupBy:   "hour",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group_by")
}

func TestLeaveStatistics(t *testing.T) {
	reports := &fakeReportRepo{leaveRows: []report.LeaveCountRow{
		{Status: "approved", LeaveType: "annual", Count: 3, Days: 9},
		{Status: "pending", LeaveType: "annual", Count: 1, Days: 2},
		{Status: "rejected", LeaveType: "sick", Count: 2, Days: 1.5},
	}}
	svc := newService(t, reports, &fakeAttendanceRepo{})

	stats, err := svc.LeaveStatistics(context.Background(), staff, report.LeaveStatisticsRequest{Year: 2026})
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalRequests)
	assert.Equal(t, map[string]int{"approved": 3, "pending": 1, "rejected": 2}, stats.ByStatus)
	assert.Equal(t, map[string]int{"annual": 4, "sick": 2}, stats.ByType)
	assert.Equal(t, 12.5, stats.TotalDays)
	assert.Equal(t, 2.08, stats.AverageDays)
	assert.Equal(t, []report.Scope{{UserID: ptr("emp-1")}}, reports.scopes)

	_, err = svc.LeaveStatistics(context.Background(), staff, report.LeaveStatisticsRequest{Year: 1999})
	assert.Error(t, err)
}

func TestLeaveStatistics_DefaultsToOfficeYear(t *testing.T) {
	reports := &fakeReportRepo{}
	svc := newService(t, reports, &fakeAttendanceRepo{})
	// still 2026 in Accra while a server one hour ahead has rolled over
	svc.clock = clock.NewFixed(time.Date(2027, 1, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600)))

	stats, err := svc.LeaveStatistics(context.Background(), staff, report.LeaveStatisticsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2026, stats.Year)
	assert.Equal(t, []int{2026}, reports.years)

	// next year is allowed relative to the office clock
	_, err = svc.LeaveStatistics(context.Background(), staff, report.LeaveStatisticsRequest{Year: 2027})
	require.NoError(t, err)
	_, err = svc.LeaveStatistics(context.Background(), staff, report.LeaveStatisticsRequest{Year: 2028})
	assert.Error(t, err)
}

func TestDashboard(t *testing.T) {
	reports := &fakeReportRepo{
		today:     report.TodayAttendance{Date: "2026-10-14", CheckedIn: 4, StillOpen: 3, CheckedOut: 1, InHouse: 3, Remote: 1},
		pending:   2,
		leaveRows: []report.LeaveCountRow{{Status: "pending", LeaveType: "annual", Count: 2, Days: 5}},
	}
	svc := newService(t, reports, &fakeAttendanceRepo{})

	dash, err := svc.Dashboard(context.Background(), head)
	require.NoError(t, err)

	assert.Equal(t, reports.today, dash.AttendanceToday)
	assert.Equal(t, 2, dash.PendingApprovals)
	assert.Equal(t, 2, dash.LeaveStatistics.TotalRequests)
	assert.Equal(t, 2026, dash.LeaveStatistics.Year)
	assert.Equal(t, []string{"2026-10-14"}, reports.dateKeys)
}

func TestDashboard_PropagatesFailure(t *testing.T) {
	reports := &fakeReportRepo{pendingErr: errors.New("pool closed")}
	svc := newService(t, reports, &fakeAttendanceRepo{})

	_, err := svc.Dashboard(context.Background(), admin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool closed")
}

func TestExportAttendanceXLSX(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Accra")
	require.NoError(t, err)
	in := time.Date(2026, 10, 13, 8, 30, 0, 0, loc)
	out := time.Date(2026, 10, 13, 17, 0, 0, 0, loc)
	hours := 8.5

	attendances := &fakeAttendanceRepo{records: []attendance.Attendance{
		{
			ID: "att-1", UserID: "emp-1", DepartmentID: "eng", LocalDateKey: "2026-10-13",
			CheckInTime: in, CheckOutTime: &out, WorkHours: &hours,
			WorkMode: attendance.WorkModeInHouse, Status: attendance.StatusPresent,
			EmployeeName: ptr("Ama Mensah"), DepartmentName: ptr("Engineering"),
		},
		{
			ID: "att-2", UserID: "emp-1", DepartmentID: "eng", LocalDateKey: "2026-10-14",
			CheckInTime: in.AddDate(0, 0, 1),
			WorkMode:    attendance.WorkModeRemote, Status: attendance.StatusPresent,
		},
	}}
	svc := newService(t, &fakeReportRepo{}, attendances)

	data, err := svc.ExportAttendanceXLSX(context.Background(), staff, attendance.DateRange{StartDate: "2026-10-01", EndDate: "2026-10-31"})
	require.NoError(t, err)

	assert.Equal(t, ptr("emp-1"), attendances.lastFilter.UserID)
	assert.Equal(t, MaxExportRows, attendances.lastFilter.Limit)
	assert.Equal(t, 1, attendances.lastFilter.Page)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(attendanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, []string{"2026-10-13", "Ama Mensah", "Engineering", "in-house", "08:30", "17:00", "8.5", "present"}, rows[1][:8])
	assert.Equal(t, "emp-1", rows[2][1])
	assert.Equal(t, "", rows[2][5])
}

func TestExportAttendanceXLSX_TooLarge(t *testing.T) {
	attendances := &fakeAttendanceRepo{records: make([]attendance.Attendance, 3)}
	svc := newService(t, &fakeReportRepo{}, attendances)
	svc.maxExportRows = 2

	_, err := svc.ExportAttendanceXLSX(context.Background(), admin, attendance.DateRange{StartDate: "2026-10-01", EndDate: "2026-10-31"})
	assert.ErrorIs(t, err, report.ErrExportTooLarge)
	// the query never loads more rows than an export may hold
	assert.Equal(t, 2, attendances.lastFilter.Limit)
}
