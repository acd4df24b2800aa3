package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// MaxExportRows caps a single spreadsheet export.
const MaxExportRows = 50000

type ReportServiceImpl struct {
	reportRepo     report.ReportRepository
	attendanceRepo attendance.AttendanceRepository
	clock          clock.Clock
	loc            *time.Location
	maxExportRows  int
}

func NewReportService(reportRepo report.ReportRepository, attendanceRepo attendance.AttendanceRepository, clk clock.Clock, office config.OfficeConfig) *ReportServiceImpl {
	return &ReportServiceImpl{
		reportRepo:     reportRepo,
		attendanceRepo: attendanceRepo,
		clock:          clk,
		loc:            office.Location(),
		maxExportRows:  MaxExportRows,
	}
}

// AttendanceSummary implements report.ReportService.
func (s *ReportServiceImpl) AttendanceSummary(ctx context.Context, actor user.Actor, req report.AttendanceSummaryRequest) (report.AttendanceSummaryReport, error) {
	if err := req.Validate(); err != nil {
		return report.AttendanceSummaryReport{}, err
	}

	rows, err := s.reportRepo.AttendanceSummary(ctx, report.ScopeFor(actor), req.StartDate, req.EndDate, req.GroupBy)
	if err != nil {
		return report.AttendanceSummaryReport{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}

	totals := report.AttendanceSummaryRow{Key: "total", Label: "Total"}
	totalHours := decimal.Zero
	for i := range rows {
		hours := decimal.NewFromFloat(rows[i].TotalHours)
		rows[i].TotalHours = hours.Round(2).InexactFloat64()
		rows[i].AverageHours = averageOf(hours, rows[i].Records)

		totals.Records += rows[i].Records
		totals.Completed += rows[i].Completed
		totals.AutoCheckedOut += rows[i].AutoCheckedOut
		totalHours = totalHours.Add(hours)
	}
	totals.TotalHours = totalHours.Round(2).InexactFloat64()
	totals.AverageHours = averageOf(totalHours, totals.Records)

	if rows == nil {
		rows = []report.AttendanceSummaryRow{}
	}

	return report.AttendanceSummaryReport{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		GroupBy:     req.GroupBy,
		GeneratedAt: s.clock.Now().In(s.loc).Format(time.RFC3339),
		Rows:        rows,
		Totals:      totals,
	}, nil
}

// LeaveStatistics implements report.ReportService.
// A zero year means the current year in the office timezone.
func (s *ReportServiceImpl) LeaveStatistics(ctx context.Context, actor user.Actor, req report.LeaveStatisticsRequest) (report.LeaveStatistics, error) {
	currentYear := s.clock.Now().In(s.loc).Year()
	if req.Year == 0 {
		req.Year = currentYear
	}
	if err := req.Validate(currentYear); err != nil {
		return report.LeaveStatistics{}, err
	}
	return s.leaveStatistics(ctx, report.ScopeFor(actor), req.Year)
}

// Dashboard implements report.ReportService.
func (s *ReportServiceImpl) Dashboard(ctx context.Context, actor user.Actor) (report.DashboardResponse, error) {
	now := s.clock.Now().In(s.loc)
	scope := report.ScopeFor(actor)

	var (
		today    report.TodayAttendance
		pending  int
		leaveAgg report.LeaveStatistics
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.reportRepo.AttendanceForDay(gCtx, scope, attendance.DateKey(now, s.loc))
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		today = stats
		return nil
	})

	g.Go(func() error {
		count, err := s.reportRepo.CountPendingApprovals(gCtx, actor.UserID)
		if err != nil {
			return fmt.Errorf("failed to count pending approvals: %w", err)
		}
		pending = count
		return nil
	})

	g.Go(func() error {
		stats, err := s.leaveStatistics(gCtx, scope, now.Year())
		if err != nil {
			return err
		}
		leaveAgg = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return report.DashboardResponse{}, err
	}

	return report.DashboardResponse{
		AttendanceToday:  today,
		PendingApprovals: pending,
		LeaveStatistics:  leaveAgg,
		GeneratedAt:      now.Format(time.RFC3339),
	}, nil
}

// ExportAttendanceXLSX implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendanceXLSX(ctx context.Context, actor user.Actor, dateRange attendance.DateRange) ([]byte, error) {
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}

	scope := report.ScopeFor(actor)
	records, total, err := s.attendanceRepo.List(ctx, attendance.AttendanceFilter{
		UserID:       scope.UserID,
		DepartmentID: scope.DepartmentID,
		StartDate:    &dateRange.StartDate,
		EndDate:      &dateRange.EndDate,
		// total still counts every match, so an oversized range is caught below
		Page:  1,
		Limit: s.maxExportRows,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances for export: %w", err)
	}
	if total > int64(s.maxExportRows) {
		return nil, report.ErrExportTooLarge
	}

	data, err := renderAttendanceSheet(records, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrReportGeneration, err)
	}

	slog.Info("Attendance export generated",
		"actor_id", actor.UserID,
		"start_date", dateRange.StartDate,
		"end_date", dateRange.EndDate,
		"rows", len(records),
	)

	return data, nil
}

func (s *ReportServiceImpl) leaveStatistics(ctx context.Context, scope report.Scope, year int) (report.LeaveStatistics, error) {
	rows, err := s.reportRepo.LeaveCounts(ctx, scope, year)
	if err != nil {
		return report.LeaveStatistics{}, fmt.Errorf("failed to get leave counts: %w", err)
	}

	stats := report.LeaveStatistics{
		Year:     year,
		ByStatus: map[string]int{},
		ByType:   map[string]int{},
	}
	days := decimal.Zero
	for _, row := range rows {
		stats.TotalRequests += row.Count
		stats.ByStatus[row.Status] += row.Count
		stats.ByType[row.LeaveType] += row.Count
		days = days.Add(decimal.NewFromFloat(row.Days))
	}
	stats.TotalDays = days.Round(2).InexactFloat64()
	stats.AverageDays = averageOf(days, stats.TotalRequests)

	return stats, nil
}

// averageOf divides total by count, rounded to 2 decimals. Zero when count is zero.
func averageOf(total decimal.Decimal, count int) float64 {
	if count == 0 {
		return 0
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2).InexactFloat64()
}
