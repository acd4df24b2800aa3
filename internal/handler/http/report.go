package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler defines the interface for report HTTP handlers
type ReportHandler interface {
	AttendanceSummary(w http.ResponseWriter, r *http.Request)
	LeaveStatistics(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	ExportAttendance(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// AttendanceSummary handles GET /reports/attendance
func (h *reportHandlerImpl) AttendanceSummary(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	query := r.URL.Query()
	req := report.AttendanceSummaryRequest{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		GroupBy:   report.GroupBy(query.Get("group_by")),
	}

	result, err := h.reportService.AttendanceSummary(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// LeaveStatistics handles GET /reports/leave
func (h *reportHandlerImpl) LeaveStatistics(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		year, err = strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
	}

	result, err := h.reportService.LeaveStatistics(r.Context(), actor, report.LeaveStatisticsRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Dashboard handles GET /reports/dashboard
func (h *reportHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.Dashboard(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportAttendance handles GET /reports/attendance/export
func (h *reportHandlerImpl) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	dateRange := attendance.DateRange{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	content, err := h.reportService.ExportAttendanceXLSX(r.Context(), actor, dateRange)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", dateRange.StartDate, dateRange.EndDate)
	response.Attachment(w, xlsxContentType, filename, content)
}
