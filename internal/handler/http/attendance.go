package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	GetMyHistory(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetByUser(w http.ResponseWriter, r *http.Request)
	GetByDepartment(w http.ResponseWriter, r *http.Request)
	GetReport(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	AutoCheckout(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode check-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = actor.UserID
	if req.DepartmentID == "" {
		req.DepartmentID = actor.DepartmentID
	}

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	attendanceID, ok := pathID(w, r, "id", "attendance ID")
	if !ok {
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), attendanceID, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.attendanceService.GetByUser(r.Context(), actor.UserID, attendanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeAttendancePage(w, results)
}

// GetMyHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var dateRange *attendance.DateRange
	startDate, endDate := r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date")
	if startDate != "" || endDate != "" {
		dateRange = &attendance.DateRange{StartDate: startDate, EndDate: endDate}
	}

	results, err := h.attendanceService.GetUserAttendance(r.Context(), actor.UserID, dateRange)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetByUser implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetByUser(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	userID, ok := pathID(w, r, "userID", "user ID")
	if !ok {
		return
	}
	if err := h.attendanceService.AuthorizeUserView(r.Context(), actor, userID); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.attendanceService.GetByUser(r.Context(), userID, attendanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeAttendancePage(w, results)
}

// GetByDepartment implements AttendanceHandler. Department heads only see their own department.
func (h *attendanceHandlerImpl) GetByDepartment(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	departmentID, ok := pathID(w, r, "departmentID", "department ID")
	if !ok {
		return
	}
	if actor.Role == user.RoleDepartmentHead && departmentID != actor.DepartmentID {
		response.HandleError(w, attendance.ErrForbidden)
		return
	}

	results, err := h.attendanceService.GetByDepartment(r.Context(), departmentID, attendanceFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeAttendancePage(w, results)
}

// GetReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetReport(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	dateRange := attendance.DateRange{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	var departmentID *string
	if d := r.URL.Query().Get("department_id"); d != "" {
		departmentID = &d
	}
	if actor.Role == user.RoleDepartmentHead {
		departmentID = &actor.DepartmentID
	}

	results, err := h.attendanceService.GetReport(r.Context(), dateRange, departmentID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	attendanceID, ok := pathID(w, r, "id", "attendance ID")
	if !ok {
		return
	}

	if err := h.attendanceService.DeleteAttendance(r.Context(), attendanceID, actor.Role); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance deleted successfully", nil)
}

// AutoCheckout implements AttendanceHandler.
func (h *attendanceHandlerImpl) AutoCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.AutoCheckout(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Auto checkout completed", result)
}

func writeAttendancePage(w http.ResponseWriter, page attendance.ListAttendanceResponse) {
	response.SuccessWithMeta(w, page.Attendances, &response.Meta{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: page.TotalCount,
		TotalPages: page.TotalPages,
		Showing:    page.Showing,
	})
}

func attendanceFilterFromQuery(r *http.Request) attendance.AttendanceFilter {
	query := r.URL.Query()
	filter := attendance.AttendanceFilter{}

	// Date range filters
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	// Status filter
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	// Pagination
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			filter.Page = pageNum
		}
	}
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			filter.Limit = limitNum
		}
	}

	return filter
}
