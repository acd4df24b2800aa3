package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)

	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
	PendingApprovals(w http.ResponseWriter, r *http.Request)

	Balance(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

// Submit implements LeaveHandler.
func (l *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := l.leaveService.Submit(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

// List implements LeaveHandler.
func (l *LeaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	query := r.URL.Query()
	filter := leave.LeaveFilter{}

	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if departmentID := query.Get("department_id"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if leaveType := query.Get("leave_type"); leaveType != "" {
		filter.LeaveType = &leaveType
	}
	if y := query.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
		filter.Year = &year
	}

	// Pagination
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			filter.Page = pageNum
		}
	}
	if lim := query.Get("limit"); lim != "" {
		if limitNum, err := strconv.Atoi(lim); err == nil && limitNum > 0 {
			filter.Limit = limitNum
		}
	}

	results, err := l.leaveService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.LeaveRequests, &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: results.TotalPages,
		Showing:    results.Showing,
	})
}

// Get implements LeaveHandler.
func (l *LeaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	leaveID, ok := pathID(w, r, "id", "leave request ID")
	if !ok {
		return
	}

	result, err := l.leaveService.Get(r.Context(), leaveID, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements LeaveHandler.
func (l *LeaveHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.UpdateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	leaveID, ok := pathID(w, r, "id", "leave request ID")
	if !ok {
		return
	}

	result, err := l.leaveService.Update(r.Context(), leaveID, req, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request updated", result)
}

// Approve implements LeaveHandler. The body is optional.
func (l *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Approve leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	leaveID, ok := pathID(w, r, "id", "leave request ID")
	if !ok {
		return
	}

	result, err := l.leaveService.Approve(r.Context(), leaveID, actor, req.Comments)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", result)
}

// Reject implements LeaveHandler.
func (l *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Reject leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	leaveID, ok := pathID(w, r, "id", "leave request ID")
	if !ok {
		return
	}

	result, err := l.leaveService.Reject(r.Context(), leaveID, actor, &req.Comments)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

// Cancel implements LeaveHandler.
func (l *LeaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	leaveID, ok := pathID(w, r, "id", "leave request ID")
	if !ok {
		return
	}

	result, err := l.leaveService.Cancel(r.Context(), leaveID, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled", result)
}

// Withdraw implements LeaveHandler.
func (l *LeaveHandlerImpl) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	leaveID, ok := pathID(w, r, "id", "leave request ID")
	if !ok {
		return
	}

	result, err := l.leaveService.Withdraw(r.Context(), leaveID, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request withdrawn", result)
}

// PendingApprovals implements LeaveHandler.
func (l *LeaveHandlerImpl) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := l.leaveService.ListPendingApprovals(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Balance implements LeaveHandler. Approvers may read any employee's balance.
func (l *LeaveHandlerImpl) Balance(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := actor.UserID
	if chi.URLParam(r, "employeeID") != "" {
		id, ok := pathID(w, r, "employeeID", "employee ID")
		if !ok {
			return
		}
		employeeID = id
	}
	if employeeID != actor.UserID && !user.HasPermission(actor.Role, user.PermissionLeaveApprove) {
		response.Forbidden(w, "You cannot view this employee's leave balance")
		return
	}

	// zero lets the service pick the current office year
	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		year, err = strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "year must be a number", nil)
			return
		}
	}

	result, err := l.leaveService.GetBalance(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
