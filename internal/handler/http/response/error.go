package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Geofence failures carry the measured distance in their message
	var outOfRange *attendance.OutOfRangeError
	if errors.As(err, &outOfRange) {
		BadRequest(w, outOfRange.Error(), nil)
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, user.ErrActorMissing), errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is inactive")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrWeekendNotAllowed),
		errors.Is(err, attendance.ErrOutsideWindow),
		errors.Is(err, attendance.ErrLocationRequired),
		errors.Is(err, attendance.ErrInvalidStatusValue):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrDuplicateCheckIn):
		Conflict(w, "You have already checked in today")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Attendance already checked out")
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, "You are not allowed to modify this attendance record")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrForbidden), errors.Is(err, leave.ErrNoPendingApprovalForUser):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrLeaveAlreadyProcessed),
		errors.Is(err, leave.ErrNotYourTurn),
		errors.Is(err, leave.ErrCannotCancel),
		errors.Is(err, leave.ErrCannotWithdraw),
		errors.Is(err, leave.ErrLeaveAlreadyStarted),
		errors.Is(err, leave.ErrOverlappingLeave),
		errors.Is(err, leave.ErrConcurrentModification),
		errors.Is(err, leave.ErrWorkflowChangeRequired):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrNoApproverAvailable),
		errors.Is(err, leave.ErrInvalidStatusValue):
		BadRequest(w, err.Error(), nil)

	// Report domain errors
	case errors.Is(err, report.ErrExportTooLarge), errors.Is(err, report.ErrInvalidGroupBy):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
