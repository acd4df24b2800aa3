package attendance

import (
	"context"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn applies the weekday, office-hours, duplicate and geofence rules in that order.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes an open record. Only the owner, a manager or an admin may close it.
	CheckOut(ctx context.Context, id string, actor user.Actor) (AttendanceResponse, error)

	GetByUser(ctx context.Context, userID string, filter AttendanceFilter) (ListAttendanceResponse, error)

	// AuthorizeUserView checks that actor may read userID's records. Department heads
	// are limited to employees of their own department.
	AuthorizeUserView(ctx context.Context, actor user.Actor, userID string) error

	GetByDepartment(ctx context.Context, departmentID string, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetReport(ctx context.Context, dateRange DateRange, departmentID *string) ([]AttendanceResponse, error)
	GetUserAttendance(ctx context.Context, userID string, dateRange *DateRange) ([]AttendanceResponse, error)

	// GetToday reports the caller's record for the current office day, if any.
	GetToday(ctx context.Context, userID string) (TodayResponse, error)

	// DeleteAttendance hard-deletes a record. Only admins and managers may delete.
	DeleteAttendance(ctx context.Context, id string, requesterRole user.Role) error

	// AutoCheckout closes every record still open at the daily cutoff.
	AutoCheckout(ctx context.Context) (AutoCheckoutResult, error)
}
