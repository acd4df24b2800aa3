package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	// Create stores a new request with version 1.
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	// GetByID returns ErrLeaveNotFound when absent.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)

	// ListPendingForApprover returns pending requests holding a pending step for approverID.
	ListPendingForApprover(ctx context.Context, approverID string) ([]LeaveRequest, error)

	// UpdateWithVersion writes request only if the stored version still equals
	// request.Version, and returns the row with the bumped version.
	// ErrConcurrentModification when the row moved on.
	UpdateWithVersion(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	// HasOverlap reports whether the employee has a pending or approved request
	// intersecting [start, end]. excludeID skips the request being edited.
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)

	// SumDaysByType totals days per type and status for requests starting in year.
	SumDaysByType(ctx context.Context, employeeID string, year int) ([]TypeUsage, error)
}
