package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a record. A second record for the same user and LocalDateKey
	// fails with ErrDuplicateCheckIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns ErrRecordNotFound when absent.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByUserAndDateKey returns nil when the user has no record for the day.
	GetByUserAndDateKey(ctx context.Context, userID string, dateKey string) (*Attendance, error)

	// CloseSession sets the check-out fields only if the record is still open.
	// Returns ErrAlreadyCheckedOut when another writer closed it first.
	CloseSession(ctx context.Context, id string, checkOut time.Time, workHours float64, status Status) (Attendance, error)

	// ListOpenByDateKeys returns records without a check-out for any of the given days.
	ListOpenByDateKeys(ctx context.Context, dateKeys []string) ([]Attendance, error)

	// List returns matching records sorted by date descending. Limit 0 disables paging.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// Delete hard-deletes a record. Returns ErrRecordNotFound when absent.
	Delete(ctx context.Context, id string) error
}
