package attendance

import (
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	UserID       string   `json:"-"`
	DepartmentID string   `json:"department_id,omitempty"`
	WorkMode     WorkMode `json:"work_mode"`
	Notes        string   `json:"notes,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationName *string  `json:"location_name,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	}

	if !validator.IsInSlice(string(r.WorkMode), ValidWorkModes) {
		errs.Add("work_mode", "work_mode must be one of: in-house, remote")
	}

	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}

	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}

	if len(r.Notes) > 500 {
		errs.Add("notes", "notes must not exceed 500 characters")
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	EmployeeName   *string  `json:"employee_name,omitempty"`
	DepartmentID   string   `json:"department_id"`
	DepartmentName *string  `json:"department_name,omitempty"`
	Date           string   `json:"date"`
	CheckInTime    string   `json:"check_in_time"`
	CheckOutTime   *string  `json:"check_out_time,omitempty"`
	WorkHours      *float64 `json:"work_hours,omitempty"`
	WorkMode       WorkMode `json:"work_mode"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	LocationName   *string  `json:"location_name,omitempty"`
	Status         Status   `json:"status"`
	Notes          string   `json:"notes,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// NewAttendanceResponse renders a record with timestamps in loc.
func NewAttendanceResponse(a Attendance, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		EmployeeName:   a.EmployeeName,
		DepartmentID:   a.DepartmentID,
		DepartmentName: a.DepartmentName,
		Date:           a.LocalDateKey,
		CheckInTime:    a.CheckInTime.In(loc).Format(time.RFC3339),
		WorkHours:      a.WorkHours,
		WorkMode:       a.WorkMode,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		LocationName:   a.LocationName,
		Status:         a.Status,
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.In(loc).Format(time.RFC3339),
	}
	if a.CheckOutTime != nil {
		out := a.CheckOutTime.In(loc).Format(time.RFC3339)
		resp.CheckOutTime = &out
	}
	return resp
}

type AttendanceFilter struct {
	UserID       *string `json:"user_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status       *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.Status != nil {
		if !validator.IsInSlice(*f.Status, []string{string(StatusPresent), string(StatusAutoCheckedOut)}) {
			errs.Add("status", "status must be one of: present, auto_checked_out")
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

// DateRange is an inclusive span of office calendar days.
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

func (d DateRange) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(d.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(d.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must be on or after start_date")
	}

	return errs.Err()
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type TodayResponse struct {
	Date       string              `json:"date"`
	CheckedIn  bool                `json:"checked_in"`
	CheckedOut bool                `json:"checked_out"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

type AutoCheckoutResult struct {
	ProcessedCount int `json:"processed_count"`
	TotalFound     int `json:"total_found"`
}
