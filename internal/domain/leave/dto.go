package leave

import (
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	LeaveType        LeaveType `json:"leave_type"`
	StartDate        string    `json:"start_date"` // YYYY-MM-DD
	EndDate          string    `json:"end_date"`   // YYYY-MM-DD
	Reason           string    `json:"reason"`
	Priority         Priority  `json:"priority"`
	HandoverTo       *string   `json:"handover_to,omitempty"`
	EmergencyContact *string   `json:"emergency_contact,omitempty"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(string(r.LeaveType), ValidLeaveTypes) {
		errs.Add("leave_type", "leave_type is not a supported leave type")
	}

	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if !validator.IsInSlice(string(r.Priority), ValidPriorities) {
		errs.Add("priority", "priority must be one of: low, medium, high, urgent")
	}

	validateDates(&errs, r.StartDate, r.EndDate)

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

// Dates returns the parsed start and end. Call after Validate.
func (r *CreateLeaveRequest) Dates() (time.Time, time.Time) {
	start, _ := time.Parse(DateLayout, r.StartDate)
	end, _ := time.Parse(DateLayout, r.EndDate)
	return start, end
}

// UpdateLeaveRequest is a partial update. Dates, type and priority may only
// change while the request is pending.
type UpdateLeaveRequest struct {
	LeaveType        *LeaveType `json:"leave_type,omitempty"`
	StartDate        *string    `json:"start_date,omitempty"`
	EndDate          *string    `json:"end_date,omitempty"`
	Reason           *string    `json:"reason,omitempty"`
	Priority         *Priority  `json:"priority,omitempty"`
	HandoverTo       *string    `json:"handover_to,omitempty"`
	EmergencyContact *string    `json:"emergency_contact,omitempty"`
}

func (r *UpdateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LeaveType != nil && !validator.IsInSlice(string(*r.LeaveType), ValidLeaveTypes) {
		errs.Add("leave_type", "leave_type is not a supported leave type")
	}
	if r.Priority != nil && !validator.IsInSlice(string(*r.Priority), ValidPriorities) {
		errs.Add("priority", "priority must be one of: low, medium, high, urgent")
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if r.Reason != nil {
		if validator.IsEmpty(*r.Reason) {
			errs.Add("reason", "reason must not be empty")
		}
		if len(*r.Reason) > 1000 {
			errs.Add("reason", "reason must not exceed 1000 characters")
		}
	}

	return errs.Err()
}

// ChangesSchedule reports whether the patch touches fields that are frozen once decided.
func (r *UpdateLeaveRequest) ChangesSchedule() bool {
	return r.LeaveType != nil || r.StartDate != nil || r.EndDate != nil || r.Priority != nil
}

type DecisionRequest struct {
	Comments *string `json:"comments,omitempty"`
}

type RejectRequest struct {
	Comments string `json:"comments"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Comments) {
		errs.Add("comments", "comments are required when rejecting")
	}
	return errs.Err()
}

type LeaveFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Status       *string `json:"status,omitempty"`
	LeaveType    *string `json:"leave_type,omitempty"`
	Year         *int    `json:"year,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveFilter) Validate() error {
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
	if f.Status != nil && !validator.IsInSlice(*f.Status, ValidStatuses) {
		errs.Add("status", "status must be one of: pending, approved, rejected, cancelled, withdrawn")
	}
	if f.LeaveType != nil && !validator.IsInSlice(*f.LeaveType, ValidLeaveTypes) {
		errs.Add("leave_type", "leave_type is not a supported leave type")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employee_id"`
	EmployeeName         *string    `json:"employee_name,omitempty"`
	DepartmentID         string     `json:"department_id"`
	DepartmentName       *string    `json:"department_name,omitempty"`
	LeaveType            LeaveType  `json:"leave_type"`
	StartDate            string     `json:"start_date"`
	EndDate              string     `json:"end_date"`
	TotalDays            float64    `json:"total_days"`
	Reason               string     `json:"reason"`
	Status               Status     `json:"status"`
	Priority             Priority   `json:"priority"`
	ApprovalWorkflow     Workflow   `json:"approval_workflow"`
	CurrentApprovalLevel int        `json:"current_approval_level"`
	FinalApproverID      *string    `json:"final_approver_id,omitempty"`
	FinalApprovalDate    *time.Time `json:"final_approval_date,omitempty"`
	FinalComments        *string    `json:"final_comments,omitempty"`
	SubmissionDate       time.Time  `json:"submission_date"`
	HandoverTo           *string    `json:"handover_to,omitempty"`
	EmergencyContact     *string    `json:"emergency_contact,omitempty"`
	Version              int        `json:"version"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:                   r.ID,
		EmployeeID:           r.EmployeeID,
		EmployeeName:         r.EmployeeName,
		DepartmentID:         r.DepartmentID,
		DepartmentName:       r.DepartmentName,
		LeaveType:            r.LeaveType,
		StartDate:            r.StartDate.Format(DateLayout),
		EndDate:              r.EndDate.Format(DateLayout),
		TotalDays:            r.TotalDays,
		Reason:               r.Reason,
		Status:               r.Status,
		Priority:             r.Priority,
		ApprovalWorkflow:     r.ApprovalWorkflow,
		CurrentApprovalLevel: r.CurrentApprovalLevel,
		FinalApproverID:      r.FinalApproverID,
		FinalApprovalDate:    r.FinalApprovalDate,
		FinalComments:        r.FinalComments,
		SubmissionDate:       r.SubmissionDate,
		HandoverTo:           r.HandoverTo,
		EmergencyContact:     r.EmergencyContact,
		Version:              r.Version,
	}
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	Showing       string                 `json:"showing"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}

type BalanceResponse struct {
	EmployeeID string         `json:"employee_id"`
	Year       int            `json:"year"`
	Balances   []LeaveBalance `json:"balances"`
}

func validateDates(errs *validator.ValidationErrors, startDate, endDate string) {
	start, startOK := validator.IsValidDate(startDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(endDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must be on or after start_date")
	}
}
