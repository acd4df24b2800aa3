package leave

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
)

// DateLayout is the wire and storage layout of leave start and end dates.
const DateLayout = "2006-01-02"

type LeaveType string

const (
	LeaveTypeAnnual        LeaveType = "annual"
	LeaveTypeSick          LeaveType = "sick"
	LeaveTypeMaternity     LeaveType = "maternity"
	LeaveTypePaternity     LeaveType = "paternity"
	LeaveTypeEmergency     LeaveType = "emergency"
	LeaveTypeStudy         LeaveType = "study"
	LeaveTypeCompassionate LeaveType = "compassionate"
	LeaveTypeUnpaid        LeaveType = "unpaid"
	LeaveTypeOther         LeaveType = "other"
)

var ValidLeaveTypes = []string{
	string(LeaveTypeAnnual), string(LeaveTypeSick), string(LeaveTypeMaternity),
	string(LeaveTypePaternity), string(LeaveTypeEmergency), string(LeaveTypeStudy),
	string(LeaveTypeCompassionate), string(LeaveTypeUnpaid), string(LeaveTypeOther),
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusWithdrawn Status = "withdrawn"
)

var ValidStatuses = []string{
	string(StatusPending), string(StatusApproved), string(StatusRejected),
	string(StatusCancelled), string(StatusWithdrawn),
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var ValidPriorities = []string{
	string(PriorityLow), string(PriorityMedium), string(PriorityHigh), string(PriorityUrgent),
}

type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
)

// ApprovalStep is one required sign-off. Order is 1-based.
type ApprovalStep struct {
	ApproverID   string     `json:"approver_id"`
	ApproverName string     `json:"approver_name"`
	ApproverRole user.Role  `json:"approver_role"`
	Status       StepStatus `json:"status"`
	Comments     *string    `json:"comments,omitempty"`
	ActionDate   *time.Time `json:"action_date,omitempty"`
	Order        int        `json:"order"`
}

// Workflow is the ordered approval chain, stored as JSONB.
type Workflow []ApprovalStep

// Value implements driver.Valuer for database storage
func (w Workflow) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner for database retrieval
func (w *Workflow) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*w = Workflow{}
		return nil
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return errors.New("failed to scan Workflow: invalid type")
	}
}

// LeaveRequest entity
type LeaveRequest struct {
	ID           string
	EmployeeID   string
	DepartmentID string
	LeaveType    LeaveType

	StartDate time.Time
	EndDate   time.Time
	TotalDays float64

	Reason   string
	Status   Status
	Priority Priority

	ApprovalWorkflow     Workflow
	CurrentApprovalLevel int

	FinalApproverID   *string
	FinalApprovalDate *time.Time
	FinalComments     *string

	SubmissionDate   time.Time
	HandoverTo       *string
	EmergencyContact *string

	// Version is bumped on every write and checked by the next one.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName   *string
	DepartmentName *string
}

// CalculateTotalDays counts the days from start to end inclusive, never less than half a day.
func CalculateTotalDays(start, end time.Time) float64 {
	days := math.Ceil(end.Sub(start).Hours()/24) + 1
	if days < 0.5 {
		return 0.5
	}
	return days
}

// CurrentStep returns the pending step with the lowest order, or nil when none is pending.
func (r *LeaveRequest) CurrentStep() *ApprovalStep {
	var current *ApprovalStep
	for i := range r.ApprovalWorkflow {
		step := &r.ApprovalWorkflow[i]
		if step.Status != StepPending {
			continue
		}
		if current == nil || step.Order < current.Order {
			current = step
		}
	}
	return current
}

// PendingStepFor returns the pending step assigned to userID, or nil.
func (r *LeaveRequest) PendingStepFor(userID string) *ApprovalStep {
	for i := range r.ApprovalWorkflow {
		step := &r.ApprovalWorkflow[i]
		if step.ApproverID == userID && step.Status == StepPending {
			return step
		}
	}
	return nil
}

// IsApprover reports whether userID appears anywhere in the workflow.
func (r *LeaveRequest) IsApprover(userID string) bool {
	for _, step := range r.ApprovalWorkflow {
		if step.ApproverID == userID {
			return true
		}
	}
	return false
}

func (r *LeaveRequest) CanBeViewedBy(userID string, role user.Role, departmentID string) bool {
	switch {
	case role == user.RoleAdmin, role == user.RoleManager:
		return true
	case r.EmployeeID == userID:
		return true
	case role == user.RoleDepartmentHead && departmentID != "" && departmentID == r.DepartmentID:
		return true
	}
	return r.IsApprover(userID)
}

func (r *LeaveRequest) CanBeEditedBy(userID string, role user.Role) bool {
	if role == user.RoleAdmin {
		return true
	}
	if r.EmployeeID == userID && r.Status == StatusPending {
		return true
	}
	return role == user.RoleManager && r.PendingStepFor(userID) != nil
}

// Approve resolves the approver's step. The request is finalized once no step is left pending.
func (r *LeaveRequest) Approve(approverID string, comments *string, at time.Time) error {
	step, err := r.decidableStep(approverID)
	if err != nil {
		return err
	}

	step.Status = StepApproved
	step.Comments = comments
	step.ActionDate = &at

	if r.CurrentStep() != nil {
		r.CurrentApprovalLevel++
		return nil
	}

	r.finalize(StatusApproved, approverID, comments, at)
	return nil
}

// Reject resolves the approver's step and finalizes the request immediately,
// leaving later steps untouched.
func (r *LeaveRequest) Reject(approverID string, comments *string, at time.Time) error {
	step, err := r.decidableStep(approverID)
	if err != nil {
		return err
	}

	step.Status = StepRejected
	step.Comments = comments
	step.ActionDate = &at

	r.finalize(StatusRejected, approverID, comments, at)
	return nil
}

// Cancel is open to the requester and to admins while the request is still pending.
func (r *LeaveRequest) Cancel(actor user.Actor) error {
	if actor.UserID != r.EmployeeID && !actor.IsAdmin() {
		return ErrForbidden
	}
	if r.Status != StatusPending {
		return ErrCannotCancel
	}
	r.Status = StatusCancelled
	return nil
}

// Withdraw takes back an approved leave before it starts. today is the office calendar date.
func (r *LeaveRequest) Withdraw(actor user.Actor, today time.Time) error {
	if actor.UserID != r.EmployeeID {
		return ErrForbidden
	}
	if r.Status != StatusApproved {
		return ErrCannotWithdraw
	}
	if !r.StartDate.After(today) {
		return ErrLeaveAlreadyStarted
	}
	r.Status = StatusWithdrawn
	return nil
}

func (r *LeaveRequest) decidableStep(approverID string) (*ApprovalStep, error) {
	if r.Status != StatusPending {
		return nil, ErrLeaveAlreadyProcessed
	}
	step := r.PendingStepFor(approverID)
	if step == nil {
		return nil, ErrNoPendingApprovalForUser
	}
	if current := r.CurrentStep(); current != nil && current.Order != step.Order {
		return nil, ErrNotYourTurn
	}
	return step, nil
}

func (r *LeaveRequest) finalize(status Status, approverID string, comments *string, at time.Time) {
	r.Status = status
	r.FinalApproverID = &approverID
	r.FinalApprovalDate = &at
	r.FinalComments = comments
}

// LeaveBalance is derived from entitlements and the year's requests.
type LeaveBalance struct {
	LeaveType        LeaveType `json:"leave_type"`
	Year             int       `json:"year"`
	TotalEntitlement *float64  `json:"total_entitlement,omitempty"`
	TotalUsed        float64   `json:"total_used"`
	Pending          float64   `json:"pending"`
	Remaining        *float64  `json:"remaining,omitempty"`
}

// TypeUsage is the summed days per leave type and status for one employee and year.
type TypeUsage struct {
	LeaveType LeaveType
	Status    Status
	Days      float64
}
