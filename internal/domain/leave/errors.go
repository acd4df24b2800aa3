package leave

import "errors"

var (
	ErrLeaveNotFound            = errors.New("leave request not found")
	ErrForbidden                = errors.New("you are not allowed to perform this action on this leave request")
	ErrNoPendingApprovalForUser = errors.New("no pending approval found for this user")
	ErrNotYourTurn              = errors.New("an earlier approval step is still pending")
	ErrLeaveAlreadyProcessed    = errors.New("leave request already processed")
	ErrCannotCancel             = errors.New("only pending leave requests can be cancelled")
	ErrCannotWithdraw           = errors.New("only approved leave requests can be withdrawn")
	ErrLeaveAlreadyStarted      = errors.New("leave has already started")
	ErrInvalidStatusValue       = errors.New("invalid leave status value")
	ErrNoApproverAvailable      = errors.New("no approver is available for this leave request")
	ErrOverlappingLeave         = errors.New("leave request overlaps an existing request")
	ErrInsufficientBalance      = errors.New("insufficient leave balance")
	ErrConcurrentModification   = errors.New("leave request was modified concurrently, please retry")
	ErrWorkflowChangeRequired   = errors.New("this change needs a different set of approvers, cancel and submit a new request")
)
