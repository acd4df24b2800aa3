package leave

import (
	"context"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
)

type LeaveService interface {
	Submit(ctx context.Context, actor user.Actor, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, leaveID string, actor user.Actor, comments *string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, leaveID string, actor user.Actor, comments *string) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, leaveID string, actor user.Actor) (LeaveRequestResponse, error)
	Withdraw(ctx context.Context, leaveID string, actor user.Actor) (LeaveRequestResponse, error)
	Update(ctx context.Context, leaveID string, patch UpdateLeaveRequest, actor user.Actor) (LeaveRequestResponse, error)

	Get(ctx context.Context, leaveID string, actor user.Actor) (LeaveRequestResponse, error)
	List(ctx context.Context, actor user.Actor, filter LeaveFilter) (ListLeaveRequestResponse, error)
	ListPendingApprovals(ctx context.Context, actor user.Actor) ([]LeaveRequestResponse, error)
	GetBalance(ctx context.Context, employeeID string, year int) (BalanceResponse, error)
}
