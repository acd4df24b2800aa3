package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
)

// RequiresManager reports whether a manager must sign off.
func RequiresManager(totalDays float64, leaveType LeaveType) bool {
	switch leaveType {
	case LeaveTypeMaternity, LeaveTypePaternity, LeaveTypeStudy:
		return true
	}
	return totalDays > 5
}

// RequiresAdmin reports whether an admin must sign off.
func RequiresAdmin(totalDays float64, leaveType LeaveType, priority Priority) bool {
	switch leaveType {
	case LeaveTypeUnpaid, LeaveTypeStudy:
		return true
	}
	return totalDays > 10 || priority == PriorityUrgent
}

// SameApprovalLevels reports whether two versions of a request need the same
// manager and admin sign-offs. The department head level depends only on the
// requester and cannot change.
func SameApprovalLevels(a, b LeaveRequest) bool {
	return RequiresManager(a.TotalDays, a.LeaveType) == RequiresManager(b.TotalDays, b.LeaveType) &&
		RequiresAdmin(a.TotalDays, a.LeaveType, a.Priority) == RequiresAdmin(b.TotalDays, b.LeaveType, b.Priority)
}

// BuildWorkflow assembles the approval chain for a new request: department head,
// then manager, then admin, each only when the request needs it. Approvers that
// cannot be resolved, or that resolve to the requester, are left out.
func BuildWorkflow(ctx context.Context, req LeaveRequest, requester employee.Employee, dir employee.Directory) (Workflow, error) {
	type level struct {
		role       user.Role
		department *string
	}

	var levels []level
	if requester.Role != user.RoleDepartmentHead {
		department := requester.DepartmentID
		levels = append(levels, level{role: user.RoleDepartmentHead, department: &department})
	}
	if RequiresManager(req.TotalDays, req.LeaveType) {
		levels = append(levels, level{role: user.RoleManager})
	}
	if RequiresAdmin(req.TotalDays, req.LeaveType, req.Priority) {
		levels = append(levels, level{role: user.RoleAdmin})
	}

	workflow := Workflow{}
	for _, l := range levels {
		approver, err := dir.FindActiveByRoleAndDepartment(ctx, l.role, l.department)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("No approver found, skipping workflow step",
				"role", l.role,
				"employee_id", requester.ID,
				"department_id", requester.DepartmentID,
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %s approver: %w", l.role, err)
		}
		if approver.ID == requester.ID {
			slog.Warn("Requester cannot approve own leave, skipping workflow step",
				"role", l.role,
				"employee_id", requester.ID,
			)
			continue
		}

		workflow = append(workflow, ApprovalStep{
			ApproverID:   approver.ID,
			ApproverName: approver.FullName,
			ApproverRole: l.role,
			Status:       StepPending,
			Order:        len(workflow) + 1,
		})
	}

	return workflow, nil
}
