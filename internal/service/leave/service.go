package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Transactor runs fn inside a database transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.Directory
	transactor   Transactor
	emailService email.EmailService
	clock        clock.Clock
	loc          *time.Location
	entitlements map[string]float64
	frontendURL  string

	notifications sync.WaitGroup
}

func NewLeaveService(
	leaveRequestRepo leave.LeaveRequestRepository,
	directory employee.Directory,
	transactor Transactor,
	emailService email.EmailService,
	clk clock.Clock,
	office config.OfficeConfig,
	leaveCfg config.LeaveConfig,
	frontendURL string,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepo,
		Directory:              directory,
		transactor:             transactor,
		emailService:           emailService,
		clock:                  clk,
		loc:                    office.Location(),
		entitlements:           leaveCfg.Entitlements,
		frontendURL:            frontendURL,
	}
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	requester, err := s.requester(ctx, actor.UserID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, end := req.Dates()
	request := leave.LeaveRequest{
		EmployeeID:       requester.ID,
		DepartmentID:     requester.DepartmentID,
		LeaveType:        req.LeaveType,
		StartDate:        start,
		EndDate:          end,
		TotalDays:        leave.CalculateTotalDays(start, end),
		Reason:           req.Reason,
		Status:           leave.StatusPending,
		Priority:         req.Priority,
		SubmissionDate:   s.clock.Now(),
		HandoverTo:       req.HandoverTo,
		EmergencyContact: req.EmergencyContact,
	}

	workflow, err := leave.BuildWorkflow(ctx, request, requester, s.Directory)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to build approval workflow: %w", err)
	}
	if len(workflow) == 0 {
		return leave.LeaveRequestResponse{}, leave.ErrNoApproverAvailable
	}
	request.ApprovalWorkflow = workflow
	request.CurrentApprovalLevel = 1

	var created leave.LeaveRequest
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkAvailability(ctx, request, nil); err != nil {
			return err
		}

		created, err = s.LeaveRequestRepository.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	created.EmployeeName = &requester.FullName
	created.DepartmentName = requester.DepartmentName

	slog.Info("Leave request submitted",
		"leave_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", created.LeaveType,
		"total_days", created.TotalDays,
		"approvers", len(created.ApprovalWorkflow),
	)

	s.notifyCurrentApprover(ctx, created)

	return leave.NewLeaveRequestResponse(created), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, leaveID string, actor user.Actor, comments *string) (leave.LeaveRequestResponse, error) {
	updated, err := s.mutate(ctx, leaveID, func(_ context.Context, r *leave.LeaveRequest) error {
		return r.Approve(actor.UserID, comments, s.clock.Now())
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request approved",
		"leave_id", updated.ID,
		"approver_id", actor.UserID,
		"status", updated.Status,
		"current_approval_level", updated.CurrentApprovalLevel,
	)

	if updated.Status == leave.StatusApproved {
		s.notifyDecision(ctx, updated)
	} else {
		s.notifyCurrentApprover(ctx, updated)
	}

	return leave.NewLeaveRequestResponse(updated), nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, leaveID string, actor user.Actor, comments *string) (leave.LeaveRequestResponse, error) {
	updated, err := s.mutate(ctx, leaveID, func(_ context.Context, r *leave.LeaveRequest) error {
		return r.Reject(actor.UserID, comments, s.clock.Now())
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request rejected", "leave_id", updated.ID, "approver_id", actor.UserID)
	s.notifyDecision(ctx, updated)

	return leave.NewLeaveRequestResponse(updated), nil
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, leaveID string, actor user.Actor) (leave.LeaveRequestResponse, error) {
	updated, err := s.mutate(ctx, leaveID, func(_ context.Context, r *leave.LeaveRequest) error {
		return r.Cancel(actor)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request cancelled", "leave_id", updated.ID, "actor_id", actor.UserID)
	return leave.NewLeaveRequestResponse(updated), nil
}

// Withdraw implements leave.LeaveService.
func (s *LeaveServiceImpl) Withdraw(ctx context.Context, leaveID string, actor user.Actor) (leave.LeaveRequestResponse, error) {
	updated, err := s.mutate(ctx, leaveID, func(_ context.Context, r *leave.LeaveRequest) error {
		return r.Withdraw(actor, s.today())
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request withdrawn", "leave_id", updated.ID, "employee_id", actor.UserID)
	return leave.NewLeaveRequestResponse(updated), nil
}

// Update implements leave.LeaveService. Schedule changes keep the existing workflow and
// are refused when they would need a different set of approvers.
func (s *LeaveServiceImpl) Update(ctx context.Context, leaveID string, patch leave.UpdateLeaveRequest, actor user.Actor) (leave.LeaveRequestResponse, error) {
	if err := patch.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	updated, err := s.mutate(ctx, leaveID, func(ctx context.Context, r *leave.LeaveRequest) error {
		if !r.CanBeEditedBy(actor.UserID, actor.Role) {
			return leave.ErrForbidden
		}
		if patch.ChangesSchedule() && r.Status != leave.StatusPending {
			return leave.ErrLeaveAlreadyProcessed
		}

		original := *r

		if patch.Reason != nil {
			r.Reason = *patch.Reason
		}
		if patch.HandoverTo != nil {
			r.HandoverTo = patch.HandoverTo
		}
		if patch.EmergencyContact != nil {
			r.EmergencyContact = patch.EmergencyContact
		}
		if !patch.ChangesSchedule() {
			return nil
		}

		if patch.LeaveType != nil {
			r.LeaveType = *patch.LeaveType
		}
		if patch.Priority != nil {
			r.Priority = *patch.Priority
		}
		if patch.StartDate != nil {
			r.StartDate, _ = time.Parse(leave.DateLayout, *patch.StartDate)
		}
		if patch.EndDate != nil {
			r.EndDate, _ = time.Parse(leave.DateLayout, *patch.EndDate)
		}
		if r.EndDate.Before(r.StartDate) {
			var errs validator.ValidationErrors
			errs.Add("end_date", "end_date must be on or after start_date")
			return errs
		}
		r.TotalDays = leave.CalculateTotalDays(r.StartDate, r.EndDate)

		// approvers are fixed at submission
		if !leave.SameApprovalLevels(original, *r) {
			return leave.ErrWorkflowChangeRequired
		}

		return s.checkAvailability(ctx, *r, &original)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request updated", "leave_id", updated.ID, "actor_id", actor.UserID)
	return leave.NewLeaveRequestResponse(updated), nil
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, leaveID string, actor user.Actor) (leave.LeaveRequestResponse, error) {
	request, err := s.LeaveRequestRepository.GetByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	if !request.CanBeViewedBy(actor.UserID, actor.Role, actor.DepartmentID) {
		return leave.LeaveRequestResponse{}, leave.ErrForbidden
	}

	return leave.NewLeaveRequestResponse(request), nil
}

// List implements leave.LeaveService. Staff see their own requests and
// department heads see their department.
func (s *LeaveServiceImpl) List(ctx context.Context, actor user.Actor, filter leave.LeaveFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	switch actor.Role {
	case user.RoleAdmin, user.RoleManager:
	case user.RoleDepartmentHead:
		filter.DepartmentID = &actor.DepartmentID
	default:
		filter.EmployeeID = &actor.UserID
	}

	requests, total, err := s.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewLeaveRequestResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    totalPages,
		Showing:       showing,
		LeaveRequests: responses,
	}, nil
}

// ListPendingApprovals implements leave.LeaveService. Only requests waiting on
// the actor right now are returned.
func (s *LeaveServiceImpl) ListPendingApprovals(ctx context.Context, actor user.Actor) ([]leave.LeaveRequestResponse, error) {
	requests, err := s.LeaveRequestRepository.ListPendingForApprover(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		if current := r.CurrentStep(); current != nil && current.ApproverID == actor.UserID {
			responses = append(responses, leave.NewLeaveRequestResponse(r))
		}
	}
	return responses, nil
}

// GetBalance implements leave.LeaveService. A zero year means the current office year.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, employeeID string, year int) (leave.BalanceResponse, error) {
	if year == 0 {
		year = s.clock.Now().In(s.loc).Year()
	}

	usage, err := s.LeaveRequestRepository.SumDaysByType(ctx, employeeID, year)
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("failed to sum leave usage: %w", err)
	}

	used := map[leave.LeaveType]decimal.Decimal{}
	pending := map[leave.LeaveType]decimal.Decimal{}
	for _, u := range usage {
		switch u.Status {
		case leave.StatusApproved:
			used[u.LeaveType] = used[u.LeaveType].Add(decimal.NewFromFloat(u.Days))
		case leave.StatusPending:
			pending[u.LeaveType] = pending[u.LeaveType].Add(decimal.NewFromFloat(u.Days))
		}
	}

	balances := []leave.LeaveBalance{}
	for _, name := range leave.ValidLeaveTypes {
		leaveType := leave.LeaveType(name)
		entitlement, limited := s.entitlements[name]
		_, hasUsed := used[leaveType]
		_, hasPending := pending[leaveType]
		if !limited && !hasUsed && !hasPending {
			continue
		}

		balance := leave.LeaveBalance{
			LeaveType: leaveType,
			Year:      year,
			TotalUsed: used[leaveType].InexactFloat64(),
			Pending:   pending[leaveType].InexactFloat64(),
		}
		if limited {
			remaining := decimal.NewFromFloat(entitlement).Sub(used[leaveType]).InexactFloat64()
			balance.TotalEntitlement = &entitlement
			balance.Remaining = &remaining
		}
		balances = append(balances, balance)
	}

	return leave.BalanceResponse{EmployeeID: employeeID, Year: year, Balances: balances}, nil
}

// mutate loads the request, applies fn and writes it back with a version check.
// A lost race is retried once against a fresh read.
func (s *LeaveServiceImpl) mutate(ctx context.Context, leaveID string, fn func(ctx context.Context, r *leave.LeaveRequest) error) (leave.LeaveRequest, error) {
	for attempt := 1; ; attempt++ {
		var updated leave.LeaveRequest
		err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			request, err := s.LeaveRequestRepository.GetByID(ctx, leaveID)
			if err != nil {
				if errors.Is(err, leave.ErrLeaveNotFound) {
					return err
				}
				return fmt.Errorf("failed to get leave request: %w", err)
			}

			if err := fn(ctx, &request); err != nil {
				return err
			}

			updated, err = s.LeaveRequestRepository.UpdateWithVersion(ctx, request)
			if err != nil {
				if errors.Is(err, leave.ErrConcurrentModification) {
					return err
				}
				return fmt.Errorf("failed to update leave request: %w", err)
			}
			return nil
		})
		if errors.Is(err, leave.ErrConcurrentModification) && attempt < 2 {
			slog.Warn("Leave request changed concurrently, retrying", "leave_id", leaveID)
			continue
		}
		return updated, err
	}
}

// checkAvailability rejects overlapping requests and requests beyond the yearly
// entitlement. original is the stored version of a request being edited.
func (s *LeaveServiceImpl) checkAvailability(ctx context.Context, request leave.LeaveRequest, original *leave.LeaveRequest) error {
	var excludeID *string
	if original != nil {
		excludeID = &original.ID
	}

	overlap, err := s.LeaveRequestRepository.HasOverlap(ctx, request.EmployeeID, request.StartDate, request.EndDate, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlap {
		return leave.ErrOverlappingLeave
	}

	entitlement, limited := s.entitlements[string(request.LeaveType)]
	if !limited {
		return nil
	}

	year := request.StartDate.Year()
	usage, err := s.LeaveRequestRepository.SumDaysByType(ctx, request.EmployeeID, year)
	if err != nil {
		return fmt.Errorf("failed to sum leave usage: %w", err)
	}

	taken := decimal.Zero
	for _, u := range usage {
		if u.LeaveType == request.LeaveType {
			taken = taken.Add(decimal.NewFromFloat(u.Days))
		}
	}
	if original != nil && original.LeaveType == request.LeaveType && original.StartDate.Year() == year {
		taken = taken.Sub(decimal.NewFromFloat(original.TotalDays))
	}

	if taken.Add(decimal.NewFromFloat(request.TotalDays)).GreaterThan(decimal.NewFromFloat(entitlement)) {
		return leave.ErrInsufficientBalance
	}
	return nil
}

func (s *LeaveServiceImpl) requester(ctx context.Context, userID string) (employee.Employee, error) {
	emp, err := s.Directory.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to resolve requester: %w", err)
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// today is the current office calendar date, in the same UTC-midnight form as stored leave dates.
func (s *LeaveServiceImpl) today() time.Time {
	now := s.clock.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *LeaveServiceImpl) link(leaveID string) string {
	return fmt.Sprintf("%s/leave/requests/%s", s.frontendURL, leaveID)
}

func (s *LeaveServiceImpl) notifyCurrentApprover(ctx context.Context, request leave.LeaveRequest) {
	step := request.CurrentStep()
	if s.emailService == nil || step == nil {
		return
	}

	s.goNotify(ctx, func(ctx context.Context) error {
		approver, err := s.Directory.FindByID(ctx, step.ApproverID)
		if err != nil {
			return fmt.Errorf("resolve approver %s: %w", step.ApproverID, err)
		}

		employeeName := request.EmployeeID
		if request.EmployeeName != nil {
			employeeName = *request.EmployeeName
		}

		return s.emailService.SendLeaveApprovalRequest(approver.Email, email.LeaveApprovalRequestData{
			RecipientName: approver.FullName,
			EmployeeName:  employeeName,
			LeaveType:     string(request.LeaveType),
			StartDate:     request.StartDate.Format(leave.DateLayout),
			EndDate:       request.EndDate.Format(leave.DateLayout),
			TotalDays:     request.TotalDays,
			Link:          s.link(request.ID),
		})
	})
}

func (s *LeaveServiceImpl) notifyDecision(ctx context.Context, request leave.LeaveRequest) {
	if s.emailService == nil {
		return
	}

	s.goNotify(ctx, func(ctx context.Context) error {
		requester, err := s.Directory.FindByID(ctx, request.EmployeeID)
		if err != nil {
			return fmt.Errorf("resolve requester %s: %w", request.EmployeeID, err)
		}

		data := email.LeaveDecisionData{
			RecipientName: requester.FullName,
			LeaveType:     string(request.LeaveType),
			StartDate:     request.StartDate.Format(leave.DateLayout),
			EndDate:       request.EndDate.Format(leave.DateLayout),
			Status:        string(request.Status),
			Link:          s.link(request.ID),
		}
		if request.FinalComments != nil {
			data.Comments = *request.FinalComments
		}

		return s.emailService.SendLeaveDecision(requester.Email, data)
	})
}

// Wait blocks until every queued notification has been sent or has failed.
func (s *LeaveServiceImpl) Wait() {
	s.notifications.Wait()
}

// goNotify runs send in the background. Delivery failures never reach the caller.
func (s *LeaveServiceImpl) goNotify(ctx context.Context, send func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		if err := send(ctx); err != nil {
			slog.Error("Failed to send leave notification", "error", err)
		}
	}()
}
