package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.department_id, lr.leave_type,
	lr.start_date, lr.end_date, lr.total_days, lr.reason,
	lr.status, lr.priority, lr.approval_workflow, lr.current_approval_level,
	lr.final_approver_id, lr.final_approval_date, lr.final_comments,
	lr.submission_date, lr.handover_to, lr.emergency_contact, lr.version,
	lr.created_at, lr.updated_at,
	e.full_name AS employee_name,
	d.name AS department_name`

const leaveRequestJoins = `
	FROM leave_requests lr
	LEFT JOIN employees e ON e.id = lr.employee_id
	LEFT JOIN departments d ON d.id = lr.department_id`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.DepartmentID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.TotalDays,
		&lr.Reason,
		&lr.Status,
		&lr.Priority,
		&lr.ApprovalWorkflow,
		&lr.CurrentApprovalLevel,
		&lr.FinalApproverID,
		&lr.FinalApprovalDate,
		&lr.FinalComments,
		&lr.SubmissionDate,
		&lr.HandoverTo,
		&lr.EmergencyContact,
		&lr.Version,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.EmployeeName,
		&lr.DepartmentName,
	)
	return lr, err
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}
	return requests, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to generate leave request id: %w", err)
		}
		request.ID = id.String()
	}
	request.Version = 1

	workflow, err := request.ApprovalWorkflow.Value()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to encode approval workflow: %w", err)
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, department_id, leave_type,
			start_date, end_date, total_days, reason,
			status, priority, approval_workflow, current_approval_level,
			submission_date, handover_to, emergency_contact, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.DepartmentID,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.TotalDays,
		request.Reason,
		request.Status,
		request.Priority,
		workflow,
		request.CurrentApprovalLevel,
		request.SubmissionDate,
		request.HandoverTo,
		request.EmergencyContact,
		request.Version,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveRequestColumns + leaveRequestJoins + " WHERE lr.id = $1"

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClause += fmt.Sprintf(" AND lr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.DepartmentID != nil && *filter.DepartmentID != "" {
		whereClause += fmt.Sprintf(" AND lr.department_id = $%d", argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.LeaveType != nil && *filter.LeaveType != "" {
		whereClause += fmt.Sprintf(" AND lr.leave_type = $%d", argIdx)
		args = append(args, *filter.LeaveType)
		argIdx++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND EXTRACT(YEAR FROM lr.start_date) = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM leave_requests lr WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := "SELECT " + leaveRequestColumns + leaveRequestJoins +
		" WHERE " + whereClause +
		" ORDER BY lr.submission_date DESC"

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}

	requests, err := collectLeaveRequests(rows)
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ListPendingForApprover implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListPendingForApprover(ctx context.Context, approverID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + leaveRequestColumns + leaveRequestJoins + `
		WHERE lr.status = 'pending'
		  AND lr.approval_workflow @> jsonb_build_array(jsonb_build_object('approver_id', $1::text, 'status', 'pending'))
		ORDER BY lr.submission_date ASC`

	rows, err := q.Query(ctx, query, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}

	return collectLeaveRequests(rows)
}

// UpdateWithVersion implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateWithVersion(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	workflow, err := request.ApprovalWorkflow.Value()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to encode approval workflow: %w", err)
	}

	query := `
		UPDATE leave_requests
		SET leave_type = $3,
			start_date = $4,
			end_date = $5,
			total_days = $6,
			reason = $7,
			status = $8,
			priority = $9,
			approval_workflow = $10,
			current_approval_level = $11,
			final_approver_id = $12,
			final_approval_date = $13,
			final_comments = $14,
			handover_to = $15,
			emergency_contact = $16,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err = q.QueryRow(ctx, query,
		request.ID,
		request.Version,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.TotalDays,
		request.Reason,
		request.Status,
		request.Priority,
		workflow,
		request.CurrentApprovalLevel,
		request.FinalApproverID,
		request.FinalApprovalDate,
		request.FinalComments,
		request.HandoverTo,
		request.EmergencyContact,
	).Scan(&request.Version, &request.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, request.ID); getErr != nil {
				return leave.LeaveRequest{}, getErr
			}
			return leave.LeaveRequest{}, leave.ErrConcurrentModification
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	return request, nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_requests
			WHERE employee_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3
			  AND end_date >= $2
			  AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}

	return exists, nil
}

// SumDaysByType implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) SumDaysByType(ctx context.Context, employeeID string, year int) ([]leave.TypeUsage, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_type, status, COALESCE(SUM(total_days), 0)
		FROM leave_requests
		WHERE employee_id = $1
		  AND EXTRACT(YEAR FROM start_date) = $2
		  AND status IN ('pending', 'approved')
		GROUP BY leave_type, status
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum leave days: %w", err)
	}
	defer rows.Close()

	var usage []leave.TypeUsage
	for rows.Next() {
		var u leave.TypeUsage
		if err := rows.Scan(&u.LeaveType, &u.Status, &u.Days); err != nil {
			return nil, fmt.Errorf("failed to scan leave usage: %w", err)
		}
		usage = append(usage, u)
	}

	return usage, rows.Err()
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}
