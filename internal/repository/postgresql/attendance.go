package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceUniqueDay = "attendances_user_id_local_date_key_key"

const attendanceColumns = `
	a.id, a.user_id, a.department_id, a.date, a.local_date_key,
	a.check_in_time, a.check_out_time, a.work_hours, a.work_mode,
	a.latitude, a.longitude, a.location_name, a.status, a.notes,
	a.created_at, a.updated_at,
	e.full_name AS employee_name,
	d.name AS department_name`

const attendanceJoins = `
	FROM attendances a
	LEFT JOIN employees e ON e.id = a.user_id
	LEFT JOIN departments d ON d.id = a.department_id`

type attendanceRepository struct {
	db *database.DB
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.DepartmentID, &att.Date, &att.LocalDateKey,
		&att.CheckInTime, &att.CheckOutTime, &att.WorkHours, &att.WorkMode,
		&att.Latitude, &att.Longitude, &att.LocationName, &att.Status, &att.Notes,
		&att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.DepartmentName,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		newAttendance.ID = id.String()
	}

	query := `
		INSERT INTO attendances (
			id, user_id, department_id, date, local_date_key,
			check_in_time, work_mode, latitude, longitude, location_name,
			status, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.DepartmentID,
		newAttendance.Date,
		newAttendance.LocalDateKey,
		newAttendance.CheckInTime,
		newAttendance.WorkMode,
		newAttendance.Latitude,
		newAttendance.Longitude,
		newAttendance.LocationName,
		newAttendance.Status,
		newAttendance.Notes,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if database.IsUniqueViolation(err, attendanceUniqueDay) {
			return attendance.Attendance{}, attendance.ErrDuplicateCheckIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceJoins + " WHERE a.id = $1"

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrRecordNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return att, nil
}

// GetByUserAndDateKey implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDateKey(ctx context.Context, userID string, dateKey string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceJoins + " WHERE a.user_id = $1 AND a.local_date_key = $2"

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, dateKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// CloseSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseSession(ctx context.Context, id string, checkOut time.Time, workHours float64, status attendance.Status) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_out_time = $2, work_hours = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND check_out_time IS NULL
	`

	tag, err := q.Exec(ctx, query, id, checkOut, workHours, status)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to close attendance: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone closed it first.
		if _, err := a.GetByID(ctx, id); err != nil {
			return attendance.Attendance{}, err
		}
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	return a.GetByID(ctx, id)
}

// ListOpenByDateKeys implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenByDateKeys(ctx context.Context, dateKeys []string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + attendanceJoins + `
		WHERE a.local_date_key = ANY($1) AND a.check_out_time IS NULL
		ORDER BY a.local_date_key DESC, a.check_in_time ASC`

	rows, err := q.Query(ctx, query, dateKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	return attendances, rows.Err()
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.DepartmentID != nil && *filter.DepartmentID != "" {
		baseWhere += fmt.Sprintf(" AND a.department_id = $%d", argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}

	// Day keys sort lexically, so range filters compare the key directly
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.local_date_key >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.local_date_key <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count total
	countQuery := "SELECT COUNT(*) FROM attendances a WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	selectQuery := "SELECT " + attendanceColumns + attendanceJoins +
		" WHERE " + baseWhere +
		" ORDER BY a.local_date_key DESC, a.check_in_time DESC"

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances := []attendance.Attendance{}
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return attendances, total, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, "DELETE FROM attendances WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{
		db: db,
	}
}
