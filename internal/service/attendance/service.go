package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/utils"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.Directory
	emailService email.EmailService
	clock        clock.Clock
	office       config.OfficeConfig
	loc          *time.Location

	// notifications tracks in-flight emails
	notifications sync.WaitGroup
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	now := a.clock.Now().In(a.loc)

	if day := now.Weekday(); day == time.Saturday || day == time.Sunday {
		return attendance.AttendanceResponse{}, attendance.ErrWeekendNotAllowed
	}

	if hour := now.Hour(); hour < a.office.CheckInFrom || hour >= a.office.CheckInUntil {
		return attendance.AttendanceResponse{}, attendance.ErrOutsideWindow
	}

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.Directory.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrUserNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to resolve employee: %w", err)
	}

	dateKey := attendance.DateKey(now, a.loc)
	existing, err := a.AttendanceRepository.GetByUserAndDateKey(ctx, req.UserID, dateKey)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrDuplicateCheckIn
	}

	if req.WorkMode == attendance.WorkModeInHouse {
		if req.Latitude == nil || req.Longitude == nil {
			return attendance.AttendanceResponse{}, attendance.ErrLocationRequired
		}

		distance := utils.DistanceKm(*req.Latitude, *req.Longitude, a.office.Latitude, a.office.Longitude)
		if distance > a.office.RadiusKm {
			return attendance.AttendanceResponse{}, &attendance.OutOfRangeError{
				DistanceMeters: int(math.Round(distance * 1000)),
			}
		}
	}

	departmentID := req.DepartmentID
	if departmentID == "" {
		departmentID = emp.DepartmentID
	}

	record := attendance.Attendance{
		UserID:       req.UserID,
		DepartmentID: departmentID,
		Date:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		LocalDateKey: dateKey,
		CheckInTime:  now,
		WorkMode:     req.WorkMode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LocationName: req.LocationName,
		Status:       attendance.StatusPresent,
		Notes:        req.Notes,
	}

	created, err := a.AttendanceRepository.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateCheckIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	created.EmployeeName = &emp.FullName
	created.DepartmentName = emp.DepartmentName

	slog.Info("Employee checked in",
		"attendance_id", created.ID,
		"user_id", created.UserID,
		"work_mode", created.WorkMode,
		"date", dateKey,
	)

	return attendance.NewAttendanceResponse(created, a.loc), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, id string, actor user.Actor) (attendance.AttendanceResponse, error) {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if record.UserID != actor.UserID && !actor.IsManager() {
		return attendance.AttendanceResponse{}, attendance.ErrForbidden
	}

	if !record.IsOpen() {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	checkOut := a.clock.Now()
	if checkOut.Before(record.CheckInTime) {
		checkOut = record.CheckInTime
	}

	closed, err := a.AttendanceRepository.CloseSession(ctx, id, checkOut, attendance.WorkHoursBetween(record.CheckInTime, checkOut), attendance.StatusPresent)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) || errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	return attendance.NewAttendanceResponse(closed, a.loc), nil
}

// GetByUser implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetByUser(ctx context.Context, userID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.UserID = &userID
	filter.DepartmentID = nil

	return a.list(ctx, filter)
}

// AuthorizeUserView implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AuthorizeUserView(ctx context.Context, actor user.Actor, userID string) error {
	if actor.IsManager() || actor.UserID == userID {
		return nil
	}
	if actor.Role != user.RoleDepartmentHead {
		return attendance.ErrForbidden
	}

	emp, err := a.Directory.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.ErrUserNotFound
		}
		return fmt.Errorf("failed to resolve employee: %w", err)
	}
	if emp.DepartmentID != actor.DepartmentID {
		return attendance.ErrForbidden
	}
	return nil
}

// GetByDepartment implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetByDepartment(ctx context.Context, departmentID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.DepartmentID = &departmentID
	filter.UserID = nil

	return a.list(ctx, filter)
}

// GetReport implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetReport(ctx context.Context, dateRange attendance.DateRange, departmentID *string) ([]attendance.AttendanceResponse, error) {
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}

	return a.all(ctx, attendance.AttendanceFilter{
		DepartmentID: departmentID,
		StartDate:    &dateRange.StartDate,
		EndDate:      &dateRange.EndDate,
	})
}

// GetUserAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetUserAttendance(ctx context.Context, userID string, dateRange *attendance.DateRange) ([]attendance.AttendanceResponse, error) {
	filter := attendance.AttendanceFilter{UserID: &userID}
	if dateRange != nil {
		if err := dateRange.Validate(); err != nil {
			return nil, err
		}
		filter.StartDate = &dateRange.StartDate
		filter.EndDate = &dateRange.EndDate
	}

	return a.all(ctx, filter)
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	dateKey := attendance.DateKey(a.clock.Now(), a.loc)

	record, err := a.AttendanceRepository.GetByUserAndDateKey(ctx, userID, dateKey)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	today := attendance.TodayResponse{Date: dateKey}
	if record != nil {
		resp := attendance.NewAttendanceResponse(*record, a.loc)
		today.CheckedIn = true
		today.CheckedOut = !record.IsOpen()
		today.Attendance = &resp
	}

	return today, nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string, requesterRole user.Role) error {
	if requesterRole != user.RoleAdmin && requesterRole != user.RoleManager {
		return attendance.ErrForbidden
	}

	if err := a.AttendanceRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	slog.Info("Attendance deleted", "attendance_id", id, "requester_role", requesterRole)
	return nil
}

// AutoCheckout implements attendance.AttendanceService.
// Records from earlier days in the lookback window are always swept. Today's
// records are only closed once the cutoff has passed.
func (a *AttendanceServiceImpl) AutoCheckout(ctx context.Context) (attendance.AutoCheckoutResult, error) {
	now := a.clock.Now().In(a.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)

	var dateKeys []string
	if !now.Before(midnight.Add(a.office.AutoCheckout)) {
		dateKeys = append(dateKeys, attendance.DateKey(now, a.loc))
	}
	for i := 1; i <= a.office.LookbackDays; i++ {
		dateKeys = append(dateKeys, attendance.DateKey(midnight.AddDate(0, 0, -i), a.loc))
	}

	if len(dateKeys) == 0 {
		return attendance.AutoCheckoutResult{}, nil
	}

	open, err := a.AttendanceRepository.ListOpenByDateKeys(ctx, dateKeys)
	if err != nil {
		return attendance.AutoCheckoutResult{}, fmt.Errorf("failed to find open attendances: %w", err)
	}

	result := attendance.AutoCheckoutResult{TotalFound: len(open)}

	for _, record := range open {
		day, err := time.ParseInLocation(attendance.DateKeyLayout, record.LocalDateKey, a.loc)
		if err != nil {
			slog.Error("Invalid attendance date key", "attendance_id", record.ID, "date_key", record.LocalDateKey, "error", err)
			continue
		}

		checkOut := day.Add(a.office.AutoCheckout)
		if checkOut.Before(record.CheckInTime) {
			checkOut = record.CheckInTime
		}
		hours := attendance.WorkHoursBetween(record.CheckInTime, checkOut)

		closed, err := a.AttendanceRepository.CloseSession(ctx, record.ID, checkOut, hours, attendance.StatusAutoCheckedOut)
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
				slog.Info("Attendance closed before auto checkout reached it", "attendance_id", record.ID)
				continue
			}
			slog.Error("Failed to auto checkout attendance",
				"attendance_id", record.ID,
				"user_id", record.UserID,
				"error", err,
			)
			continue
		}

		result.ProcessedCount++
		a.notifyAutoCheckout(ctx, closed)
	}

	slog.Info("Auto checkout finished",
		"processed_count", result.ProcessedCount,
		"total_found", result.TotalFound,
	)

	return result, nil
}

// Wait blocks until every queued notification has been sent or has failed.
func (a *AttendanceServiceImpl) Wait() {
	a.notifications.Wait()
}

// notifyAutoCheckout emails the employee in the background. Failures are only logged.
func (a *AttendanceServiceImpl) notifyAutoCheckout(ctx context.Context, record attendance.Attendance) {
	if a.emailService == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	a.notifications.Add(1)
	go func() {
		defer a.notifications.Done()

		emp, err := a.Directory.FindByID(ctx, record.UserID)
		if err != nil {
			slog.Error("Failed to resolve employee for auto checkout email", "user_id", record.UserID, "error", err)
			return
		}

		data := email.AutoCheckoutData{
			RecipientName: emp.FullName,
			Date:          record.LocalDateKey,
		}
		if record.CheckOutTime != nil {
			data.CheckOutTime = record.CheckOutTime.In(a.loc).Format("15:04")
		}
		if record.WorkHours != nil {
			data.WorkHours = *record.WorkHours
		}

		if err := a.emailService.SendAutoCheckout(emp.Email, data); err != nil {
			slog.Error("Failed to send auto checkout email", "user_id", record.UserID, "error", err)
		}
	}()
}

func (a *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, attendance.NewAttendanceResponse(att, a.loc))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

func (a *AttendanceServiceImpl) all(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceResponse, error) {
	attendances, _, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, attendance.NewAttendanceResponse(att, a.loc))
	}
	return responses, nil
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	directory employee.Directory,
	emailService email.EmailService,
	clk clock.Clock,
	office config.OfficeConfig,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		Directory:            directory,
		emailService:         emailService,
		clock:                clk,
		office:               office,
		loc:                  office.Location(),
	}
}
