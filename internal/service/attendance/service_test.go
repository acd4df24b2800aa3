package attendance

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	officeLat = 5.660881
	officeLon = -0.156627
)

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance
	seq     int
	listErr error
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]attendance.Attendance{}}
}

func (f *fakeAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.UserID == a.UserID && existing.LocalDateKey == a.LocalDateKey {
			return attendance.Attendance{}, attendance.ErrDuplicateCheckIn
		}
	}
	f.seq++
	a.ID = "att-" + strconv.Itoa(f.seq)
	a.CreatedAt = a.CheckInTime
	a.UpdatedAt = a.CheckInTime
	f.records[a.ID] = a
	return a, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAttendanceRepo) GetByUserAndDateKey(_ context.Context, userID, dateKey string) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.records {
		if a.UserID == userID && a.LocalDateKey == dateKey {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) CloseSession(_ context.Context, id string, checkOut time.Time, workHours float64, status attendance.Status) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrRecordNotFound
	}
	if a.CheckOutTime != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	a.CheckOutTime = &checkOut
	a.WorkHours = &workHours
	a.Status = status
	f.records[id] = a
	return a, nil
}

func (f *fakeAttendanceRepo) ListOpenByDateKeys(_ context.Context, dateKeys []string) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []attendance.Attendance
	for _, a := range f.records {
		if a.CheckOutTime != nil {
			continue
		}
		for _, key := range dateKeys {
			if a.LocalDateKey == key {
				open = append(open, a)
			}
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	return open, nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range f.records {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.DepartmentID != nil && a.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.StartDate != nil && a.LocalDateKey < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && a.LocalDateKey > *filter.EndDate {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocalDateKey > out[j].LocalDateKey })
	total := int64(len(out))
	if filter.Limit > 0 {
		start := min((filter.Page-1)*filter.Limit, len(out))
		end := min(start+filter.Limit, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (f *fakeAttendanceRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeAttendanceRepo) seed(a attendance.Attendance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[a.ID] = a
}

type fakeDirectory struct {
	employees map[string]employee.Employee
}

func (d fakeDirectory) FindByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := d.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (d fakeDirectory) FindActiveByRoleAndDepartment(_ context.Context, _ user.Role, _ *string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

type fakeEmail struct {
	mu            sync.Mutex
	autoCheckouts []string
	// gate holds SendAutoCheckout until it is closed
	gate          chan struct{}
}

func (f *fakeEmail) SendLeaveApprovalRequest(string, email.LeaveApprovalRequestData) error { return nil }
func (f *fakeEmail) SendLeaveDecision(string, email.LeaveDecisionData) error               { return nil }
func (f *fakeEmail) SendAutoCheckout(to string, _ email.AutoCheckoutData) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autoCheckouts = append(f.autoCheckouts, to)
	return nil
}

func (f *fakeEmail) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.autoCheckouts...)
}

type fixture struct {
	svc   *AttendanceServiceImpl
	repo  *fakeAttendanceRepo
	clock *clock.Fixed
	email *fakeEmail
	loc   *time.Location
}

func newFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	office := config.OfficeConfig{
		Latitude:     officeLat,
		Longitude:    officeLon,
		RadiusKm:     0.1,
		Timezone:     "Africa/Accra",
		CheckInFrom:  7,
		CheckInUntil: 17,
		AutoCheckout: 18 * time.Hour,
		LookbackDays: 7,
	}
	repo := newFakeAttendanceRepo()
	dir := fakeDirectory{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", FullName: "Ama Mensah", Email: "ama@office.test", Role: user.RoleStaff, DepartmentID: "eng", Status: employee.StatusActive},
		"emp-2": {ID: "emp-2", FullName: "Kofi Boateng", Email: "kofi@office.test", Role: user.RoleStaff, DepartmentID: "ops", Status: employee.StatusActive},
	}}
	clk := clock.NewFixed(now)
	mail := &fakeEmail{}
	svc := NewAttendanceService(repo, dir, mail, clk, office)
	return fixture{svc: svc, repo: repo, clock: clk, email: mail, loc: office.Location()}
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Accra")
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func ptr[T any](v T) *T { return &v }

func inHouse(userID string, lat, lon float64) attendance.CheckInRequest {
	return attendance.CheckInRequest{
		UserID:    userID,
		WorkMode:  attendance.WorkModeInHouse,
		Latitude:  &lat,
		Longitude: &lon,
	}
}

func TestCheckIn_AtOfficeSucceeds(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))

	resp, err := f.svc.CheckIn(context.Background(), inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)

	assert.Equal(t, "emp-1", resp.UserID)
	assert.Equal(t, "eng", resp.DepartmentID)
	assert.Equal(t, "2026-10-14", resp.Date)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Nil(t, resp.CheckOutTime)
	require.NotNil(t, resp.EmployeeName)
	assert.Equal(t, "Ama Mensah", *resp.EmployeeName)
}

func TestCheckIn_RejectsWeekend(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-17 09:00"))

	_, err := f.svc.CheckIn(context.Background(), inHouse("emp-1", officeLat, officeLon))
	assert.ErrorIs(t, err, attendance.ErrWeekendNotAllowed)
}

func TestCheckIn_WeekendWinsOverInvalidInput(t *testing.T) {
	requests := map[string]attendance.CheckInRequest{
		"unknown work mode": {UserID: "emp-1", WorkMode: "office"},
		"notes too long":    {UserID: "emp-1", WorkMode: attendance.WorkModeRemote, Notes: strings.Repeat("x", 501)},
		"missing user":      {WorkMode: attendance.WorkModeInHouse},
	}
	for _, day := range []string{"2026-10-17 09:00", "2026-10-18 03:00"} {
		for name, req := range requests {
			t.Run(day+"/"+name, func(t *testing.T) {
				f := newFixture(t, at(t, day))
				_, err := f.svc.CheckIn(context.Background(), req)
				assert.ErrorIs(t, err, attendance.ErrWeekendNotAllowed)
			})
		}
	}
}

func TestCheckIn_WindowWinsOverInvalidInput(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 18:00"))

	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{UserID: "emp-1", WorkMode: "office"})
	assert.ErrorIs(t, err, attendance.ErrOutsideWindow)
}

func TestCheckIn_RejectsOutsideWindow(t *testing.T) {
	for _, clockTime := range []string{"2026-10-14 06:59", "2026-10-14 17:00", "2026-10-14 22:30"} {
		t.Run(clockTime, func(t *testing.T) {
			f := newFixture(t, at(t, clockTime))
			_, err := f.svc.CheckIn(context.Background(), inHouse("emp-1", officeLat, officeLon))
			assert.ErrorIs(t, err, attendance.ErrOutsideWindow)
		})
	}
}

func TestCheckIn_WindowBoundaries(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 07:00"))
	_, err := f.svc.CheckIn(context.Background(), inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)

	f.clock.Set(at(t, "2026-10-14 16:59"))
	_, err = f.svc.CheckIn(context.Background(), inHouse("emp-2", officeLat, officeLon))
	require.NoError(t, err)
}

func TestCheckIn_UnknownUser(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))

	_, err := f.svc.CheckIn(context.Background(), inHouse("ghost", officeLat, officeLon))
	assert.ErrorIs(t, err, attendance.ErrUserNotFound)
}

func TestCheckIn_SecondCheckInSameDayRejected(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	ctx := context.Background()

	first, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.CheckIn(ctx, attendance.CheckInRequest{UserID: "emp-1", WorkMode: attendance.WorkModeRemote})
	assert.ErrorIs(t, err, attendance.ErrDuplicateCheckIn)

	// closing the session does not free the day
	_, err = f.svc.CheckOut(ctx, first.ID, user.Actor{UserID: "emp-1", Role: user.RoleStaff})
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	assert.ErrorIs(t, err, attendance.ErrDuplicateCheckIn)

	// next working day is fine
	f.clock.Set(at(t, "2026-10-15 08:00"))
	_, err = f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)
}

func TestCheckIn_InHouseRequiresLocation(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))

	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		UserID:   "emp-1",
		WorkMode: attendance.WorkModeInHouse,
		Latitude: ptr(officeLat),
	})
	assert.ErrorIs(t, err, attendance.ErrLocationRequired)
}

func TestCheckIn_OutsideGeofenceReportsDistance(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))

	// roughly 150 metres due north
	_, err := f.svc.CheckIn(context.Background(), inHouse("emp-1", officeLat+0.00135, officeLon))
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrOutOfRange)

	var outOfRange *attendance.OutOfRangeError
	require.True(t, errors.As(err, &outOfRange))
	assert.InDelta(t, 150, outOfRange.DistanceMeters, 2)
	assert.Contains(t, err.Error(), "150m away")

	assert.Empty(t, f.repo.records)
}

func TestCheckIn_RemoteSkipsGeofence(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))

	resp, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		UserID:   "emp-1",
		WorkMode: attendance.WorkModeRemote,
		Latitude: ptr(10.0), Longitude: ptr(10.0),
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.WorkModeRemote, resp.WorkMode)
}

func TestCheckIn_ValidationError(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))

	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{UserID: "emp-1", WorkMode: "office"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work_mode")
}

func TestCheckOut_ComputesWorkHours(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 08:00"))
	ctx := context.Background()

	created, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)

	f.clock.Set(at(t, "2026-10-14 16:30"))
	closed, err := f.svc.CheckOut(ctx, created.ID, user.Actor{UserID: "emp-1", Role: user.RoleStaff})
	require.NoError(t, err)

	require.NotNil(t, closed.WorkHours)
	assert.Equal(t, 8.5, *closed.WorkHours)
	require.NotNil(t, closed.CheckOutTime)
	assert.Equal(t, attendance.StatusPresent, closed.Status)

	_, err = f.svc.CheckOut(ctx, created.ID, user.Actor{UserID: "emp-1", Role: user.RoleStaff})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOut_Authorization(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 08:00"))
	ctx := context.Background()

	created, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	_, err = f.svc.CheckOut(ctx, created.ID, user.Actor{UserID: "emp-2", Role: user.RoleStaff})
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	_, err = f.svc.CheckOut(ctx, created.ID, user.Actor{UserID: "head-1", Role: user.RoleDepartmentHead})
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	_, err = f.svc.CheckOut(ctx, created.ID, user.Actor{UserID: "mgr-1", Role: user.RoleManager})
	require.NoError(t, err)

	_, err = f.svc.CheckOut(ctx, "missing", user.Actor{UserID: "adm-1", Role: user.RoleAdmin})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestAutoCheckout_ClosesAtCutoff(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)

	f.clock.Set(at(t, "2026-10-14 18:00"))
	result, err := f.svc.AutoCheckout(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.AutoCheckoutResult{ProcessedCount: 1, TotalFound: 1}, result)

	today, err := f.svc.GetToday(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, today.Attendance)
	assert.True(t, today.CheckedOut)
	assert.Equal(t, attendance.StatusAutoCheckedOut, today.Attendance.Status)
	assert.Equal(t, 9.0, *today.Attendance.WorkHours)
	assert.Equal(t, at(t, "2026-10-14 18:00").Format(time.RFC3339), *today.Attendance.CheckOutTime)

	f.svc.Wait()
	assert.Equal(t, []string{"ama@office.test"}, f.email.sent())
}

func TestWait_BlocksOnQueuedNotifications(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	f.email.gate = make(chan struct{})
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)
	f.clock.Set(at(t, "2026-10-14 18:00"))
	_, err = f.svc.AutoCheckout(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		f.svc.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while an email was still being sent")
	case <-time.After(50 * time.Millisecond):
	}

	close(f.email.gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the email was sent")
	}
	assert.Equal(t, []string{"ama@office.test"}, f.email.sent())
}

func TestAutoCheckout_IsIdempotent(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)

	f.clock.Set(at(t, "2026-10-14 18:00"))
	_, err = f.svc.AutoCheckout(ctx)
	require.NoError(t, err)

	second, err := f.svc.AutoCheckout(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.AutoCheckoutResult{}, second)
}

func TestAutoCheckout_SkipsManuallyClosed(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	ctx := context.Background()

	first, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, inHouse("emp-2", officeLat, officeLon))
	require.NoError(t, err)

	f.clock.Set(at(t, "2026-10-14 17:30"))
	_, err = f.svc.CheckOut(ctx, first.ID, user.Actor{UserID: "emp-1", Role: user.RoleStaff})
	require.NoError(t, err)

	f.clock.Set(at(t, "2026-10-14 18:00"))
	result, err := f.svc.AutoCheckout(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.AutoCheckoutResult{ProcessedCount: 1, TotalFound: 1}, result)

	manual, err := f.repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, manual.Status)

	f.svc.Wait()
	assert.Equal(t, []string{"kofi@office.test"}, f.email.sent())
}

func TestAutoCheckout_SweepsEarlierDaysBeforeCutoff(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-15 10:00"))
	ctx := context.Background()

	monday := at(t, "2026-10-12 08:15")
	f.repo.seed(attendance.Attendance{
		ID: "old", UserID: "emp-1", DepartmentID: "eng",
		LocalDateKey: "2026-10-12", CheckInTime: monday,
		WorkMode: attendance.WorkModeRemote, Status: attendance.StatusPresent,
	})
	f.repo.seed(attendance.Attendance{
		ID: "today", UserID: "emp-2", DepartmentID: "ops",
		LocalDateKey: "2026-10-15", CheckInTime: at(t, "2026-10-15 08:00"),
		WorkMode: attendance.WorkModeRemote, Status: attendance.StatusPresent,
	})

	result, err := f.svc.AutoCheckout(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.AutoCheckoutResult{ProcessedCount: 1, TotalFound: 1}, result)

	old, err := f.repo.GetByID(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, old.CheckOutTime)
	assert.True(t, old.CheckOutTime.Equal(at(t, "2026-10-12 18:00")))
	assert.Equal(t, 9.75, *old.WorkHours)

	current, err := f.repo.GetByID(ctx, "today")
	require.NoError(t, err)
	assert.True(t, current.IsOpen())

	f.svc.Wait()
}

func TestGetToday_NoRecord(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))

	today, err := f.svc.GetToday(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, attendance.TodayResponse{Date: "2026-10-14"}, today)
}

func TestGetByUser_Paginates(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	for i, key := range []string{"2026-10-05", "2026-10-06", "2026-10-07"} {
		f.repo.seed(attendance.Attendance{
			ID: "seed-" + key, UserID: "emp-1", DepartmentID: "eng", LocalDateKey: key,
			CheckInTime: at(t, key+" 08:00").Add(time.Duration(i) * time.Minute),
			WorkMode:    attendance.WorkModeRemote, Status: attendance.StatusPresent,
		})
	}

	list, err := f.svc.GetByUser(context.Background(), "emp-1", attendance.AttendanceFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, "3-3 of 3", list.Showing)
	require.Len(t, list.Attendances, 1)
	assert.Equal(t, "2026-10-05", list.Attendances[0].Date)

	empty, err := f.svc.GetByUser(context.Background(), "emp-2", attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0", empty.Showing)
	assert.Equal(t, 20, empty.Limit)
}

func TestGetReport_FiltersByDepartmentAndRange(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	f.repo.seed(attendance.Attendance{ID: "a", UserID: "emp-1", DepartmentID: "eng", LocalDateKey: "2026-10-05", CheckInTime: at(t, "2026-10-05 08:00")})
	f.repo.seed(attendance.Attendance{ID: "b", UserID: "emp-2", DepartmentID: "ops", LocalDateKey: "2026-10-05", CheckInTime: at(t, "2026-10-05 08:00")})
	f.repo.seed(attendance.Attendance{ID: "c", UserID: "emp-1", DepartmentID: "eng", LocalDateKey: "2026-09-30", CheckInTime: at(t, "2026-09-30 08:00")})

	rows, err := f.svc.GetReport(context.Background(), attendance.DateRange{StartDate: "2026-10-01", EndDate: "2026-10-31"}, ptr("eng"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].ID)

	_, err = f.svc.GetReport(context.Background(), attendance.DateRange{StartDate: "2026-10-31", EndDate: "2026-10-01"}, nil)
	assert.Error(t, err)
}

func TestGetUserAttendance_PropagatesRepositoryError(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	f.repo.listErr = errors.New("connection reset")

	_, err := f.svc.GetUserAttendance(context.Background(), "emp-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDeleteAttendance_RoleGuard(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	ctx := context.Background()

	created, err := f.svc.CheckIn(ctx, inHouse("emp-1", officeLat, officeLon))
	require.NoError(t, err)

	for _, role := range []user.Role{user.RoleStaff, user.RoleDepartmentHead} {
		assert.ErrorIs(t, f.svc.DeleteAttendance(ctx, created.ID, role), attendance.ErrForbidden)
	}

	require.NoError(t, f.svc.DeleteAttendance(ctx, created.ID, user.RoleManager))
	assert.ErrorIs(t, f.svc.DeleteAttendance(ctx, created.ID, user.RoleAdmin), attendance.ErrRecordNotFound)
}

func TestAuthorizeUserView(t *testing.T) {
	f := newFixture(t, at(t, "2026-10-14 09:00"))
	ctx := context.Background()

	engHead := user.Actor{UserID: "head-1", Role: user.RoleDepartmentHead, DepartmentID: "eng"}
	cases := []struct {
		name   string
		actor  user.Actor
		target string
		want   error
	}{
		{"self", user.Actor{UserID: "emp-2", Role: user.RoleStaff, DepartmentID: "ops"}, "emp-2", nil},
		{"staff reading a colleague", user.Actor{UserID: "emp-2", Role: user.RoleStaff, DepartmentID: "ops"}, "emp-1", attendance.ErrForbidden},
		{"head in same department", engHead, "emp-1", nil},
		{"head in other department", engHead, "emp-2", attendance.ErrForbidden},
		{"head with unknown user", engHead, "ghost", attendance.ErrUserNotFound},
		{"manager", user.Actor{UserID: "mgr-1", Role: user.RoleManager, DepartmentID: "mgmt"}, "emp-2", nil},
		{"admin", user.Actor{UserID: "adm-1", Role: user.RoleAdmin, DepartmentID: "mgmt"}, "emp-1", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := f.svc.AuthorizeUserView(ctx, c.actor, c.target)
			if c.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, c.want)
		})
	}
}
