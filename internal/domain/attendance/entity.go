package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateKeyLayout is the layout of LocalDateKey.
const DateKeyLayout = "2006-01-02"

type WorkMode string

const (
	WorkModeInHouse WorkMode = "in-house"
	WorkModeRemote  WorkMode = "remote"
)

var ValidWorkModes = []string{string(WorkModeInHouse), string(WorkModeRemote)}

type Status string

const (
	StatusPresent        Status = "present"
	StatusAutoCheckedOut Status = "auto_checked_out"
)

type Attendance struct {
	ID           string
	UserID       string
	DepartmentID string
	Date         time.Time
	LocalDateKey string
	CheckInTime  time.Time
	CheckOutTime *time.Time
	WorkHours    *float64
	WorkMode     WorkMode
	Latitude     *float64
	Longitude    *float64
	LocationName *string
	Status       Status
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO
	EmployeeName   *string
	DepartmentName *string
}

func (a Attendance) IsOpen() bool {
	return a.CheckOutTime == nil
}

// DateKey returns the calendar day of t in loc as YYYY-MM-DD.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// WorkHoursBetween returns the elapsed hours between check-in and check-out,
// clamped to zero and rounded to 2 decimals.
func WorkHoursBetween(checkIn, checkOut time.Time) float64 {
	elapsed := checkOut.Sub(checkIn)
	if elapsed <= 0 {
		return 0
	}
	return decimal.NewFromFloat(elapsed.Hours()).Round(2).InexactFloat64()
}
