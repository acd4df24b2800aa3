package report

import (
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const attendanceSheet = "Attendance"

var attendanceHeaders = []interface{}{
	"Date", "Employee", "Department", "Work Mode", "Check In", "Check Out",
	"Work Hours", "Status", "Location", "Notes",
}

func renderAttendanceSheet(records []attendance.Attendance, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(attendanceSheet, "A1", &attendanceHeaders); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(attendanceSheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		row := []interface{}{
			record.LocalDateKey,
			deref(record.EmployeeName, record.UserID),
			deref(record.DepartmentName, record.DepartmentID),
			string(record.WorkMode),
			record.CheckInTime.In(loc).Format("15:04"),
			"",
			"",
			string(record.Status),
			deref(record.LocationName, ""),
			record.Notes,
		}
		if record.CheckOutTime != nil {
			row[5] = record.CheckOutTime.In(loc).Format("15:04")
		}
		if record.WorkHours != nil {
			row[6] = *record.WorkHours
		}

		if err := f.SetSheetRow(attendanceSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(attendanceSheet, "A", "J", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
