package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
)

// AutoCheckoutJobName is the name the daily auto checkout is registered under.
const AutoCheckoutJobName = "auto_checkout"

type autoCheckouter interface {
	AutoCheckout(ctx context.Context) (attendance.AutoCheckoutResult, error)
}

type AttendanceJobs struct {
	attendanceService autoCheckouter
	office            config.OfficeConfig
}

func NewAttendanceJobs(attendanceService autoCheckouter, office config.OfficeConfig) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		office:            office,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	hour := int(j.office.AutoCheckout.Hours())
	minute := int(j.office.AutoCheckout.Minutes()) % 60
	scheduler.AddDailyJob(AutoCheckoutJobName, hour, minute, j.office.Location(), j.AutoCheckout)
}

// AutoCheckout closes every session still open at the end of the office day.
func (j *AttendanceJobs) AutoCheckout(ctx context.Context) error {
	slog.Info("Cron: Starting auto checkout job")

	result, err := j.attendanceService.AutoCheckout(ctx)
	if err != nil {
		return fmt.Errorf("auto checkout: %w", err)
	}

	if result.TotalFound == 0 {
		slog.Info("Cron: No open attendances found")
		return nil
	}

	slog.Info("Cron: Auto checked out attendances",
		"processed_count", result.ProcessedCount,
		"total_found", result.TotalFound,
	)
	return nil
}
