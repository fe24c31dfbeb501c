package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
)

// CompanySource lists the tenants a job iterates over.
type CompanySource interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// DeviceSync runs one sync pass for a company.
type DeviceSync interface {
	Sync(ctx context.Context, companyID string, w attendanceService.SyncWindow) (attendance.SyncResult, error)
}

type AttendanceJobs struct {
	companies CompanySource
	syncer    DeviceSync
	lookback  time.Duration
	now       func() time.Time
}

func NewAttendanceJobs(companies CompanySource, syncer DeviceSync, lookback time.Duration) *AttendanceJobs {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &AttendanceJobs{
		companies: companies,
		syncer:    syncer,
		lookback:  lookback,
		now:       time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("sync_attendance_devices", interval, j.SyncDevices)
}

// SyncDevices reconciles every company's staged punches over the lookback
// window and marks absences for days that have no punches.
func (j *AttendanceJobs) SyncDevices(ctx context.Context) error {
	companyIDs, err := j.companies.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	to := j.now().UTC()
	from := to.Add(-j.lookback)

	var failed int
	total := 0
	for _, companyID := range companyIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result, err := j.syncer.Sync(ctx, companyID, attendanceService.SyncWindow{
			From:       from,
			To:         to,
			MarkAbsent: true,
		})
		if errors.Is(err, attendance.ErrNoDevicesToSync) {
			continue
		}
		if err != nil {
			failed++
			slog.Error("Cron: device sync failed", "company_id", companyID, "error", err)
			continue
		}
		for _, w := range result.Warnings {
			slog.Warn("Cron: device sync warning", "company_id", companyID, "warning", w)
		}
		total += result.Processed
	}

	slog.Info("Cron: device sync finished", "companies", len(companyIDs), "processed", total, "failed", failed)
	if failed > 0 && failed == len(companyIDs) {
		return fmt.Errorf("device sync failed for all %d companies", failed)
	}
	return nil
}
