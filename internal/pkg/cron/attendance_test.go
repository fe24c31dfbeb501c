package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompanies struct {
	ids []string
	err error
}

func (s stubCompanies) ListIDs(context.Context) ([]string, error) { return s.ids, s.err }

type recordingSyncer struct {
	windows map[string]attendanceService.SyncWindow
	errs    map[string]error
}

func (r *recordingSyncer) Sync(_ context.Context, companyID string, w attendanceService.SyncWindow) (attendance.SyncResult, error) {
	if r.windows == nil {
		r.windows = map[string]attendanceService.SyncWindow{}
	}
	r.windows[companyID] = w
	if err := r.errs[companyID]; err != nil {
		return attendance.SyncResult{}, err
	}
	return attendance.SyncResult{Processed: 2}, nil
}

func TestSyncDevices_CoversLookbackForEveryCompany(t *testing.T) {
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	syncer := &recordingSyncer{errs: map[string]error{"c2": attendance.ErrNoDevicesToSync}}
	jobs := NewAttendanceJobs(stubCompanies{ids: []string{"c1", "c2"}}, syncer, 48*time.Hour)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.SyncDevices(context.Background()))

	require.Len(t, syncer.windows, 2)
	w := syncer.windows["c1"]
	assert.True(t, w.MarkAbsent)
	assert.Equal(t, now, w.To)
	assert.Equal(t, now.Add(-48*time.Hour), w.From)
	assert.Empty(t, w.DeviceIDs)
}

func TestSyncDevices_FailsOnlyWhenEveryCompanyFails(t *testing.T) {
	boom := errors.New("boom")

	partial := &recordingSyncer{errs: map[string]error{"c1": boom}}
	jobs := NewAttendanceJobs(stubCompanies{ids: []string{"c1", "c2"}}, partial, 0)
	assert.NoError(t, jobs.SyncDevices(context.Background()))

	all := &recordingSyncer{errs: map[string]error{"c1": boom, "c2": boom}}
	jobs = NewAttendanceJobs(stubCompanies{ids: []string{"c1", "c2"}}, all, 0)
	assert.Error(t, jobs.SyncDevices(context.Background()))
}

func TestSyncDevices_ListError(t *testing.T) {
	jobs := NewAttendanceJobs(stubCompanies{err: errors.New("db down")}, &recordingSyncer{}, 0)
	assert.ErrorContains(t, jobs.SyncDevices(context.Background()), "db down")
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	calls := 0
	s.AddJob("count", time.Hour, func(context.Context) error {
		calls++
		return nil
	})
	s.AddJob("fail", time.Hour, func(context.Context) error { return errors.New("ignored") })

	s.RunOnce(context.Background())
	assert.Equal(t, 1, calls)
}
