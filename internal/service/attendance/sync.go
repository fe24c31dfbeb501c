package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"golang.org/x/sync/errgroup"
)

// DeviceSource is the part of the device store sync needs.
type DeviceSource interface {
	ListActive(ctx context.Context, companyID string, ids []string) ([]device.Device, error)
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

// EmployeeDirectory resolves device PINs and branch rosters.
type EmployeeDirectory interface {
	ListByCodes(ctx context.Context, companyID string, codes []string) ([]employee.Employee, error)
	ListActiveByBranch(ctx context.Context, companyID string, branchID string) ([]employee.Employee, error)
}

// SyncWindow selects what a sync run covers. From and To are calendar days.
type SyncWindow struct {
	DeviceIDs  []string
	From       time.Time
	To         time.Time
	MarkAbsent bool
}

// DeviceSyncer pulls staged punch logs of every device and reconciles them.
// A device that cannot be read is reported as a warning; the rest still
// sync.
type DeviceSyncer struct {
	devices     DeviceSource
	punchLogs   attendance.PunchLogRepository
	employees   EmployeeDirectory
	reconciler  *Reconciler
	concurrency int
	now         func() time.Time
}

func NewDeviceSyncer(
	devices DeviceSource,
	punchLogs attendance.PunchLogRepository,
	employees EmployeeDirectory,
	reconciler *Reconciler,
	concurrency int,
) *DeviceSyncer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &DeviceSyncer{
		devices:     devices,
		punchLogs:   punchLogs,
		employees:   employees,
		reconciler:  reconciler,
		concurrency: concurrency,
		now:         time.Now,
	}
}

type fetchedLogs struct {
	device device.Device
	logs   []attendance.PunchLog
	err    error
}

// Sync runs one best-effort sync for a company.
func (s *DeviceSyncer) Sync(ctx context.Context, companyID string, w SyncWindow) (attendance.SyncResult, error) {
	result := attendance.SyncResult{
		Devices:  []attendance.DeviceSyncResult{},
		Warnings: []string{},
	}

	devices, err := s.devices.ListActive(ctx, companyID, w.DeviceIDs)
	if err != nil {
		return result, fmt.Errorf("failed to list devices: %w", err)
	}
	if len(devices) == 0 {
		return result, attendance.ErrNoDevicesToSync
	}

	// Punch logs are stored as instants; widen the window so every branch
	// timezone's calendar days are covered. The reconciler trims to the
	// local window.
	fetchFrom := w.From.AddDate(0, 0, -1)
	fetchTo := w.To.AddDate(0, 0, 2)

	fetched := make([]fetchedLogs, len(devices))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, d := range devices {
		g.Go(func() error {
			logs, err := s.punchLogs.ListByDevice(ctx, d.ID, fetchFrom, fetchTo)
			fetched[i] = fetchedLogs{device: d, logs: logs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var pins []string
	for _, f := range fetched {
		status := attendance.DeviceSyncResult{
			DeviceID:     f.device.ID,
			SerialNumber: f.device.SerialNumber,
			Fetched:      len(f.logs),
			Success:      f.err == nil,
		}
		if f.err != nil {
			status.Error = f.err.Error()
			result.Warnings = append(result.Warnings, fmt.Sprintf("device %s: %v", f.device.SerialNumber, f.err))
			slog.Warn("device sync fetch failed", "device_id", f.device.ID, "serial_number", f.device.SerialNumber, "error", f.err)
		}
		result.Devices = append(result.Devices, status)
		for _, l := range f.logs {
			if !slices.Contains(pins, l.DeviceUserPIN) {
				pins = append(pins, l.DeviceUserPIN)
			}
		}
	}

	byCode := make(map[string]employee.Employee)
	if len(pins) > 0 {
		emps, err := s.employees.ListByCodes(ctx, companyID, pins)
		if err != nil {
			return result, fmt.Errorf("failed to resolve device users: %w", err)
		}
		for _, e := range emps {
			byCode[e.EmployeeCode] = e
		}
	}

	// Punches are reconciled under the employee's home branch so that a
	// roster absence and a punch on another branch's terminal land in the
	// same run.
	punchesByBranch := make(map[string][]attendance.PunchEvent)
	var branches []string
	addBranch := func(id string) {
		if !slices.Contains(branches, id) {
			branches = append(branches, id)
		}
	}
	for _, f := range fetched {
		if f.err != nil {
			continue
		}
		addBranch(f.device.BranchID)
		unknown := make(map[string]int)
		for _, l := range f.logs {
			e, ok := byCode[l.DeviceUserPIN]
			if !ok {
				unknown[l.DeviceUserPIN]++
				continue
			}
			addBranch(e.BranchID)
			punchesByBranch[e.BranchID] = append(punchesByBranch[e.BranchID], attendance.PunchEvent{
				EmployeeID: e.ID,
				Timestamp:  l.Timestamp,
				Kind:       l.Kind,
				DeviceID:   f.device.ID,
			})
		}
		for _, pin := range sortedKeys(unknown) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("device %s: unknown user PIN %s (%d punches dropped)", f.device.SerialNumber, pin, unknown[pin]))
		}
	}
	slices.Sort(branches)

	for _, branchID := range branches {
		in := attendance.ReconcileInput{
			CompanyID: companyID,
			BranchID:  branchID,
			Punches:   punchesByBranch[branchID],
			From:      w.From,
			To:        w.To,
		}
		if w.MarkAbsent {
			roster, err := s.employees.ListActiveByBranch(ctx, companyID, branchID)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("branch %s: failed to load roster: %v", branchID, err))
			}
			for _, e := range roster {
				in.Roster = append(in.Roster, attendance.RosterEntry{EmployeeID: e.ID, HireDate: e.HireDate})
			}
		}

		rr, err := s.reconciler.Reconcile(ctx, in)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("branch %s: reconciliation failed: %v", branchID, err))
			slog.Error("branch reconciliation failed", "company_id", companyID, "branch_id", branchID, "error", err)
			continue
		}
		result.Processed += rr.Processed
		for _, r := range rr.Rejected {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("branch %s: rejected punch of %s at %s: %s", branchID, r.EmployeeID, r.Timestamp, r.Reason))
		}
	}

	syncedAt := s.now()
	for _, f := range fetched {
		if f.err != nil {
			continue
		}
		if err := s.devices.MarkSynced(ctx, f.device.ID, syncedAt); err != nil {
			slog.Warn("failed to stamp device sync time", "device_id", f.device.ID, "error", err)
		}
	}

	slog.Info("device sync finished",
		"company_id", companyID,
		"devices", len(devices),
		"processed", result.Processed,
		"warnings", len(result.Warnings),
	)
	return result, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
