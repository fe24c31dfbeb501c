package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/excel"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/google/uuid"
)

// BranchLookup checks that a branch belongs to the caller's company.
type BranchLookup interface {
	GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error)
}

// DeviceLookup resolves the device an import is attributed to.
type DeviceLookup interface {
	GetByID(ctx context.Context, id string, companyID string) (device.Device, error)
}

type AttendanceServiceImpl struct {
	records    attendance.AttendanceRepository
	policies   attendance.PolicyRepository
	punchLogs  attendance.PunchLogRepository
	branches   BranchLookup
	devices    DeviceLookup
	reconciler *Reconciler
	syncer     *DeviceSyncer
}

func NewAttendanceService(
	records attendance.AttendanceRepository,
	policies attendance.PolicyRepository,
	punchLogs attendance.PunchLogRepository,
	branches BranchLookup,
	devices DeviceLookup,
	reconciler *Reconciler,
	syncer *DeviceSyncer,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		records:    records,
		policies:   policies,
		punchLogs:  punchLogs,
		branches:   branches,
		devices:    devices,
		reconciler: reconciler,
		syncer:     syncer,
	}
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	rows, total, err := s.records.List(ctx, filter, claims.CompanyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := attendance.ListAttendanceResponse{
		Page:        pagination.New(total, filter.Page, filter.Limit),
		Attendances: make([]attendance.AttendanceResponse, 0, len(rows)),
	}
	for _, a := range rows {
		resp.Attendances = append(resp.Attendances, toAttendanceResponse(a))
	}
	return resp, nil
}

// ListMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if claims.EmployeeID == "" {
		return attendance.ListAttendanceResponse{}, employee.ErrEmployeeNotFound
	}
	filter.EmployeeID = &claims.EmployeeID
	filter.BranchID = nil
	return s.ListAttendance(ctx, filter)
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a, err := s.records.GetByID(ctx, id, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return toAttendanceResponse(a), nil
}

// UpdateAttendance implements attendance.AttendanceService. When the times
// change and no status is given, the status is derived again from the
// branch policy.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a, err := s.records.GetByID(ctx, req.ID, claims.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	checkIn, checkOut := req.ParsedTimes()
	if checkIn != nil {
		a.CheckIn = utcPtr(checkIn)
	}
	if checkOut != nil {
		a.CheckOut = utcPtr(checkOut)
	}
	if a.CheckIn != nil && a.CheckOut != nil && a.CheckOut.Before(*a.CheckIn) {
		return attendance.AttendanceResponse{}, attendance.ErrCheckOutBeforeCheckIn
	}

	switch {
	case req.Status != nil:
		a.Status = attendance.Status(*req.Status)
	case checkIn != nil || checkOut != nil:
		var branchID string
		if a.BranchID != nil {
			branchID = *a.BranchID
		}
		policy, loc, err := s.reconciler.ResolvePolicy(ctx, claims.CompanyID, branchID)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		a.Status = DetermineStatus(a.CheckIn, a.CheckOut, policy, loc)
	}
	if req.Notes != nil {
		a.Notes = req.Notes
	}
	a.UpdatedBy = &claims.UserID

	if err := s.records.Update(ctx, a); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	slog.Info("attendance corrected", "attendance_id", a.ID, "updated_by", claims.UserID, "status", a.Status)
	return toAttendanceResponse(a), nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.records.Delete(ctx, id, companyID)
}

// GetPolicy implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetPolicy(ctx context.Context, branchID string) (attendance.PolicyResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return attendance.PolicyResponse{}, err
	}
	if _, err := s.branches.GetByID(ctx, branchID, companyID); err != nil {
		return attendance.PolicyResponse{}, err
	}

	stored, err := s.policies.GetByBranchID(ctx, branchID, companyID)
	if err != nil {
		return attendance.PolicyResponse{}, fmt.Errorf("failed to get attendance policy: %w", err)
	}
	if stored == nil {
		p := attendance.DefaultPolicy()
		p.BranchID = branchID
		return toPolicyResponse(p, true), nil
	}
	return toPolicyResponse(*stored, false), nil
}

// UpdatePolicy implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdatePolicy(ctx context.Context, req attendance.UpdatePolicyRequest) (attendance.PolicyResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return attendance.PolicyResponse{}, err
	}

	policy, err := req.ToPolicy()
	if err != nil {
		return attendance.PolicyResponse{}, err
	}
	if _, err := s.branches.GetByID(ctx, req.BranchID, companyID); err != nil {
		return attendance.PolicyResponse{}, err
	}
	policy.CompanyID = companyID

	saved, err := s.policies.Upsert(ctx, policy)
	if err != nil {
		return attendance.PolicyResponse{}, fmt.Errorf("failed to save attendance policy: %w", err)
	}
	return toPolicyResponse(saved, false), nil
}

// SyncDevices implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SyncDevices(ctx context.Context, req attendance.SyncRequest) (attendance.SyncResult, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return attendance.SyncResult{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.SyncResult{}, err
	}

	from, to := req.Window()
	return s.syncer.Sync(ctx, companyID, SyncWindow{
		DeviceIDs:  req.DeviceIDs,
		From:       from,
		To:         to,
		MarkAbsent: req.MarkAbsent,
	})
}

// ImportPunches implements attendance.AttendanceService. Rows are staged
// as punch logs of the given device; the next sync reconciles them.
func (s *AttendanceServiceImpl) ImportPunches(ctx context.Context, req attendance.ImportPunchesRequest) (attendance.ImportResult, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return attendance.ImportResult{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.ImportResult{}, err
	}

	d, err := s.devices.GetByID(ctx, req.DeviceID, companyID)
	if err != nil {
		return attendance.ImportResult{}, err
	}

	loc := time.UTC
	if d.Timezone != nil {
		if l, err := time.LoadLocation(*d.Timezone); err == nil {
			loc = l
		}
	}

	rows, invalid, err := excel.ReadPunches(req.File, loc)
	if err != nil {
		return attendance.ImportResult{}, errors.Join(attendance.ErrInvalidPunchFile, err)
	}

	receivedAt := time.Now().UTC()
	logs := make([]attendance.PunchLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, attendance.PunchLog{
			CompanyID:     companyID,
			DeviceID:      d.ID,
			DeviceUserPIN: r.EmployeeCode,
			Timestamp:     r.Timestamp.UTC(),
			Kind:          r.Kind,
			Source:        attendance.PunchSourceImport,
			ReceivedAt:    receivedAt,
		})
	}

	var staged int64
	if len(logs) > 0 {
		staged, err = s.punchLogs.BulkInsert(ctx, logs)
		if err != nil {
			return attendance.ImportResult{}, fmt.Errorf("failed to stage punch logs: %w", err)
		}
	}

	result := attendance.ImportResult{
		Rows:     len(rows) + len(invalid),
		Staged:   staged,
		BatchRef: uuid.NewString(),
	}
	if len(invalid) > 0 {
		result.Invalid = invalid
	}

	slog.Info("punch logs imported",
		"company_id", companyID,
		"device_id", d.ID,
		"batch_ref", result.BatchRef,
		"rows", result.Rows,
		"staged", staged,
		"invalid", len(invalid),
	)
	return result, nil
}

func toAttendanceResponse(a attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:                 a.ID,
		EmployeeID:         a.EmployeeID,
		Date:               a.Date.Format("2006-01-02"),
		CheckIn:            formatTime(a.CheckIn),
		CheckOut:           formatTime(a.CheckOut),
		Status:             string(a.Status),
		DeviceID:           a.DeviceID,
		LeaveApplicationID: a.LeaveApplicationID,
		Notes:              a.Notes,
		CreatedAt:          a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          a.UpdatedAt.Format(time.RFC3339),
	}
	if a.EmployeeName != nil {
		resp.EmployeeName = *a.EmployeeName
	}
	if a.EmployeeCode != nil {
		resp.EmployeeCode = *a.EmployeeCode
	}
	if worked := a.WorkedDuration(); worked > 0 {
		hours := math.Round(worked.Hours()*100) / 100
		resp.WorkingHours = &hours
	}
	return resp
}

func toPolicyResponse(p attendance.AttendancePolicy, isDefault bool) attendance.PolicyResponse {
	weekend := make([]int, 0, len(p.WeekendDays))
	for _, d := range p.WeekendDays {
		weekend = append(weekend, int(d))
	}
	return attendance.PolicyResponse{
		BranchID:             p.BranchID,
		WorkStart:            p.WorkStart.String(),
		WorkEnd:              p.WorkEnd.String(),
		LateThresholdMinutes: p.LateThresholdMinutes,
		HalfDayHours:         p.HalfDayHours,
		WeekendDays:          weekend,
		IsDefault:            isDefault,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
