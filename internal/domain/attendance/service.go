package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	// ListMyAttendance lists the caller's own records; filter.EmployeeID is ignored.
	ListMyAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// UpdateAttendance is the manual correction path for admins.
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
	DeleteAttendance(ctx context.Context, id string) error

	GetPolicy(ctx context.Context, branchID string) (PolicyResponse, error)
	UpdatePolicy(ctx context.Context, req UpdatePolicyRequest) (PolicyResponse, error)

	// SyncDevices reconciles staged device punches into attendance records.
	SyncDevices(ctx context.Context, req SyncRequest) (SyncResult, error)

	// ImportPunches stages punches from an uploaded spreadsheet.
	ImportPunches(ctx context.Context, req ImportPunchesRequest) (ImportResult, error)
}
