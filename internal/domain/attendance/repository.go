package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods take companyID so one tenant can never read another's rows.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)
	GetByID(ctx context.Context, id string, companyID string) (Attendance, error)

	// GetByEmployeeAndDate returns nil, nil when no record exists for the day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*Attendance, error)

	Update(ctx context.Context, attendance Attendance) error
	Delete(ctx context.Context, id string, companyID string) error
	List(ctx context.Context, filter AttendanceFilter, companyID string) ([]Attendance, int64, error)
}

type PolicyRepository interface {
	// GetByBranchID returns nil, nil when the branch has no policy configured.
	GetByBranchID(ctx context.Context, branchID string, companyID string) (*AttendancePolicy, error)
	Upsert(ctx context.Context, policy AttendancePolicy) (AttendancePolicy, error)
}

type PunchLogRepository interface {
	// BulkInsert stages logs, ignoring duplicates of (device, pin, timestamp).
	// It returns the number of rows actually inserted.
	BulkInsert(ctx context.Context, logs []PunchLog) (int64, error)
	ListByDevice(ctx context.Context, deviceID string, from, to time.Time) ([]PunchLog, error)
}
