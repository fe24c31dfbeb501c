package leave

import (
	"context"
	"time"
)

type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string, companyID string) (LeaveType, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]LeaveType, error)
}

type LeaveApplicationRepository interface {
	Create(ctx context.Context, app LeaveApplication) (LeaveApplication, error)
	GetByID(ctx context.Context, id string, companyID string) (LeaveApplication, error)
	List(ctx context.Context, filter LeaveFilter, companyID string) ([]LeaveApplication, int64, error)

	// UpdateStatus writes status and review fields.
	UpdateStatus(ctx context.Context, app LeaveApplication) error

	// HasOverlap reports a pending or approved application of the employee
	// that intersects [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time, companyID string) (bool, error)
}
