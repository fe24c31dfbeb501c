package leave

import "context"

type LeaveService interface {
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	ListLeaveTypes(ctx context.Context) ([]LeaveTypeResponse, error)

	// Apply files a leave for the caller's own employee record.
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveApplicationResponse, error)
	ListApplications(ctx context.Context, filter LeaveFilter) (ListLeaveApplicationResponse, error)
	ListMyApplications(ctx context.Context, filter LeaveFilter) (ListLeaveApplicationResponse, error)
	GetApplication(ctx context.Context, id string) (LeaveApplicationResponse, error)

	// Approve marks every working day of the range on leave.
	Approve(ctx context.Context, id string) (LeaveApplicationResponse, error)
	Reject(ctx context.Context, req RejectLeaveRequest) (LeaveApplicationResponse, error)
	Cancel(ctx context.Context, id string) (LeaveApplicationResponse, error)
}
