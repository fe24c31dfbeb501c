package leave

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	attendancesvc "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "company-1"
	annualTypeID  = "0190a7c0-0000-7000-8000-00000000a001"
	sickTypeID    = "0190a7c0-0000-7000-8000-00000000a002"
	employeeID    = "0190a7c0-0000-7000-8000-00000000e001"
	managerEmpID  = "0190a7c0-0000-7000-8000-00000000e002"
)

type noopTx struct{}

func (noopTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTypes map[string]leave.LeaveType

func (f fakeTypes) Create(ctx context.Context, t leave.LeaveType) (leave.LeaveType, error) {
	t.ID = fmt.Sprintf("type-%d", len(f)+1)
	f[t.ID] = t
	return t, nil
}

func (f fakeTypes) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveType, error) {
	t, ok := f[id]
	if !ok || t.CompanyID != companyID {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return t, nil
}

func (f fakeTypes) GetByCompanyID(ctx context.Context, companyID string) ([]leave.LeaveType, error) {
	var out []leave.LeaveType
	for _, t := range f {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeApps struct {
	apps      map[string]leave.LeaveApplication
	updateErr error
}

func newFakeApps() *fakeApps {
	return &fakeApps{apps: make(map[string]leave.LeaveApplication)}
}

func (f *fakeApps) Create(ctx context.Context, app leave.LeaveApplication) (leave.LeaveApplication, error) {
	app.ID = fmt.Sprintf("0190a7c0-0000-7000-8000-%012d", len(f.apps)+1)
	app.CreatedAt = time.Now()
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeApps) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveApplication, error) {
	a, ok := f.apps[id]
	if !ok || a.CompanyID != companyID {
		return leave.LeaveApplication{}, leave.ErrApplicationNotFound
	}
	return a, nil
}

func (f *fakeApps) List(ctx context.Context, filter leave.LeaveFilter, companyID string) ([]leave.LeaveApplication, int64, error) {
	var out []leave.LeaveApplication
	for _, a := range f.apps {
		if a.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeApps) UpdateStatus(ctx context.Context, app leave.LeaveApplication) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.apps[app.ID] = app
	return nil
}

func (f *fakeApps) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, companyID string) (bool, error) {
	for _, a := range f.apps {
		if a.EmployeeID != employeeID || a.CompanyID != companyID {
			continue
		}
		if a.Status != leave.StatusPending && a.Status != leave.StatusApproved {
			continue
		}
		if !a.StartDate.After(end) && !a.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type fakeStamper struct {
	stamps []attendancesvc.LeaveStamp
	err    error
}

func (f *fakeStamper) MarkOnLeave(ctx context.Context, s attendancesvc.LeaveStamp) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.stamps = append(f.stamps, s)
	return int(s.To.Sub(s.From).Hours()/24) + 1, nil
}

type leaveFixture struct {
	svc     *LeaveServiceImpl
	apps    *fakeApps
	stamper *fakeStamper
}

func newLeaveFixture(t *testing.T) leaveFixture {
	t.Helper()
	types := fakeTypes{
		annualTypeID: {ID: annualTypeID, CompanyID: testCompanyID, Name: "Annual", Code: "AL", RequiresApproval: true},
		sickTypeID:   {ID: sickTypeID, CompanyID: testCompanyID, Name: "Sick", Code: "SL", RequiresApproval: false},
	}
	employees := fakeEmployees{
		employeeID:   {ID: employeeID, CompanyID: testCompanyID, BranchID: "branch-1"},
		managerEmpID: {ID: managerEmpID, CompanyID: testCompanyID, BranchID: "branch-1"},
	}
	apps := newFakeApps()
	stamper := &fakeStamper{}

	svc := NewLeaveService(types, apps, employees, stamper, noopTx{})
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return leaveFixture{svc: svc, apps: apps, stamper: stamper}
}

func employeeContext() context.Context {
	return jwt.NewContext(context.Background(), jwt.Claims{
		UserID:     "user-employee",
		EmployeeID: employeeID,
		CompanyID:  testCompanyID,
		Role:       user.RoleEmployee,
	})
}

func managerContext() context.Context {
	return jwt.NewContext(context.Background(), jwt.Claims{
		UserID:     "user-manager",
		EmployeeID: managerEmpID,
		CompanyID:  testCompanyID,
		Role:       user.RoleManager,
	})
}

func applyAnnual(t *testing.T, f leaveFixture, start, end string) leave.LeaveApplicationResponse {
	t.Helper()
	resp, err := f.svc.Apply(employeeContext(), leave.ApplyLeaveRequest{
		LeaveTypeID: annualTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      "family trip",
	})
	require.NoError(t, err)
	return resp
}

func TestApply_CreatesPendingApplication(t *testing.T) {
	f := newLeaveFixture(t)

	resp := applyAnnual(t, f, "2024-06-10", "2024-06-12")

	assert.Equal(t, string(leave.StatusPending), resp.Status)
	assert.Equal(t, employeeID, resp.EmployeeID)
	assert.Equal(t, 3, resp.Days)
	require.NotNil(t, resp.LeaveTypeName)
	assert.Equal(t, "Annual", *resp.LeaveTypeName)
	assert.Empty(t, f.stamper.stamps)
}

func TestApply_OverlapRejected(t *testing.T) {
	f := newLeaveFixture(t)
	applyAnnual(t, f, "2024-06-10", "2024-06-12")

	_, err := f.svc.Apply(employeeContext(), leave.ApplyLeaveRequest{
		LeaveTypeID: annualTypeID,
		StartDate:   "2024-06-12",
		EndDate:     "2024-06-14",
		Reason:      "again",
	})
	assert.ErrorIs(t, err, leave.ErrOverlappingApplication)
}

func TestApply_AutoApprovesWhenTypeNeedsNoApproval(t *testing.T) {
	f := newLeaveFixture(t)

	resp, err := f.svc.Apply(employeeContext(), leave.ApplyLeaveRequest{
		LeaveTypeID: sickTypeID,
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-11",
		Reason:      "flu",
	})
	require.NoError(t, err)

	assert.Equal(t, string(leave.StatusApproved), resp.Status)
	require.Len(t, f.stamper.stamps, 1)
	assert.Equal(t, "branch-1", f.stamper.stamps[0].BranchID)
	assert.Equal(t, resp.ID, f.stamper.stamps[0].LeaveApplicationID)
}

func TestApply_RequiresEmployeeProfile(t *testing.T) {
	f := newLeaveFixture(t)
	ctx := jwt.NewContext(context.Background(), jwt.Claims{
		UserID:    "owner",
		CompanyID: testCompanyID,
		Role:      user.RoleOwner,
	})

	_, err := f.svc.Apply(ctx, leave.ApplyLeaveRequest{
		LeaveTypeID: annualTypeID,
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-10",
		Reason:      "x",
	})
	assert.ErrorIs(t, err, leave.ErrEmployeeProfileRequired)
}

func TestApply_InvalidRange(t *testing.T) {
	f := newLeaveFixture(t)

	_, err := f.svc.Apply(employeeContext(), leave.ApplyLeaveRequest{
		LeaveTypeID: annualTypeID,
		StartDate:   "2024-06-12",
		EndDate:     "2024-06-10",
		Reason:      "backwards",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_date")
}

func TestApprove_StampsAttendance(t *testing.T) {
	f := newLeaveFixture(t)
	applied := applyAnnual(t, f, "2024-06-10", "2024-06-14")

	resp, err := f.svc.Approve(managerContext(), applied.ID)
	require.NoError(t, err)

	assert.Equal(t, string(leave.StatusApproved), resp.Status)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, "user-manager", *resp.ReviewedBy)
	require.Len(t, f.stamper.stamps, 1)
	stamp := f.stamper.stamps[0]
	assert.Equal(t, employeeID, stamp.EmployeeID)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), stamp.From)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), stamp.To)
}

func TestApprove_OwnApplicationForbidden(t *testing.T) {
	f := newLeaveFixture(t)
	applied := applyAnnual(t, f, "2024-06-10", "2024-06-10")

	_, err := f.svc.Approve(employeeContext(), applied.ID)
	assert.ErrorIs(t, err, leave.ErrCannotReviewOwnApplication)
}

func TestApprove_NotPending(t *testing.T) {
	f := newLeaveFixture(t)
	applied := applyAnnual(t, f, "2024-06-10", "2024-06-10")
	_, err := f.svc.Approve(managerContext(), applied.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(managerContext(), applied.ID)
	assert.ErrorIs(t, err, leave.ErrApplicationNotPending)
}

func TestApprove_StampFailureSurfaces(t *testing.T) {
	f := newLeaveFixture(t)
	applied := applyAnnual(t, f, "2024-06-10", "2024-06-10")
	f.stamper.err = errors.New("attendance unavailable")

	_, err := f.svc.Approve(managerContext(), applied.ID)
	assert.EqualError(t, err, "attendance unavailable")
}

func TestReject_RecordsReason(t *testing.T) {
	f := newLeaveFixture(t)
	applied := applyAnnual(t, f, "2024-06-10", "2024-06-10")

	resp, err := f.svc.Reject(managerContext(), leave.RejectLeaveRequest{ID: applied.ID, Reason: "peak season"})
	require.NoError(t, err)

	assert.Equal(t, string(leave.StatusRejected), resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "peak season", *resp.RejectionReason)
	assert.Empty(t, f.stamper.stamps)
}

func TestCancel(t *testing.T) {
	f := newLeaveFixture(t)
	applied := applyAnnual(t, f, "2024-06-10", "2024-06-10")

	_, err := f.svc.Cancel(managerContext(), applied.ID)
	assert.ErrorIs(t, err, leave.ErrNotApplicationOwner)

	resp, err := f.svc.Cancel(employeeContext(), applied.ID)
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusCancelled), resp.Status)

	// a cancelled range can be applied for again
	applyAnnual(t, f, "2024-06-10", "2024-06-10")
}

func TestListMyApplications_ScopedToCaller(t *testing.T) {
	f := newLeaveFixture(t)
	applyAnnual(t, f, "2024-06-10", "2024-06-10")
	_, err := f.svc.Apply(managerContext(), leave.ApplyLeaveRequest{
		LeaveTypeID: annualTypeID,
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-10",
		Reason:      "manager leave",
	})
	require.NoError(t, err)

	mine, err := f.svc.ListMyApplications(employeeContext(), leave.LeaveFilter{})
	require.NoError(t, err)
	require.Len(t, mine.Applications, 1)
	assert.Equal(t, employeeID, mine.Applications[0].EmployeeID)

	all, err := f.svc.ListApplications(managerContext(), leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Applications, 2)
}

func TestCreateLeaveType_DefaultsToApproval(t *testing.T) {
	f := newLeaveFixture(t)

	resp, err := f.svc.CreateLeaveType(managerContext(), leave.CreateLeaveTypeRequest{Name: "Maternity", Code: " ml "})
	require.NoError(t, err)

	assert.Equal(t, "ML", resp.Code)
	assert.True(t, resp.RequiresApproval)
}
