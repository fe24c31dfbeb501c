package transfer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/transfer"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "company-1"
	jakartaID     = "0190a7c0-0000-7000-8000-00000000b001"
	surabayaID    = "0190a7c0-0000-7000-8000-00000000b002"
	employeeID    = "0190a7c0-0000-7000-8000-00000000e001"
)

// fakeTx records whether the callback ran to completion.
type fakeTx struct {
	committed bool
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	f.committed = true
	return nil
}

type fakeTransfers struct {
	rows map[string]transfer.Transfer
}

func (f *fakeTransfers) Create(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	t.ID = fmt.Sprintf("0190a7c0-0000-7000-8000-%012d", len(f.rows)+1)
	t.CreatedAt = time.Now()
	f.rows[t.ID] = t
	return t, nil
}

func (f *fakeTransfers) GetByID(ctx context.Context, id string, companyID string) (transfer.Transfer, error) {
	t, ok := f.rows[id]
	if !ok || t.CompanyID != companyID {
		return transfer.Transfer{}, transfer.ErrTransferNotFound
	}
	return t, nil
}

func (f *fakeTransfers) List(ctx context.Context, filter transfer.TransferFilter, companyID string) ([]transfer.Transfer, int64, error) {
	var out []transfer.Transfer
	for _, t := range f.rows {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTransfers) UpdateStatus(ctx context.Context, t transfer.Transfer) error {
	f.rows[t.ID] = t
	return nil
}

func (f *fakeTransfers) HasPending(ctx context.Context, employeeID string, companyID string) (bool, error) {
	for _, t := range f.rows {
		if t.EmployeeID == employeeID && t.CompanyID == companyID && t.Status == transfer.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

type fakeEmployees struct {
	rows    map[string]employee.Employee
	moveErr error
}

func (f *fakeEmployees) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	e, ok := f.rows[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployees) UpdateBranch(ctx context.Context, id string, branchID string, companyID string) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	e := f.rows[id]
	e.BranchID = branchID
	f.rows[id] = e
	return nil
}

type fakeBranches map[string]branch.Branch

func (f fakeBranches) GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error) {
	b, ok := f[id]
	if !ok || b.CompanyID != companyID {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

type transferFixture struct {
	svc       *TransferServiceImpl
	transfers *fakeTransfers
	employees *fakeEmployees
	tx        *fakeTx
}

func newTransferFixture(t *testing.T) transferFixture {
	t.Helper()
	transfers := &fakeTransfers{rows: make(map[string]transfer.Transfer)}
	employees := &fakeEmployees{rows: map[string]employee.Employee{
		employeeID: {ID: employeeID, CompanyID: testCompanyID, BranchID: jakartaID, FullName: "Budi", Status: employee.StatusActive},
	}}
	branches := fakeBranches{
		jakartaID:  {ID: jakartaID, CompanyID: testCompanyID, Name: "Jakarta"},
		surabayaID: {ID: surabayaID, CompanyID: testCompanyID, Name: "Surabaya"},
	}
	tx := &fakeTx{}
	return transferFixture{
		svc:       NewTransferService(transfers, employees, branches, tx),
		transfers: transfers,
		employees: employees,
		tx:        tx,
	}
}

func ownerContext() context.Context {
	return jwt.NewContext(context.Background(), jwt.Claims{
		UserID:    "user-owner",
		CompanyID: testCompanyID,
		Role:      user.RoleOwner,
	})
}

func requestSurabaya(t *testing.T, f transferFixture) transfer.TransferResponse {
	t.Helper()
	resp, err := f.svc.Request(ownerContext(), transfer.CreateTransferRequest{
		EmployeeID:    employeeID,
		ToBranchID:    surabayaID,
		EffectiveDate: "2024-07-01",
		Reason:        "new store opening",
	})
	require.NoError(t, err)
	return resp
}

func TestRequest(t *testing.T) {
	f := newTransferFixture(t)

	resp := requestSurabaya(t, f)

	assert.Equal(t, string(transfer.StatusPending), resp.Status)
	assert.Equal(t, jakartaID, resp.FromBranchID)
	assert.Equal(t, surabayaID, resp.ToBranchID)
	assert.Equal(t, "2024-07-01", resp.EffectiveDate)
	assert.Equal(t, jakartaID, f.employees.rows[employeeID].BranchID, "request alone must not move the employee")
}

func TestRequest_SameBranch(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.svc.Request(ownerContext(), transfer.CreateTransferRequest{
		EmployeeID:    employeeID,
		ToBranchID:    jakartaID,
		EffectiveDate: "2024-07-01",
		Reason:        "noop",
	})
	assert.ErrorIs(t, err, transfer.ErrSameBranch)
}

func TestRequest_OnePendingPerEmployee(t *testing.T) {
	f := newTransferFixture(t)
	requestSurabaya(t, f)

	_, err := f.svc.Request(ownerContext(), transfer.CreateTransferRequest{
		EmployeeID:    employeeID,
		ToBranchID:    surabayaID,
		EffectiveDate: "2024-08-01",
		Reason:        "duplicate",
	})
	assert.ErrorIs(t, err, transfer.ErrTransferAlreadyPending)
}

func TestRequest_UnknownBranch(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.svc.Request(ownerContext(), transfer.CreateTransferRequest{
		EmployeeID:    employeeID,
		ToBranchID:    "0190a7c0-0000-7000-8000-00000000b999",
		EffectiveDate: "2024-07-01",
		Reason:        "nowhere",
	})
	assert.ErrorIs(t, err, branch.ErrBranchNotFound)
}

func TestApprove_MovesEmployee(t *testing.T) {
	f := newTransferFixture(t)
	requested := requestSurabaya(t, f)

	resp, err := f.svc.Approve(ownerContext(), requested.ID)
	require.NoError(t, err)

	assert.Equal(t, string(transfer.StatusApproved), resp.Status)
	assert.Equal(t, surabayaID, f.employees.rows[employeeID].BranchID)
	assert.True(t, f.tx.committed)

	_, err = f.svc.Approve(ownerContext(), requested.ID)
	assert.ErrorIs(t, err, transfer.ErrTransferNotPending)
}

func TestApprove_MoveFailureRollsBack(t *testing.T) {
	f := newTransferFixture(t)
	requested := requestSurabaya(t, f)
	f.employees.moveErr = errors.New("connection reset")

	_, err := f.svc.Approve(ownerContext(), requested.ID)
	require.Error(t, err)
	assert.False(t, f.tx.committed)
	assert.Equal(t, jakartaID, f.employees.rows[employeeID].BranchID)
}

func TestReject(t *testing.T) {
	f := newTransferFixture(t)
	requested := requestSurabaya(t, f)

	_, err := f.svc.Reject(ownerContext(), transfer.RejectTransferRequest{ID: requested.ID})
	require.Error(t, err)

	resp, err := f.svc.Reject(ownerContext(), transfer.RejectTransferRequest{ID: requested.ID, Reason: "headcount frozen"})
	require.NoError(t, err)
	assert.Equal(t, string(transfer.StatusRejected), resp.Status)
	assert.Equal(t, jakartaID, f.employees.rows[employeeID].BranchID)
}
