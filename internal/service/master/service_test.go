package master

import (
	"context"
	"fmt"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "company-1"

type fakeBranchRepo struct {
	rows      map[string]branch.Branch
	createErr error
	deleteErr error
}

func (f *fakeBranchRepo) Create(ctx context.Context, b branch.Branch) (branch.Branch, error) {
	if f.createErr != nil {
		return branch.Branch{}, f.createErr
	}
	b.ID = fmt.Sprintf("0190a7c0-0000-7000-8000-%012d", len(f.rows)+1)
	f.rows[b.ID] = b
	return b, nil
}

func (f *fakeBranchRepo) GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error) {
	b, ok := f.rows[id]
	if !ok || b.CompanyID != companyID {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

func (f *fakeBranchRepo) GetByCompanyID(ctx context.Context, companyID string) ([]branch.Branch, error) {
	var out []branch.Branch
	for _, b := range f.rows {
		if b.CompanyID == companyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBranchRepo) Update(ctx context.Context, req branch.UpdateBranchRequest) error {
	b, ok := f.rows[req.ID]
	if !ok {
		return branch.ErrBranchNotFound
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Timezone != nil {
		b.Timezone = *req.Timezone
	}
	f.rows[req.ID] = b
	return nil
}

func (f *fakeBranchRepo) Delete(ctx context.Context, id string, companyID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeBranchRepo) GetTimezone(ctx context.Context, id string, companyID string) (string, error) {
	b, err := f.GetByID(ctx, id, companyID)
	return b.Timezone, err
}

type fakeDepartmentRepo struct {
	rows map[string]department.Department
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, d department.Department) (department.Department, error) {
	d.ID = fmt.Sprintf("0190a7c0-0000-7000-8000-%012d", 100+len(f.rows))
	f.rows[d.ID] = d
	return d, nil
}

func (f *fakeDepartmentRepo) GetByID(ctx context.Context, id string, companyID string) (department.Department, error) {
	d, ok := f.rows[id]
	if !ok || d.CompanyID != companyID {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	return d, nil
}

func (f *fakeDepartmentRepo) GetByCompanyID(ctx context.Context, companyID string) ([]department.Department, error) {
	var out []department.Department
	for _, d := range f.rows {
		if d.CompanyID == companyID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDepartmentRepo) Update(ctx context.Context, d department.Department) error {
	f.rows[d.ID] = d
	return nil
}

func (f *fakeDepartmentRepo) Delete(ctx context.Context, id string, companyID string) error {
	delete(f.rows, id)
	return nil
}

func newMasterFixture() (MasterService, *fakeBranchRepo, *fakeDepartmentRepo) {
	branches := &fakeBranchRepo{rows: make(map[string]branch.Branch)}
	departments := &fakeDepartmentRepo{rows: make(map[string]department.Department)}
	return NewMasterService(branches, departments), branches, departments
}

func ownerContext() context.Context {
	return jwt.NewContext(context.Background(), jwt.Claims{
		UserID:    "user-owner",
		CompanyID: testCompanyID,
		Role:      user.RoleOwner,
	})
}

func TestCreateBranch_DefaultsTimezone(t *testing.T) {
	svc, _, _ := newMasterFixture()

	resp, err := svc.CreateBranch(ownerContext(), branch.CreateBranchRequest{Name: "Head Office"})
	require.NoError(t, err)
	assert.Equal(t, branch.DefaultTimezone, resp.Timezone)
	assert.Equal(t, testCompanyID, resp.CompanyID)
}

func TestCreateBranch_InvalidTimezone(t *testing.T) {
	svc, _, _ := newMasterFixture()

	_, err := svc.CreateBranch(ownerContext(), branch.CreateBranchRequest{Name: "Mars", Timezone: "Mars/Olympus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestCreateBranch_DuplicateName(t *testing.T) {
	svc, branches, _ := newMasterFixture()
	branches.createErr = &pgconn.PgError{Code: "23505"}

	_, err := svc.CreateBranch(ownerContext(), branch.CreateBranchRequest{Name: "Head Office"})
	assert.ErrorIs(t, err, branch.ErrBranchNameExists)
}

func TestDeleteBranch_InUse(t *testing.T) {
	svc, branches, _ := newMasterFixture()
	branches.deleteErr = &pgconn.PgError{Code: "23503"}

	err := svc.DeleteBranch(ownerContext(), "0190a7c0-0000-7000-8000-000000000001")
	assert.ErrorIs(t, err, branch.ErrBranchInUse)
}

func TestUpdateBranch_ChangesTimezone(t *testing.T) {
	svc, _, _ := newMasterFixture()
	created, err := svc.CreateBranch(ownerContext(), branch.CreateBranchRequest{Name: "Jakarta"})
	require.NoError(t, err)

	tz := "Asia/Jakarta"
	resp, err := svc.UpdateBranch(ownerContext(), branch.UpdateBranchRequest{ID: created.ID, Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, tz, resp.Timezone)
}

func TestCreateDepartment_ParentMustExist(t *testing.T) {
	svc, _, _ := newMasterFixture()
	missing := "0190a7c0-0000-7000-8000-000000000999"

	_, err := svc.CreateDepartment(ownerContext(), department.CreateDepartmentRequest{Name: "Ops", ParentID: &missing})
	assert.ErrorIs(t, err, department.ErrParentNotFound)
}

func TestUpdateDepartment_RejectsCycle(t *testing.T) {
	svc, _, _ := newMasterFixture()
	ctx := ownerContext()

	root, err := svc.CreateDepartment(ctx, department.CreateDepartmentRequest{Name: "Operations"})
	require.NoError(t, err)
	child, err := svc.CreateDepartment(ctx, department.CreateDepartmentRequest{Name: "Warehouse", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.CreateDepartment(ctx, department.CreateDepartmentRequest{Name: "Night Shift", ParentID: &child.ID})
	require.NoError(t, err)

	_, err = svc.UpdateDepartment(ctx, department.UpdateDepartmentRequest{ID: root.ID, ParentID: &grandchild.ID})
	assert.ErrorIs(t, err, department.ErrParentCycle)

	_, err = svc.UpdateDepartment(ctx, department.UpdateDepartmentRequest{ID: root.ID, ParentID: &root.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent_id")

	name := "Logistics"
	resp, err := svc.UpdateDepartment(ctx, department.UpdateDepartmentRequest{ID: grandchild.ID, ParentID: &root.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *resp.ParentID)
	assert.Equal(t, "Logistics", resp.Name)
}
