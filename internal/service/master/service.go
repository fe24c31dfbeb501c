package master

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5/pgconn"
)

type MasterService interface {
	// Branch operations
	CreateBranch(ctx context.Context, req branch.CreateBranchRequest) (branch.BranchResponse, error)
	GetBranch(ctx context.Context, id string) (branch.BranchResponse, error)
	ListBranches(ctx context.Context) ([]branch.BranchResponse, error)
	UpdateBranch(ctx context.Context, req branch.UpdateBranchRequest) (branch.BranchResponse, error)
	DeleteBranch(ctx context.Context, id string) error

	// Department operations
	CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error)
	ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, id string) error
}

type masterServiceImpl struct {
	branchRepo     branch.BranchRepository
	departmentRepo department.DepartmentRepository
}

func NewMasterService(
	branchRepo branch.BranchRepository,
	departmentRepo department.DepartmentRepository,
) MasterService {
	return &masterServiceImpl{
		branchRepo:     branchRepo,
		departmentRepo: departmentRepo,
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// ==================== BRANCH OPERATIONS ====================

func (s *masterServiceImpl) CreateBranch(ctx context.Context, req branch.CreateBranchRequest) (branch.BranchResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return branch.BranchResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return branch.BranchResponse{}, err
	}
	req.CompanyID = companyID

	created, err := s.branchRepo.Create(ctx, branch.Branch{
		CompanyID: companyID,
		Name:      req.Name,
		Address:   req.Address,
		Timezone:  req.Timezone,
	})
	if err != nil {
		if pgCode(err) == "23505" {
			return branch.BranchResponse{}, branch.ErrBranchNameExists
		}
		return branch.BranchResponse{}, fmt.Errorf("failed to create branch: %w", err)
	}

	slog.Info("branch created", "branch_id", created.ID, "company_id", companyID, "timezone", created.Timezone)
	return branch.NewBranchResponse(created), nil
}

func (s *masterServiceImpl) GetBranch(ctx context.Context, id string) (branch.BranchResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return branch.BranchResponse{}, err
	}

	b, err := s.branchRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return branch.BranchResponse{}, err
	}
	return branch.NewBranchResponse(b), nil
}

func (s *masterServiceImpl) ListBranches(ctx context.Context) ([]branch.BranchResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	branches, err := s.branchRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	responses := make([]branch.BranchResponse, 0, len(branches))
	for _, b := range branches {
		responses = append(responses, branch.NewBranchResponse(b))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateBranch(ctx context.Context, req branch.UpdateBranchRequest) (branch.BranchResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return branch.BranchResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return branch.BranchResponse{}, err
	}
	req.CompanyID = companyID

	if err := s.branchRepo.Update(ctx, req); err != nil {
		if pgCode(err) == "23505" {
			return branch.BranchResponse{}, branch.ErrBranchNameExists
		}
		return branch.BranchResponse{}, err
	}
	return s.GetBranch(ctx, req.ID)
}

func (s *masterServiceImpl) DeleteBranch(ctx context.Context, id string) error {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.branchRepo.Delete(ctx, id, companyID); err != nil {
		// foreign_key_violation: employees or devices still point here
		if pgCode(err) == "23503" {
			return branch.ErrBranchInUse
		}
		return err
	}
	return nil
}

// ==================== DEPARTMENT OPERATIONS ====================

func (s *masterServiceImpl) CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	if req.BranchID != nil {
		if _, err := s.branchRepo.GetByID(ctx, *req.BranchID, companyID); err != nil {
			return department.DepartmentResponse{}, err
		}
	}
	if req.ParentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *req.ParentID, companyID); err != nil {
			if errors.Is(err, department.ErrDepartmentNotFound) {
				return department.DepartmentResponse{}, department.ErrParentNotFound
			}
			return department.DepartmentResponse{}, err
		}
	}

	created, err := s.departmentRepo.Create(ctx, department.Department{
		CompanyID: companyID,
		BranchID:  req.BranchID,
		ParentID:  req.ParentID,
		Name:      req.Name,
	})
	if err != nil {
		if pgCode(err) == "23505" {
			return department.DepartmentResponse{}, department.ErrDepartmentNameExists
		}
		return department.DepartmentResponse{}, fmt.Errorf("failed to create department: %w", err)
	}
	return department.NewDepartmentResponse(created), nil
}

func (s *masterServiceImpl) GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	d, err := s.departmentRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return department.NewDepartmentResponse(d), nil
}

func (s *masterServiceImpl) ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	departments, err := s.departmentRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	responses := make([]department.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		responses = append(responses, department.NewDepartmentResponse(d))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateDepartment(ctx context.Context, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	d, err := s.departmentRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.BranchID != nil {
		if _, err := s.branchRepo.GetByID(ctx, *req.BranchID, companyID); err != nil {
			return department.DepartmentResponse{}, err
		}
		d.BranchID = req.BranchID
	}
	if req.ParentID != nil {
		if err := s.checkParent(ctx, d.ID, *req.ParentID, companyID); err != nil {
			return department.DepartmentResponse{}, err
		}
		d.ParentID = req.ParentID
	}

	if err := s.departmentRepo.Update(ctx, d); err != nil {
		if pgCode(err) == "23505" {
			return department.DepartmentResponse{}, department.ErrDepartmentNameExists
		}
		return department.DepartmentResponse{}, fmt.Errorf("failed to update department: %w", err)
	}
	return department.NewDepartmentResponse(d), nil
}

func (s *masterServiceImpl) DeleteDepartment(ctx context.Context, id string) error {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.departmentRepo.Delete(ctx, id, companyID)
}

// checkParent rejects a parent that is missing or that descends from id.
func (s *masterServiceImpl) checkParent(ctx context.Context, id, parentID, companyID string) error {
	if parentID == id {
		return department.ErrSelfParent
	}

	all, err := s.departmentRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to load departments: %w", err)
	}
	parents := make(map[string]*string, len(all))
	for _, d := range all {
		parents[d.ID] = d.ParentID
	}
	if _, ok := parents[parentID]; !ok {
		return department.ErrParentNotFound
	}

	seen := map[string]bool{}
	for cur := &parentID; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return department.ErrParentCycle
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true
	}
	return nil
}
