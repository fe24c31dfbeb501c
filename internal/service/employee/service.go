package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type BranchLookup interface {
	GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error)
}

type DepartmentLookup interface {
	GetByID(ctx context.Context, id string, companyID string) (department.Department, error)
}

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	branches     BranchLookup
	departments  DepartmentLookup
	files        storage.FileStorage
	now          func() time.Time
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	branches BranchLookup,
	departments DepartmentLookup,
	files storage.FileStorage,
) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		branches:     branches,
		departments:  departments,
		files:        files,
		now:          time.Now,
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	rows, total, err := s.employeeRepo.List(ctx, filter, companyID)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	resp := employee.ListEmployeeResponse{
		Page:      pagination.New(total, filter.Page, filter.Limit),
		Employees: make([]employee.EmployeeResponse, 0, len(rows)),
	}
	for _, e := range rows {
		resp.Employees = append(resp.Employees, employee.NewEmployeeResponse(e))
	}
	return resp, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// GetMyProfile implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMyProfile(ctx context.Context) (employee.EmployeeResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if claims.EmployeeID == "" {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	e, err := s.employeeRepo.GetByID(ctx, claims.EmployeeID, claims.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.checkPlacement(ctx, companyID, &req.BranchID, req.DepartmentID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	exists, err := s.employeeRepo.ExistsByCode(ctx, companyID, req.EmployeeCode, "")
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee code: %w", err)
	}
	if exists {
		return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
	}

	created, err := s.employeeRepo.Create(ctx, req.ToEmployee(companyID))
	if err != nil {
		return employee.EmployeeResponse{}, mapUniqueViolation(err, "failed to create employee")
	}

	slog.Info("employee created", "employee_id", created.ID, "company_id", companyID, "employee_code", created.EmployeeCode)
	return employee.NewEmployeeResponse(created), nil
}

// UpdateEmployee implements employee.EmployeeService. Setting a resigned or
// terminated status without a date stamps today.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := s.checkPlacement(ctx, companyID, nil, req.DepartmentID); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.EmployeeCode != nil && *req.EmployeeCode != e.EmployeeCode {
		exists, err := s.employeeRepo.ExistsByCode(ctx, companyID, *req.EmployeeCode, e.ID)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee code: %w", err)
		}
		if exists {
			return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
		}
	}

	req.Apply(&e)
	if e.Status != employee.StatusActive && e.ResignationDate == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		e.ResignationDate = &today
	}

	if err := s.employeeRepo.Update(ctx, e); err != nil {
		return employee.EmployeeResponse{}, mapUniqueViolation(err, "failed to update employee")
	}
	return employee.NewEmployeeResponse(e), nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if claims.EmployeeID == id {
		return employee.ErrCannotDeleteSelf
	}

	if err := s.employeeRepo.SoftDelete(ctx, id, claims.CompanyID); err != nil {
		return err
	}
	slog.Info("employee deleted", "employee_id", id, "deleted_by", claims.UserID)
	return nil
}

// UploadDocument implements employee.EmployeeService. A document with the
// same name is replaced.
func (s *EmployeeServiceImpl) UploadDocument(ctx context.Context, req employee.UploadDocumentRequest) (employee.EmployeeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.Size > employee.MaxDocumentSize {
		return employee.EmployeeResponse{}, employee.ErrDocumentTooLarge
	}

	e, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	// Sniff instead of trusting the client's header.
	body, contentType := storage.Sniff(req.File, employee.MaxDocumentSize+1)
	ext, ok := employee.DocumentContentTypes[contentType]
	if !ok {
		return employee.EmployeeResponse{}, employee.ErrDocumentType
	}

	key := fmt.Sprintf("companies/%s/employees/%s/%s%s", companyID, e.ID, uuid.NewString(), ext)
	key, err = s.files.Save(ctx, body, key)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to store document: %w", err)
	}

	doc := employee.Attachment{
		Name:        req.Name,
		URL:         s.files.URL(key),
		ContentType: contentType,
		UploadedAt:  s.now().UTC(),
	}
	var replaced *employee.Attachment
	docs := make([]employee.Attachment, 0, len(e.Documents)+1)
	for _, d := range e.Documents {
		if d.Name == req.Name {
			replaced = &d
			continue
		}
		docs = append(docs, d)
	}
	e.Documents = append(docs, doc)

	if err := s.employeeRepo.Update(ctx, e); err != nil {
		_ = s.files.Remove(ctx, key)
		return employee.EmployeeResponse{}, fmt.Errorf("failed to attach document: %w", err)
	}
	if replaced != nil {
		s.removeStored(ctx, *replaced)
	}
	return employee.NewEmployeeResponse(e), nil
}

// RemoveDocument implements employee.EmployeeService.
func (s *EmployeeServiceImpl) RemoveDocument(ctx context.Context, id string, name string) (employee.EmployeeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	idx := -1
	for i, d := range e.Documents {
		if d.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return employee.EmployeeResponse{}, employee.ErrDocumentNotFound
	}
	removed := e.Documents[idx]
	e.Documents = append(e.Documents[:idx:idx], e.Documents[idx+1:]...)

	if err := s.employeeRepo.Update(ctx, e); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to detach document: %w", err)
	}
	s.removeStored(ctx, removed)
	return employee.NewEmployeeResponse(e), nil
}

// removeStored deletes the file behind a document URL we issued. Failures
// only leave an orphan file behind.
func (s *EmployeeServiceImpl) removeStored(ctx context.Context, d employee.Attachment) {
	prefix := s.files.URL("")
	if !strings.HasPrefix(d.URL, prefix) {
		return
	}
	if err := s.files.Remove(ctx, strings.TrimPrefix(d.URL, prefix)); err != nil {
		slog.Warn("failed to remove stored document", "url", d.URL, "error", err)
	}
}

// checkPlacement verifies that the branch and department belong to the company.
func (s *EmployeeServiceImpl) checkPlacement(ctx context.Context, companyID string, branchID, departmentID *string) error {
	if branchID != nil {
		if _, err := s.branches.GetByID(ctx, *branchID, companyID); err != nil {
			if errors.Is(err, branch.ErrBranchNotFound) {
				return employee.ErrBranchNotFound
			}
			return err
		}
	}
	if departmentID != nil {
		if _, err := s.departments.GetByID(ctx, *departmentID, companyID); err != nil {
			if errors.Is(err, department.ErrDepartmentNotFound) {
				return employee.ErrDepartmentNotFound
			}
			return err
		}
	}
	return nil
}

func mapUniqueViolation(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return employee.ErrEmailExists
		}
		return employee.ErrEmployeeCodeExists
	}
	return fmt.Errorf("%s: %w", msg, err)
}
