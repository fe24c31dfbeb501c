package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.company_id, e.branch_id, e.department_id, e.user_id, e.employee_code, e.full_name,
	e.email, e.phone_number, e.hire_date, e.resignation_date, e.employment_type, e.status,
	e.bank_account, e.documents, e.created_at, e.updated_at, e.deleted_at,
	b.name, d.name`

const employeeFrom = `
	FROM employees e
	JOIN branches b ON b.id = e.branch_id
	LEFT JOIN departments d ON d.id = e.department_id`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.BranchID, &e.DepartmentID, &e.UserID, &e.EmployeeCode, &e.FullName,
		&e.Email, &e.PhoneNumber, &e.HireDate, &e.ResignationDate, &e.EmploymentType, &e.Status,
		&e.BankAccount, &e.Documents, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
		&e.BranchName, &e.DepartmentName,
	)
	return e, err
}

func documentsOrEmpty(docs []employee.Attachment) []employee.Attachment {
	if docs == nil {
		return []employee.Attachment{}
	}
	return docs
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (
			company_id, branch_id, department_id, user_id, employee_code, full_name,
			email, phone_number, hire_date, resignation_date, employment_type, status,
			bank_account, documents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		e.CompanyID, e.BranchID, e.DepartmentID, e.UserID, e.EmployeeCode, e.FullName,
		e.Email, e.PhoneNumber, e.HireDate, e.ResignationDate, e.EmploymentType, e.Status,
		e.BankAccount, documentsOrEmpty(e.Documents),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + employeeFrom + `
		WHERE e.id = $1 AND e.company_id = $2 AND e.deleted_at IS NULL`
	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter, companyID string) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "e.company_id = $1 AND e.deleted_at IS NULL"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		where += fmt.Sprintf(" AND (e.full_name ILIKE $%d OR e.employee_code ILIKE $%d OR e.email ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		where += fmt.Sprintf(" AND e.branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.DepartmentID != nil && *filter.DepartmentID != "" {
		where += fmt.Sprintf(" AND e.department_id = $%d", argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND e.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees e WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	orderByField := "e.full_name"
	switch filter.SortBy {
	case "employee_code":
		orderByField = "e.employee_code"
	case "hire_date":
		orderByField = "e.hire_date"
	case "created_at":
		orderByField = "e.created_at"
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY %s %s, e.id
		LIMIT $%d OFFSET $%d
	`, employeeColumns, employeeFrom, where, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	employees, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *employeeRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employees: %w", err)
	}
	return employees, nil
}

// Update implements employee.EmployeeRepository. The whole row is written.
func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees SET
			branch_id = $1, department_id = $2, user_id = $3, employee_code = $4, full_name = $5,
			email = $6, phone_number = $7, hire_date = $8, resignation_date = $9,
			employment_type = $10, status = $11, bank_account = $12, documents = $13,
			updated_at = NOW()
		WHERE id = $14 AND company_id = $15 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query,
		e.BranchID, e.DepartmentID, e.UserID, e.EmployeeCode, e.FullName,
		e.Email, e.PhoneNumber, e.HireDate, e.ResignationDate,
		e.EmploymentType, e.Status, e.BankAccount, documentsOrEmpty(e.Documents),
		e.ID, e.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// SoftDelete implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) SoftDelete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`
	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// ExistsByCode implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ExistsByCode(ctx context.Context, companyID string, code string, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM employees
			WHERE company_id = $1 AND employee_code = $2 AND deleted_at IS NULL
			  AND ($3 = '' OR id::text <> $3)
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, companyID, code, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee code: %w", err)
	}
	return exists, nil
}

// ListByCodes implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListByCodes(ctx context.Context, companyID string, codes []string) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + employeeFrom + `
		WHERE e.company_id = $1 AND e.employee_code = ANY($2) AND e.deleted_at IS NULL`
	return r.query(ctx, query, companyID, codes)
}

// ListActiveByBranch implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActiveByBranch(ctx context.Context, companyID string, branchID string) ([]employee.Employee, error) {
	query := `SELECT ` + employeeColumns + employeeFrom + `
		WHERE e.company_id = $1 AND e.branch_id = $2 AND e.status = 'active' AND e.deleted_at IS NULL
		ORDER BY e.employee_code`
	return r.query(ctx, query, companyID, branchID)
}

// UpdateBranch implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateBranch(ctx context.Context, id string, branchID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE employees SET branch_id = $1, updated_at = NOW()
		WHERE id = $2 AND company_id = $3 AND deleted_at IS NULL
	`, branchID, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to update employee branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
