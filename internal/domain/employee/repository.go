package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter, companyID string) ([]Employee, int64, error)
	Update(ctx context.Context, e Employee) error
	SoftDelete(ctx context.Context, id string, companyID string) error

	// ExistsByCode reports whether another employee of the company already
	// uses code. excludeID may be empty.
	ExistsByCode(ctx context.Context, companyID string, code string, excludeID string) (bool, error)

	// ListByCodes resolves device PINs to employees.
	ListByCodes(ctx context.Context, companyID string, codes []string) ([]Employee, error)
	ListActiveByBranch(ctx context.Context, companyID string, branchID string) ([]Employee, error)
	UpdateBranch(ctx context.Context, id string, branchID string, companyID string) error
}
