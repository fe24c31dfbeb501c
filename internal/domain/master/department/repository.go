package department

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, d Department) (Department, error)
	GetByID(ctx context.Context, id string, companyID string) (Department, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]Department, error)
	Update(ctx context.Context, d Department) error
	Delete(ctx context.Context, id string, companyID string) error
}
