package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	Create(ctx context.Context, newCompany Company) (Company, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, c Company) error
	// ListIDs returns every tenant; background jobs iterate over it.
	ListIDs(ctx context.Context) ([]string, error)
}
