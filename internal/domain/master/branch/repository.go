package branch

import "context"

type BranchRepository interface {
	Create(ctx context.Context, branch Branch) (Branch, error)
	GetByID(ctx context.Context, id string, companyID string) (Branch, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]Branch, error)
	Update(ctx context.Context, req UpdateBranchRequest) error
	// Delete fails with a foreign key violation while employees or devices
	// still reference the branch.
	Delete(ctx context.Context, id string, companyID string) error

	// GetTimezone returns the IANA zone punches of the branch are read in.
	GetTimezone(ctx context.Context, id string, companyID string) (string, error)
}
