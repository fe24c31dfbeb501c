package department

import "time"

// Department groups employees. ParentID forms a tree within one company.
type Department struct {
	ID        string
	CompanyID string
	BranchID  *string
	ParentID  *string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
