package branch

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// BranchResponse represents the response structure for a branch.
type BranchResponse struct {
	ID        string  `json:"id"`
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	Timezone  string  `json:"timezone"`
	CreatedAt string  `json:"created_at"`
}

func NewBranchResponse(b Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		CompanyID: b.CompanyID,
		Name:      b.Name,
		Address:   b.Address,
		Timezone:  b.Timezone,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

// CreateBranchRequest represents the request structure for creating a branch.
type CreateBranchRequest struct {
	CompanyID string  `json:"-"` // From JWT
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	Timezone  string  `json:"timezone"`
}

func (r *CreateBranchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	if r.Timezone == "" {
		r.Timezone = DefaultTimezone
	}
	if !validator.IsValidTimezone(r.Timezone) {
		errs.Add("timezone", "timezone must be a valid IANA timezone, e.g. Asia/Jakarta")
	}

	return errs.Err()
}

// UpdateBranchRequest represents the request structure for updating a branch.
type UpdateBranchRequest struct {
	ID        string  `json:"-"`
	CompanyID string  `json:"-"` // From JWT
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
}

func (r *UpdateBranchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		}
		if len(*r.Name) > 100 {
			errs.Add("name", "name must not exceed 100 characters")
		}
	}

	if r.Address != nil && validator.IsEmpty(*r.Address) {
		errs.Add("address", "address must not be empty")
	}

	if r.Timezone != nil && !validator.IsValidTimezone(*r.Timezone) {
		errs.Add("timezone", "timezone must be a valid IANA timezone, e.g. Asia/Jakarta")
	}

	return errs.Err()
}
