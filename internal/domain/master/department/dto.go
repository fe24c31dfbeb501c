package department

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type DepartmentResponse struct {
	ID        string  `json:"id"`
	BranchID  *string `json:"branch_id,omitempty"`
	ParentID  *string `json:"parent_id,omitempty"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"created_at"`
}

func NewDepartmentResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        d.ID,
		BranchID:  d.BranchID,
		ParentID:  d.ParentID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

type CreateDepartmentRequest struct {
	BranchID *string `json:"branch_id,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
	Name     string  `json:"name"`
}

func (r *CreateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}
	if r.BranchID != nil && !validator.IsValidUUID(*r.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}
	if r.ParentID != nil && !validator.IsValidUUID(*r.ParentID) {
		errs.Add("parent_id", "parent_id must be a valid UUID")
	}

	return errs.Err()
}

type UpdateDepartmentRequest struct {
	ID       string  `json:"-"`
	BranchID *string `json:"branch_id,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
	Name     *string `json:"name,omitempty"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		} else if len(*r.Name) > 100 {
			errs.Add("name", "name must not exceed 100 characters")
		}
	}
	if r.BranchID != nil && !validator.IsValidUUID(*r.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}
	if r.ParentID != nil {
		if !validator.IsValidUUID(*r.ParentID) {
			errs.Add("parent_id", "parent_id must be a valid UUID")
		} else if *r.ParentID == r.ID {
			errs.Add("parent_id", ErrSelfParent.Error())
		}
	}

	return errs.Err()
}
