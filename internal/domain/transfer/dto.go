package transfer

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type TransferResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	FromBranchID    string  `json:"from_branch_id"`
	FromBranchName  *string `json:"from_branch_name,omitempty"`
	ToBranchID      string  `json:"to_branch_id"`
	ToBranchName    *string `json:"to_branch_name,omitempty"`
	EffectiveDate   string  `json:"effective_date"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	RequestedBy     string  `json:"requested_by"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func NewTransferResponse(t Transfer) TransferResponse {
	resp := TransferResponse{
		ID:              t.ID,
		EmployeeID:      t.EmployeeID,
		EmployeeName:    t.EmployeeName,
		FromBranchID:    t.FromBranchID,
		FromBranchName:  t.FromBranchName,
		ToBranchID:      t.ToBranchID,
		ToBranchName:    t.ToBranchName,
		EffectiveDate:   t.EffectiveDate.Format("2006-01-02"),
		Reason:          t.Reason,
		Status:          string(t.Status),
		RequestedBy:     t.RequestedBy,
		ReviewedBy:      t.ReviewedBy,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
	if t.ReviewedAt != nil {
		s := t.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}

type CreateTransferRequest struct {
	EmployeeID    string `json:"employee_id"`
	ToBranchID    string `json:"to_branch_id"`
	EffectiveDate string `json:"effective_date"` // YYYY-MM-DD
	Reason        string `json:"reason"`

	effective time.Time
}

func (r *CreateTransferRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if !validator.IsValidUUID(r.ToBranchID) {
		errs.Add("to_branch_id", "to_branch_id must be a valid UUID")
	}
	effective, ok := validator.IsValidDate(r.EffectiveDate)
	if !ok {
		errs.Add("effective_date", "effective_date must be in YYYY-MM-DD format")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 500 {
		errs.Add("reason", "reason must not exceed 500 characters")
	}

	if len(errs) > 0 {
		return errs
	}
	r.effective = effective
	return nil
}

// Effective returns the validated effective date.
func (r *CreateTransferRequest) Effective() time.Time {
	return r.effective
}

type RejectTransferRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectTransferRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 500 {
		errs.Add("reason", "reason must not exceed 500 characters")
	}

	return errs.Err()
}

type TransferFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	BranchID   *string `json:"branch_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *TransferFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = pagination.DefaultLimit
	}
	if f.Limit > pagination.MaxLimit {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.BranchID != nil && !validator.IsValidUUID(*f.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}

	return errs.Err()
}

type ListTransferResponse struct {
	pagination.Page
	Transfers []TransferResponse `json:"transfers"`
}
