package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// MaxLeaveDays bounds a single application.
const MaxLeaveDays = 90

type LeaveTypeResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Code             string `json:"code"`
	RequiresApproval bool   `json:"requires_approval"`
}

func NewLeaveTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:               t.ID,
		Name:             t.Name,
		Code:             t.Code,
		RequiresApproval: t.RequiresApproval,
	}
}

type CreateLeaveTypeRequest struct {
	Name             string `json:"name"`
	Code             string `json:"code"`
	RequiresApproval *bool  `json:"requires_approval,omitempty"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if r.Code == "" {
		errs.Add("code", "code is required")
	} else if len(r.Code) > 20 {
		errs.Add("code", "code must not exceed 20 characters")
	}

	if r.RequiresApproval == nil {
		t := true
		r.RequiresApproval = &t
	}

	return errs.Err()
}

type LeaveApplicationResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    *string `json:"employee_name,omitempty"`
	LeaveTypeID     string  `json:"leave_type_id"`
	LeaveTypeName   *string `json:"leave_type_name,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func NewLeaveApplicationResponse(a LeaveApplication) LeaveApplicationResponse {
	resp := LeaveApplicationResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		EmployeeName:    a.EmployeeName,
		LeaveTypeID:     a.LeaveTypeID,
		LeaveTypeName:   a.LeaveTypeName,
		StartDate:       a.StartDate.Format("2006-01-02"),
		EndDate:         a.EndDate.Format("2006-01-02"),
		Days:            a.Days(),
		Reason:          a.Reason,
		Status:          string(a.Status),
		ReviewedBy:      a.ReviewedBy,
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
	if a.ReviewedAt != nil {
		s := a.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
	Reason      string `json:"reason"`

	start time.Time
	end   time.Time
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.LeaveTypeID) {
		errs.Add("leave_type_id", "leave_type_id must be a valid UUID")
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd {
		if end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		} else if int(end.Sub(start).Hours()/24)+1 > MaxLeaveDays {
			errs.Add("end_date", "a single leave must not exceed 90 days")
		}
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 500 {
		errs.Add("reason", "reason must not exceed 500 characters")
	}

	if len(errs) > 0 {
		return errs
	}
	r.start, r.end = start, end
	return nil
}

// Range returns the validated dates.
func (r *ApplyLeaveRequest) Range() (start, end time.Time) {
	return r.start, r.end
}

type RejectLeaveRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectLeaveRequest) Validate() error {
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

type LeaveFilter struct {
	EmployeeID  *string `json:"employee_id,omitempty"`
	LeaveTypeID *string `json:"leave_type_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	From        *string `json:"from,omitempty"`
	To          *string `json:"to,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *LeaveFilter) Validate() error {
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
	if f.LeaveTypeID != nil && !validator.IsValidUUID(*f.LeaveTypeID) {
		errs.Add("leave_type_id", "leave_type_id must be a valid UUID")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if f.From != nil {
		if _, ok := validator.IsValidDate(*f.From); !ok {
			errs.Add("from", "from must be in YYYY-MM-DD format")
		}
	}
	if f.To != nil {
		if _, ok := validator.IsValidDate(*f.To); !ok {
			errs.Add("to", "to must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

type ListLeaveApplicationResponse struct {
	pagination.Page
	Applications []LeaveApplicationResponse `json:"applications"`
}
