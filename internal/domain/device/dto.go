package device

import (
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type DeviceResponse struct {
	ID           string  `json:"id"`
	BranchID     string  `json:"branch_id"`
	BranchName   *string `json:"branch_name,omitempty"`
	SerialNumber string  `json:"serial_number"`
	Name         string  `json:"name"`
	IPAddress    *string `json:"ip_address,omitempty"`
	Status       string  `json:"status"`
	LastSyncedAt *string `json:"last_synced_at,omitempty"`
	LastSeenAt   *string `json:"last_seen_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type CreateDeviceRequest struct {
	BranchID     string  `json:"branch_id"`
	SerialNumber string  `json:"serial_number"`
	Name         string  `json:"name"`
	IPAddress    *string `json:"ip_address,omitempty"`
}

func (r *CreateDeviceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}
	r.SerialNumber = strings.TrimSpace(r.SerialNumber)
	if !validator.IsValidSerialNumber(r.SerialNumber) {
		errs.Add("serial_number", "serial_number must be 4-64 letters, digits, '-' or '_'")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	return errs.Err()
}

type UpdateDeviceRequest struct {
	ID        string  `json:"-"`
	BranchID  *string `json:"branch_id,omitempty"`
	Name      *string `json:"name,omitempty"`
	IPAddress *string `json:"ip_address,omitempty"`
	Status    *string `json:"status,omitempty"`
}

func (r *UpdateDeviceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.BranchID != nil && !validator.IsValidUUID(*r.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		} else if len(*r.Name) > 100 {
			errs.Add("name", "name must not exceed 100 characters")
		}
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, StatusValues) {
		errs.Add("status", "status must be one of: active, inactive")
	}

	return errs.Err()
}

type DeviceFilter struct {
	BranchID *string `json:"branch_id,omitempty"`
	Status   *string `json:"status,omitempty"`
	Search   *string `json:"search,omitempty"`
	Page     int     `json:"page"`
	Limit    int     `json:"limit"`
}

func (f *DeviceFilter) Validate() error {
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
	if f.BranchID != nil && !validator.IsValidUUID(*f.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: active, inactive")
	}

	return errs.Err()
}

type ListDeviceResponse struct {
	pagination.Page
	Devices []DeviceResponse `json:"devices"`
}
