package company

import (
	"io"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type CompanyResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"company_name"`
	Username  string  `json:"company_username"`
	Address   *string `json:"company_address,omitempty"`
	LogoURL   *string `json:"logo_url,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func NewCompanyResponse(c Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Username:  c.Username,
		Address:   c.Address,
		LogoURL:   c.LogoURL,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

type UpdateCompanyRequest struct {
	Name    *string `json:"company_name,omitempty"`
	Address *string `json:"company_address,omitempty"`
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.Address == nil {
		errs.Add("request", "at least one field must be provided")
	}
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("company_name", "company_name cannot be empty")
		} else if len(*r.Name) > 255 {
			errs.Add("company_name", "company_name must not exceed 255 characters")
		}
	}
	if r.Address != nil && len(*r.Address) > 500 {
		errs.Add("company_address", "company_address must not exceed 500 characters")
	}

	return errs.Err()
}

const MaxLogoSize = 2 << 20

// LogoContentTypes maps accepted logo types to their file extension.
var LogoContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type UploadLogoRequest struct {
	Size int64
	File io.Reader
}

func (r *UploadLogoRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.File == nil {
		errs.Add("logo", "logo file is required")
	}
	return errs.Err()
}
