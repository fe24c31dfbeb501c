package company

import (
	"context"
)

// CompanyService manages the caller's own company profile.
type CompanyService interface {
	GetMyCompany(ctx context.Context) (CompanyResponse, error)
	UpdateMyCompany(ctx context.Context, req UpdateCompanyRequest) (CompanyResponse, error)
	UploadLogo(ctx context.Context, req UploadLogoRequest) (CompanyResponse, error)
}
