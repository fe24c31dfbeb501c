package company

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
)

type CompanyServiceImpl struct {
	companies company.CompanyRepository
	files     storage.FileStorage
	now       func() time.Time
}

func NewCompanyService(companies company.CompanyRepository, files storage.FileStorage) *CompanyServiceImpl {
	return &CompanyServiceImpl{
		companies: companies,
		files:     files,
		now:       time.Now,
	}
}

// GetMyCompany implements company.CompanyService.
func (s *CompanyServiceImpl) GetMyCompany(ctx context.Context) (company.CompanyResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return company.NewCompanyResponse(c), nil
}

// UpdateMyCompany implements company.CompanyService.
func (s *CompanyServiceImpl) UpdateMyCompany(ctx context.Context, req company.UpdateCompanyRequest) (company.CompanyResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	c.UpdatedAt = s.now()

	if err := s.companies.Update(ctx, c); err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to update company: %w", err)
	}
	return company.NewCompanyResponse(c), nil
}

// UploadLogo implements company.CompanyService. The previous logo file is
// removed once the new one is recorded.
func (s *CompanyServiceImpl) UploadLogo(ctx context.Context, req company.UploadLogoRequest) (company.CompanyResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}
	if req.Size > company.MaxLogoSize {
		return company.CompanyResponse{}, company.ErrLogoTooLarge
	}

	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	body, contentType := storage.Sniff(req.File, company.MaxLogoSize+1)
	ext, ok := company.LogoContentTypes[contentType]
	if !ok {
		return company.CompanyResponse{}, company.ErrLogoType
	}

	key, err := s.files.Save(ctx, body, fmt.Sprintf("companies/%s/logo/%s%s", c.ID, uuid.NewString(), ext))
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to store logo: %w", err)
	}

	previous := c.LogoURL
	url := s.files.URL(key)
	c.LogoURL = &url
	c.UpdatedAt = s.now()
	if err := s.companies.Update(ctx, c); err != nil {
		_ = s.files.Remove(ctx, key)
		return company.CompanyResponse{}, fmt.Errorf("failed to update company logo: %w", err)
	}

	if previous != nil {
		prefix := s.files.URL("")
		if strings.HasPrefix(*previous, prefix) {
			if err := s.files.Remove(ctx, strings.TrimPrefix(*previous, prefix)); err != nil {
				slog.Warn("failed to remove previous logo", "company_id", c.ID, "url", *previous, "error", err)
			}
		}
	}
	return company.NewCompanyResponse(c), nil
}
