package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
)

type CompanyHandler interface {
	GetMy(w http.ResponseWriter, r *http.Request)
	UpdateMy(w http.ResponseWriter, r *http.Request)
	UploadLogo(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{companyService: companyService}
}

// GetMy implements CompanyHandler.
func (c *CompanyHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	result, err := c.companyService.GetMyCompany(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdateMy implements CompanyHandler.
func (c *CompanyHandlerImpl) UpdateMy(w http.ResponseWriter, r *http.Request) {
	var req company.UpdateCompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := c.companyService.UpdateMyCompany(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Company updated successfully", result)
}

// UploadLogo implements CompanyHandler. Expects a multipart "logo" field.
func (c *CompanyHandlerImpl) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, company.MaxLogoSize+(1<<20))
	if err := r.ParseMultipartForm(company.MaxLogoSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("logo")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Logo file is required", nil)
			return
		}
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := c.companyService.UploadLogo(r.Context(), company.UploadLogoRequest{
		Size: fileHeader.Size,
		File: file,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Logo uploaded successfully", result)
}
