package employee

import (
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

type EmployeeResponse struct {
	ID              string       `json:"id"`
	BranchID        string       `json:"branch_id"`
	BranchName      *string      `json:"branch_name,omitempty"`
	DepartmentID    *string      `json:"department_id,omitempty"`
	DepartmentName  *string      `json:"department_name,omitempty"`
	UserID          *string      `json:"user_id,omitempty"`
	EmployeeCode    string       `json:"employee_code"`
	FullName        string       `json:"full_name"`
	Email           *string      `json:"email,omitempty"`
	PhoneNumber     *string      `json:"phone_number,omitempty"`
	HireDate        string       `json:"hire_date"`
	ResignationDate *string      `json:"resignation_date,omitempty"`
	EmploymentType  string       `json:"employment_type"`
	Status          string       `json:"status"`
	BankAccount     *BankAccount `json:"bank_account,omitempty"`
	Documents       []Attachment `json:"documents"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             e.ID,
		BranchID:       e.BranchID,
		BranchName:     e.BranchName,
		DepartmentID:   e.DepartmentID,
		DepartmentName: e.DepartmentName,
		UserID:         e.UserID,
		EmployeeCode:   e.EmployeeCode,
		FullName:       e.FullName,
		Email:          e.Email,
		PhoneNumber:    e.PhoneNumber,
		HireDate:       e.HireDate.Format("2006-01-02"),
		EmploymentType: string(e.EmploymentType),
		Status:         string(e.Status),
		BankAccount:    e.BankAccount,
		Documents:      e.Documents,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      e.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Documents == nil {
		resp.Documents = []Attachment{}
	}
	if e.ResignationDate != nil {
		d := e.ResignationDate.Format("2006-01-02")
		resp.ResignationDate = &d
	}
	return resp
}

type CreateEmployeeRequest struct {
	BranchID       string       `json:"branch_id"`
	DepartmentID   *string      `json:"department_id,omitempty"`
	EmployeeCode   string       `json:"employee_code"`
	FullName       string       `json:"full_name"`
	Email          *string      `json:"email,omitempty"`
	PhoneNumber    *string      `json:"phone_number,omitempty"`
	HireDate       string       `json:"hire_date"`
	EmploymentType string       `json:"employment_type"`
	BankAccount    *BankAccount `json:"bank_account,omitempty"`
	Documents      []Attachment `json:"documents,omitempty"`

	hireDate time.Time
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}
	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs.Add("department_id", "department_id must be a valid UUID")
	}
	if !validator.IsValidEmployeeCode(r.EmployeeCode) {
		errs.Add("employee_code", "employee_code must be 1-24 letters or digits")
	}
	if validator.IsEmpty(r.FullName) {
		errs.Add("full_name", "full_name is required")
	} else if len(r.FullName) > 150 {
		errs.Add("full_name", "full_name must not exceed 150 characters")
	}
	validateContact(&errs, r.Email, r.PhoneNumber)

	d, ok := validator.IsValidDate(r.HireDate)
	if !ok {
		errs.Add("hire_date", "hire_date must be in YYYY-MM-DD format")
	}
	r.hireDate = d

	if r.EmploymentType == "" {
		r.EmploymentType = string(EmploymentTypePermanent)
	}
	if !validator.IsInSlice(r.EmploymentType, EmploymentTypeValues) {
		errs.Add("employment_type", "employment_type must be one of: "+strings.Join(EmploymentTypeValues, ", "))
	}
	validateBankAccount(&errs, r.BankAccount)
	validateDocuments(&errs, r.Documents)

	return errs.Err()
}

// ToEmployee builds the entity from a validated request.
func (r *CreateEmployeeRequest) ToEmployee(companyID string) Employee {
	return Employee{
		CompanyID:      companyID,
		BranchID:       r.BranchID,
		DepartmentID:   r.DepartmentID,
		EmployeeCode:   r.EmployeeCode,
		FullName:       strings.TrimSpace(r.FullName),
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		HireDate:       r.hireDate,
		EmploymentType: EmploymentType(r.EmploymentType),
		Status:         StatusActive,
		BankAccount:    r.BankAccount,
		Documents:      r.Documents,
	}
}

// UpdateEmployeeRequest patches an employee; nil fields are left unchanged.
// Branch moves go through the transfer workflow.
type UpdateEmployeeRequest struct {
	ID              string        `json:"-"`
	DepartmentID    *string       `json:"department_id,omitempty"`
	EmployeeCode    *string       `json:"employee_code,omitempty"`
	FullName        *string       `json:"full_name,omitempty"`
	Email           *string       `json:"email,omitempty"`
	PhoneNumber     *string       `json:"phone_number,omitempty"`
	EmploymentType  *string       `json:"employment_type,omitempty"`
	Status          *string       `json:"status,omitempty"`
	ResignationDate *string       `json:"resignation_date,omitempty"`
	BankAccount     *BankAccount  `json:"bank_account,omitempty"`
	Documents       *[]Attachment `json:"documents,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs.Add("department_id", "department_id must be a valid UUID")
	}
	if r.EmployeeCode != nil && !validator.IsValidEmployeeCode(*r.EmployeeCode) {
		errs.Add("employee_code", "employee_code must be 1-24 letters or digits")
	}
	if r.FullName != nil {
		if validator.IsEmpty(*r.FullName) {
			errs.Add("full_name", "full_name must not be empty")
		} else if len(*r.FullName) > 150 {
			errs.Add("full_name", "full_name must not exceed 150 characters")
		}
	}
	validateContact(&errs, r.Email, r.PhoneNumber)
	if r.EmploymentType != nil && !validator.IsInSlice(*r.EmploymentType, EmploymentTypeValues) {
		errs.Add("employment_type", "employment_type must be one of: "+strings.Join(EmploymentTypeValues, ", "))
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if r.ResignationDate != nil {
		if _, ok := validator.IsValidDate(*r.ResignationDate); !ok {
			errs.Add("resignation_date", "resignation_date must be in YYYY-MM-DD format")
		}
	}
	validateBankAccount(&errs, r.BankAccount)
	if r.Documents != nil {
		validateDocuments(&errs, *r.Documents)
	}

	return errs.Err()
}

// Apply copies the set fields of a validated request onto e.
func (r *UpdateEmployeeRequest) Apply(e *Employee) {
	if r.DepartmentID != nil {
		e.DepartmentID = r.DepartmentID
	}
	if r.EmployeeCode != nil {
		e.EmployeeCode = *r.EmployeeCode
	}
	if r.FullName != nil {
		e.FullName = strings.TrimSpace(*r.FullName)
	}
	if r.Email != nil {
		e.Email = r.Email
	}
	if r.PhoneNumber != nil {
		e.PhoneNumber = r.PhoneNumber
	}
	if r.EmploymentType != nil {
		e.EmploymentType = EmploymentType(*r.EmploymentType)
	}
	if r.Status != nil {
		e.Status = Status(*r.Status)
	}
	if r.ResignationDate != nil {
		d, _ := validator.IsValidDate(*r.ResignationDate)
		e.ResignationDate = &d
	}
	if r.BankAccount != nil {
		e.BankAccount = r.BankAccount
	}
	if r.Documents != nil {
		e.Documents = *r.Documents
	}
}

func validateContact(errs *validator.ValidationErrors, email, phone *string) {
	if email != nil && !validator.IsValidEmail(*email) {
		errs.Add("email", "email must be a valid email address")
	}
	if phone != nil && !validator.IsValidPhoneNumber(*phone) {
		errs.Add("phone_number", "phone_number must be 8-15 digits")
	}
}

func validateBankAccount(errs *validator.ValidationErrors, b *BankAccount) {
	if b == nil {
		return
	}
	if validator.IsEmpty(b.BankName) || validator.IsEmpty(b.HolderName) {
		errs.Add("bank_account", ErrInvalidBankAccount.Error())
	}
	if !validator.IsNumeric(b.AccountNumber) {
		errs.Add("bank_account.account_number", "account_number must contain digits only")
	}
}

func validateDocuments(errs *validator.ValidationErrors, docs []Attachment) {
	for _, d := range docs {
		if validator.IsEmpty(d.Name) || validator.IsEmpty(d.URL) {
			errs.Add("documents", "every document needs a name and url")
			return
		}
	}
}

type EmployeeFilter struct {
	Search       *string `json:"search,omitempty"`
	BranchID     *string `json:"branch_id,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Status       *string `json:"status,omitempty"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
	SortBy       string  `json:"sort_by"`
	SortOrder    string  `json:"sort_order"`
}

func (f *EmployeeFilter) Validate() error {
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
	if f.DepartmentID != nil && !validator.IsValidUUID(*f.DepartmentID) {
		errs.Add("department_id", "department_id must be a valid UUID")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}

	if f.SortBy == "" {
		f.SortBy = "full_name"
	} else if !validator.IsInSlice(f.SortBy, []string{"full_name", "employee_code", "hire_date", "created_at"}) {
		errs.Add("sort_by", "sort_by must be one of: full_name, employee_code, hire_date, created_at")
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder == "" {
		f.SortOrder = "asc"
	} else if f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs.Add("sort_order", "sort_order must be one of: asc, desc")
	}

	return errs.Err()
}

type ListEmployeeResponse struct {
	pagination.Page
	Employees []EmployeeResponse `json:"employees"`
}

// MaxDocumentSize bounds a single uploaded document.
const MaxDocumentSize = 5 << 20

var DocumentContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

type UploadDocumentRequest struct {
	EmployeeID  string
	Name        string
	ContentType string
	Size        int64
	File        io.Reader
}

func (r *UploadDocumentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("id", "id must be a valid UUID")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}
	if r.File == nil {
		errs.Add("file", "file is required")
	}

	return errs.Err()
}
