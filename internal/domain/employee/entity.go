package employee

import (
	"time"
)

type Employee struct {
	ID              string
	CompanyID       string
	BranchID        string
	DepartmentID    *string
	UserID          *string
	EmployeeCode    string
	FullName        string
	Email           *string
	PhoneNumber     *string
	HireDate        time.Time
	ResignationDate *time.Time
	EmploymentType  EmploymentType
	Status          Status
	BankAccount     *BankAccount
	Documents       []Attachment
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time

	// DTO
	BranchName     *string
	DepartmentName *string
}

// BankAccount is stored as a jsonb column.
type BankAccount struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
}

// Attachment is one entry of the documents jsonb array.
type Attachment struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
)

var EmploymentTypeValues = []string{
	string(EmploymentTypePermanent),
	string(EmploymentTypeProbation),
	string(EmploymentTypeContract),
	string(EmploymentTypeInternship),
}

type Status string

const (
	StatusActive     Status = "active"
	StatusResigned   Status = "resigned"
	StatusTerminated Status = "terminated"
)

var StatusValues = []string{
	string(StatusActive),
	string(StatusResigned),
	string(StatusTerminated),
}
