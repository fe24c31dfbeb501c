package transfer

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
}

// Transfer moves an employee to another branch of the same company once
// approved.
type Transfer struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	FromBranchID    string
	ToBranchID      string
	EffectiveDate   time.Time
	Reason          string
	Status          Status
	RequestedBy     string
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Relationships (for responses)
	EmployeeName   *string
	FromBranchName *string
	ToBranchName   *string
}
