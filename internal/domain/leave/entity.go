package leave

import "time"

type LeaveType struct {
	ID               string
	CompanyID        string
	Name             string
	Code             string
	RequiresApproval bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
	string(StatusCancelled),
}

// LeaveApplication covers whole calendar days from StartDate to EndDate
// inclusive. Dates are stored at 00:00 UTC.
type LeaveApplication struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	LeaveTypeID     string
	StartDate       time.Time
	EndDate         time.Time
	Reason          string
	Status          Status
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Relationships (for responses)
	EmployeeName  *string
	LeaveTypeName *string
	BranchID      string
}

// Days returns the number of calendar days covered.
func (a LeaveApplication) Days() int {
	return int(a.EndDate.Sub(a.StartDate).Hours()/24) + 1
}
