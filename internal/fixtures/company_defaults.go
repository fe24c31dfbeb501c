package fixtures

import (
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
)

func strPtr(s string) *string { return &s }

// DefaultBranch is the headquarters created together with a new company.
func DefaultBranch(companyID, companyName, timezone string) branch.Branch {
	if timezone == "" {
		timezone = branch.DefaultTimezone
	}
	return branch.Branch{
		CompanyID: companyID,
		Name:      "Headquarters",
		Address:   strPtr(companyName + " - Main Office"),
		Timezone:  timezone,
	}
}

// DefaultLeaveTypes are the leave types every new company starts with.
func DefaultLeaveTypes(companyID string) []leave.LeaveType {
	return []leave.LeaveType{
		{CompanyID: companyID, Name: "Annual Leave", Code: "ANNUAL", RequiresApproval: true},
		{CompanyID: companyID, Name: "Sick Leave", Code: "SICK", RequiresApproval: false},
		{CompanyID: companyID, Name: "Unpaid Leave", Code: "UNPAID", RequiresApproval: true},
		{CompanyID: companyID, Name: "Maternity Leave", Code: "MATERNITY", RequiresApproval: true},
		{CompanyID: companyID, Name: "Bereavement Leave", Code: "BEREAVEMENT", RequiresApproval: false},
	}
}
