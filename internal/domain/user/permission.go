package user

type Permission string

const (
	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceManage  Permission = "attendance.manage"
	PermissionAttendanceSync    Permission = "attendance.sync"
	PermissionPolicyManage      Permission = "attendance.manage_policy"

	// Devices
	PermissionDeviceView   Permission = "device.view"
	PermissionDeviceManage Permission = "device.manage"

	// Organisation
	PermissionMasterView   Permission = "master.view"
	PermissionMasterManage Permission = "master.manage"

	// Company profile
	PermissionCompanyView   Permission = "company.view"
	PermissionCompanyManage Permission = "company.manage"

	// Employees
	PermissionProfileViewOwn  Permission = "employee.view_own"
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Leave
	PermissionLeaveViewOwn     Permission = "leave.view_own"
	PermissionLeaveCreate      Permission = "leave.create"
	PermissionLeaveViewAll     Permission = "leave.view_all"
	PermissionLeaveApprove     Permission = "leave.approve"
	PermissionLeaveManageTypes Permission = "leave.manage_types"

	// Transfers
	PermissionTransferRequest Permission = "transfer.request"
	PermissionTransferViewAll Permission = "transfer.view_all"
	PermissionTransferApprove Permission = "transfer.approve"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// Authorizer decides whether a role holds a permission.
type Authorizer interface {
	Can(role Role, permission Permission) bool
}

// RoleAuthorizer is a static role to permission table.
type RoleAuthorizer struct {
	grants map[Role]map[Permission]struct{}
}

func NewRoleAuthorizer(table map[Role][]Permission) *RoleAuthorizer {
	grants := make(map[Role]map[Permission]struct{}, len(table))
	for role, perms := range table {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &RoleAuthorizer{grants: grants}
}

// DefaultAuthorizer uses RolePermissions.
func DefaultAuthorizer() *RoleAuthorizer {
	return NewRoleAuthorizer(RolePermissions)
}

func (a *RoleAuthorizer) Can(role Role, permission Permission) bool {
	_, ok := a.grants[role][permission]
	return ok
}

var employeePermissions = []Permission{
	PermissionAttendanceViewOwn,
	PermissionCompanyView,
	PermissionProfileViewOwn,
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
	PermissionMasterView,
}

var managerPermissions = append([]Permission{
	PermissionAttendanceViewAll,
	PermissionAttendanceManage,
	PermissionAttendanceSync,
	PermissionDeviceView,
	PermissionEmployeeViewAll,
	PermissionLeaveViewAll,
	PermissionLeaveApprove,
	PermissionTransferRequest,
	PermissionTransferViewAll,
	PermissionReportsView,
}, employeePermissions...)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: append([]Permission{
		PermissionCompanyManage,
		PermissionPolicyManage,
		PermissionDeviceManage,
		PermissionMasterManage,
		PermissionEmployeeManage,
		PermissionLeaveManageTypes,
		PermissionTransferApprove,
	}, managerPermissions...),
	RoleManager:  managerPermissions,
	RoleEmployee: employeePermissions,
}
