package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/transfer"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, jwt.ErrMissingClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidOAuthState):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrEmailNotVerified):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrAccountNotFound),
		errors.Is(err, user.ErrUserNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Company
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, company.ErrCompanyUsernameExists):
		Conflict(w, err.Error())
	case errors.Is(err, company.ErrLogoTooLarge),
		errors.Is(err, company.ErrLogoType):
		BadRequest(w, err.Error(), nil)

	// Branch and department
	case errors.Is(err, branch.ErrBranchNotFound),
		errors.Is(err, employee.ErrBranchNotFound),
		errors.Is(err, department.ErrDepartmentNotFound),
		errors.Is(err, employee.ErrDepartmentNotFound),
		errors.Is(err, department.ErrParentNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, branch.ErrBranchNameExists),
		errors.Is(err, branch.ErrBranchInUse),
		errors.Is(err, department.ErrDepartmentNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, department.ErrSelfParent),
		errors.Is(err, department.ErrParentCycle):
		BadRequest(w, err.Error(), nil)

	// Devices
	case errors.Is(err, device.ErrDeviceNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, device.ErrSerialNumberExists):
		Conflict(w, err.Error())
	case errors.Is(err, device.ErrDeviceInactive),
		errors.Is(err, device.ErrBranchNotInCompany):
		BadRequest(w, err.Error(), nil)

	// Employees
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrDocumentNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeCodeExists),
		errors.Is(err, employee.ErrEmailExists):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrCannotDeleteSelf):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotActive),
		errors.Is(err, employee.ErrInvalidBankAccount),
		errors.Is(err, employee.ErrDocumentTooLarge),
		errors.Is(err, employee.ErrDocumentType):
		BadRequest(w, err.Error(), nil)

	// Attendance
	case errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, attendance.ErrPolicyNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrDuplicateRecord):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidPunchFile),
		errors.Is(err, attendance.ErrNoDevicesToSync),
		errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		BadRequest(w, err.Error(), nil)

	// Leave
	case errors.Is(err, leave.ErrLeaveTypeNotFound),
		errors.Is(err, leave.ErrApplicationNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, leave.ErrLeaveTypeCodeExists),
		errors.Is(err, leave.ErrApplicationNotPending),
		errors.Is(err, leave.ErrOverlappingApplication):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrNotApplicationOwner),
		errors.Is(err, leave.ErrCannotReviewOwnApplication),
		errors.Is(err, leave.ErrEmployeeProfileRequired):
		Forbidden(w, err.Error())

	// Transfers
	case errors.Is(err, transfer.ErrTransferNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, transfer.ErrTransferNotPending),
		errors.Is(err, transfer.ErrTransferAlreadyPending):
		Conflict(w, err.Error())
	case errors.Is(err, transfer.ErrSameBranch):
		BadRequest(w, err.Error(), nil)

	// Reports
	case errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
