package leave

import "errors"

var (
	ErrLeaveTypeNotFound          = errors.New("leave type not found")
	ErrLeaveTypeCodeExists        = errors.New("leave type code already exists")
	ErrApplicationNotFound        = errors.New("leave application not found")
	ErrApplicationNotPending      = errors.New("leave application is no longer pending")
	ErrOverlappingApplication     = errors.New("leave overlaps an existing pending or approved application")
	ErrNotApplicationOwner        = errors.New("only the applicant can cancel this leave application")
	ErrEmployeeProfileRequired    = errors.New("an employee profile is required to apply for leave")
	ErrCannotReviewOwnApplication = errors.New("cannot review your own leave application")
)
