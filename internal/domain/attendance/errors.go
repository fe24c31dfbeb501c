package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrDuplicateRecord    = errors.New("attendance record already exists for this employee and date")
	ErrPolicyNotFound     = errors.New("attendance policy not found")
	ErrInvalidPunchFile   = errors.New("punch log file could not be read")
	ErrNoDevicesToSync    = errors.New("no active devices to sync")

	ErrCheckOutBeforeCheckIn = errors.New("check_out must not be before check_in")
)

// Punch rejection reasons reported in ReconcileResult.Rejected.
const (
	RejectMissingEmployee  = "missing employee id"
	RejectZeroTimestamp    = "missing timestamp"
	RejectUnknownKind      = "unknown punch kind"
	RejectFutureTimestamp  = "timestamp is in the future"
	RejectAncientTimestamp = "timestamp is before 2000-01-01"
)
