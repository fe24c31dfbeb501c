package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusLate),
	string(StatusHalfDay),
	string(StatusOnLeave),
}

type PunchKind string

const (
	PunchCheckIn  PunchKind = "check_in"
	PunchCheckOut PunchKind = "check_out"
)

// PunchEvent is a single check-in or check-out reported for an employee.
// DeviceID is optional; when empty the reconciler stamps the device of the
// batch being reconciled.
type PunchEvent struct {
	EmployeeID string
	Timestamp  time.Time
	Kind       PunchKind
	DeviceID   string
}

// Attendance is one record per employee per calendar day.
// Date is the calendar day at 00:00 UTC, independent of the branch timezone.
type Attendance struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	Date               time.Time
	CheckIn            *time.Time
	CheckOut           *time.Time
	Status             Status
	DeviceID           *string
	LeaveApplicationID *string
	Notes              *string
	UpdatedBy          *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	EmployeeName *string
	EmployeeCode *string
	BranchID     *string
}

// WorkedDuration returns the time between check-in and check-out, or zero
// when either is missing.
func (a Attendance) WorkedDuration() time.Duration {
	if a.CheckIn == nil || a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(*a.CheckIn)
}

// PunchLog is a raw punch staged from a device push or a spreadsheet import,
// still keyed by the device-side user PIN.
type PunchLog struct {
	ID            string
	CompanyID     string
	DeviceID      string
	DeviceUserPIN string
	Timestamp     time.Time
	Kind          PunchKind
	VerifyMode    *int
	Source        PunchSource
	ReceivedAt    time.Time
}

type PunchSource string

const (
	PunchSourceADMS   PunchSource = "adms"
	PunchSourceImport PunchSource = "import"
)

// CivilDate truncates t to its calendar day as seen in t's location and
// returns it at 00:00 UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
