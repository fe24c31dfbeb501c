package attendance

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type AttendanceResponse struct {
	ID                 string   `json:"id"`
	EmployeeID         string   `json:"employee_id"`
	EmployeeName       string   `json:"employee_name,omitempty"`
	EmployeeCode       string   `json:"employee_code,omitempty"`
	Date               string   `json:"date"`
	CheckIn            *string  `json:"check_in,omitempty"`
	CheckOut           *string  `json:"check_out,omitempty"`
	WorkingHours       *float64 `json:"working_hours,omitempty"`
	Status             string   `json:"status"`
	DeviceID           *string  `json:"device_id,omitempty"`
	LeaveApplicationID *string  `json:"leave_application_id,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	BranchID   *string `json:"branch_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`    // date, employee_name, check_in, check_out, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = pagination.DefaultLimit
	}
	if f.Limit > pagination.MaxLimit {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}

	var start, end time.Time
	if f.StartDate != nil && *f.StartDate != "" {
		d, valid := validator.IsValidDate(*f.StartDate)
		if !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
		start = d
	}
	if f.EndDate != nil && *f.EndDate != "" {
		d, valid := validator.IsValidDate(*f.EndDate)
		if !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
		end = d
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "employee_name", "check_in", "check_out", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs.Add("sort_by", "sort_by must be one of: date, employee_name, check_in, check_out, status")
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc"
	}

	return errs.Err()
}

type ListAttendanceResponse struct {
	pagination.Page
	Attendances []AttendanceResponse `json:"attendances"`
}

// UpdateAttendanceRequest lets an admin correct a record by hand, e.g. when an
// employee forgot to punch.
type UpdateAttendanceRequest struct {
	ID       string  `json:"-"`
	CheckIn  *string `json:"check_in,omitempty"`  // RFC3339
	CheckOut *string `json:"check_out,omitempty"` // RFC3339
	Status   *string `json:"status,omitempty"`
	Notes    *string `json:"notes,omitempty"`

	checkIn  *time.Time
	checkOut *time.Time
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CheckIn != nil {
		t, ok := validator.IsValidDateTime(*r.CheckIn)
		if !ok {
			errs.Add("check_in", "check_in must be an RFC3339 timestamp")
		} else {
			r.checkIn = &t
		}
	}
	if r.CheckOut != nil {
		t, ok := validator.IsValidDateTime(*r.CheckOut)
		if !ok {
			errs.Add("check_out", "check_out must be an RFC3339 timestamp")
		} else {
			r.checkOut = &t
		}
	}
	if r.checkIn != nil && r.checkOut != nil && r.checkOut.Before(*r.checkIn) {
		errs.Add("check_out", "check_out must not be before check_in")
	}

	if r.Status != nil && !validator.IsInSlice(strings.ToLower(*r.Status), StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}

	if r.Notes != nil && len(*r.Notes) > 500 {
		errs.Add("notes", "notes must not exceed 500 characters")
	}

	return errs.Err()
}

// ParsedTimes returns the check-in/check-out parsed by Validate.
func (r *UpdateAttendanceRequest) ParsedTimes() (checkIn, checkOut *time.Time) {
	return r.checkIn, r.checkOut
}

// ========================================
// POLICY DTOs
// ========================================

type PolicyResponse struct {
	BranchID             string `json:"branch_id"`
	WorkStart            string `json:"work_start"`
	WorkEnd              string `json:"work_end"`
	LateThresholdMinutes int    `json:"late_threshold_minutes"`
	HalfDayHours         int    `json:"half_day_hours"`
	WeekendDays          []int  `json:"weekend_days"`
	IsDefault            bool   `json:"is_default"`
}

type UpdatePolicyRequest struct {
	BranchID             string `json:"-"`
	WorkStart            string `json:"work_start"`
	WorkEnd              string `json:"work_end"`
	LateThresholdMinutes int    `json:"late_threshold_minutes"`
	HalfDayHours         int    `json:"half_day_hours"`
	WeekendDays          []int  `json:"weekend_days"`
}

// ToPolicy validates the request and converts it into a policy.
func (r *UpdatePolicyRequest) ToPolicy() (AttendancePolicy, error) {
	var errs validator.ValidationErrors

	start, err := ParseClock(r.WorkStart)
	if err != nil {
		errs.Add("work_start", "work_start must be in HH:MM format")
	}
	end, err := ParseClock(r.WorkEnd)
	if err != nil {
		errs.Add("work_end", "work_end must be in HH:MM format")
	}
	if len(errs) > 0 {
		return AttendancePolicy{}, errs
	}

	weekend := make([]time.Weekday, 0, len(r.WeekendDays))
	for _, d := range r.WeekendDays {
		weekend = append(weekend, time.Weekday(d))
	}

	policy := AttendancePolicy{
		BranchID:             r.BranchID,
		WorkStart:            start,
		WorkEnd:              end,
		LateThresholdMinutes: r.LateThresholdMinutes,
		HalfDayHours:         r.HalfDayHours,
		WeekendDays:          weekend,
	}
	if err := policy.Validate(); err != nil {
		return AttendancePolicy{}, err
	}
	return policy, nil
}

// ========================================
// RECONCILIATION / SYNC DTOs
// ========================================

// RosterEntry is an employee expected to work at the branch from HireDate
// on. A zero HireDate means no lower bound.
type RosterEntry struct {
	EmployeeID string
	HireDate   time.Time
}

// ReconcileInput is a batch of punches for one branch. Roster, From and To
// are optional; when all are set, every roster employee gets a record for
// every finished working day in [From, To] since their hire date, absent if
// they never checked in. The current day in the branch timezone is still in
// progress and never gets a roster absence.
type ReconcileInput struct {
	CompanyID string
	BranchID  string
	DeviceID  string
	Punches   []PunchEvent
	Roster    []RosterEntry
	From      time.Time
	To        time.Time
}

type RejectedPunch struct {
	Index      int    `json:"index"`
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"`
	Reason     string `json:"reason"`
}

type ReconcileResult struct {
	Processed      int             `json:"processed"`
	Created        int             `json:"created"`
	Updated        int             `json:"updated"`
	SkippedWeekend int             `json:"skipped_weekend"`
	Rejected       []RejectedPunch `json:"rejected,omitempty"`
}

type SyncRequest struct {
	DeviceIDs  []string `json:"device_ids,omitempty"`
	From       string   `json:"from"` // YYYY-MM-DD
	To         string   `json:"to"`   // YYYY-MM-DD
	MarkAbsent bool     `json:"mark_absent"`

	from time.Time
	to   time.Time
}

const MaxSyncRangeDays = 31

func (r *SyncRequest) Validate() error {
	var errs validator.ValidationErrors

	from, ok := validator.IsValidDate(r.From)
	if !ok {
		errs.Add("from", "from must be in YYYY-MM-DD format")
	}
	to, ok2 := validator.IsValidDate(r.To)
	if !ok2 {
		errs.Add("to", "to must be in YYYY-MM-DD format")
	}
	if ok && ok2 {
		if to.Before(from) {
			errs.Add("to", "to must not be before from")
		} else if to.Sub(from) > MaxSyncRangeDays*24*time.Hour {
			errs.Add("to", "sync range must not exceed 31 days")
		}
	}
	for _, id := range r.DeviceIDs {
		if !validator.IsValidUUID(id) {
			errs.Add("device_ids", "device_ids must contain valid UUIDs")
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	r.from, r.to = from, to
	return nil
}

// Window returns the validated date range.
func (r *SyncRequest) Window() (from, to time.Time) {
	return r.from, r.to
}

type DeviceSyncResult struct {
	DeviceID     string `json:"device_id"`
	SerialNumber string `json:"serial_number"`
	Fetched      int    `json:"fetched"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

type SyncResult struct {
	Processed int                `json:"processed"`
	Devices   []DeviceSyncResult `json:"devices"`
	Warnings  []string           `json:"warnings"`
}

type ImportPunchesRequest struct {
	DeviceID   string                `json:"device_id"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *ImportPunchesRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.DeviceID) {
		errs.Add("device_id", "device_id must be a valid UUID")
	}

	if r.FileHeader == nil {
		errs.Add("file", "punch log file is required")
	} else {
		name := strings.ToLower(r.FileHeader.Filename)
		if !strings.HasSuffix(name, ".xlsx") {
			errs.Add("file", "invalid file type: only xlsx allowed")
		} else if r.FileHeader.Size > 10<<20 {
			errs.Add("file", "punch log file size must not exceed 10MB")
		}
	}

	return errs.Err()
}

type ImportResult struct {
	Rows     int               `json:"rows"`
	Staged   int64             `json:"staged"`
	Invalid  map[string]string `json:"invalid,omitempty"`
	BatchRef string            `json:"batch_ref"`
}
