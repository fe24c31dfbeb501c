package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var FormatValues = []string{string(FormatJSON), string(FormatXLSX), string(FormatPDF)}

// ExportFile describes a rendered report.
type ExportFile struct {
	Filename    string
	ContentType string
}

// ========================================
// MONTHLY ATTENDANCE REPORT
// ========================================

type MonthlyAttendanceReportRequest struct {
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	BranchID *string `json:"branch_id,omitempty"`
	Format   string  `json:"format"`
}

func (r *MonthlyAttendanceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs.Add("month", "month must be between 1 and 12")
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs.Add("year", fmt.Sprintf("year must be between 2020 and %d", currentYear+1))
	}

	if r.BranchID != nil && !validator.IsValidUUID(*r.BranchID) {
		errs.Add("branch_id", "branch_id must be a valid UUID")
	}

	if r.Format == "" {
		r.Format = string(FormatJSON)
	}
	if !validator.IsInSlice(r.Format, FormatValues) {
		errs.Add("format", "format must be one of: json, xlsx, pdf")
	}

	return errs.Err()
}

// Period returns the first and last calendar day of the requested month.
func (r MonthlyAttendanceReportRequest) Period() (time.Time, time.Time) {
	start := time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

type MonthlyAttendanceReport struct {
	PeriodMonth int     `json:"period_month"`
	PeriodYear  int     `json:"period_year"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	BranchID    *string `json:"branch_id,omitempty"`
	GeneratedAt string  `json:"generated_at"`

	Totals    AttendanceSummary           `json:"totals"`
	Employees []MonthlyAttendanceEmployee `json:"employees"`
}

type MonthlyAttendanceEmployee struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`
	BranchName   string `json:"branch_name"`

	Summary AttendanceSummary `json:"summary"`
}

// AttendanceSummary counts records per status. AttendanceRate is the share
// of attended days among attended plus absent days, as a percentage.
type AttendanceSummary struct {
	Present        int             `json:"present"`
	Late           int             `json:"late"`
	HalfDay        int             `json:"half_day"`
	Absent         int             `json:"absent"`
	OnLeave        int             `json:"on_leave"`
	WorkedHours    decimal.Decimal `json:"worked_hours"`
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
}

// Attended is the number of days with a check-in.
func (s AttendanceSummary) Attended() int {
	return s.Present + s.Late + s.HalfDay
}

// ========================================
// NEW HIRE REPORT
// ========================================

type NewHireReportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	start time.Time
	end   time.Time
}

func (r *NewHireReportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", ErrInvalidDateRange.Error())
	}

	if len(errs) > 0 {
		return errs
	}
	r.start, r.end = start, end
	return nil
}

// Range returns the validated dates.
func (r *NewHireReportRequest) Range() (time.Time, time.Time) {
	return r.start, r.end
}

type NewHireReport struct {
	GeneratedAt string       `json:"generated_at"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Total       int          `json:"total"`
	Rows        []NewHireRow `json:"rows"`
}

type NewHireRow struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeCode   string  `json:"employee_code"`
	FullName       string  `json:"full_name"`
	BranchName     string  `json:"branch_name"`
	DepartmentName *string `json:"department_name,omitempty"`
	HireDate       string  `json:"hire_date"`
	EmploymentType string  `json:"employment_type"`
}
