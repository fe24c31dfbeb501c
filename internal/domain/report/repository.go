package report

import (
	"context"
	"time"
)

type ReportRepository interface {
	// ListEmployees returns the active roster, optionally of one branch.
	ListEmployees(ctx context.Context, companyID string, branchID *string) ([]EmployeeRef, error)

	// AttendanceTotals aggregates attendance records per employee over
	// [from, to] (calendar dates).
	AttendanceTotals(ctx context.Context, companyID string, branchID *string, from, to time.Time) ([]AttendanceTotals, error)

	GetNewHires(ctx context.Context, companyID string, from, to time.Time) ([]NewHireRow, error)
}

// EmployeeRef is one roster entry of a report.
type EmployeeRef struct {
	ID         string
	Code       string
	FullName   string
	BranchName string
}

// AttendanceTotals is the per-employee aggregate read from storage.
type AttendanceTotals struct {
	EmployeeID    string
	Present       int
	Late          int
	HalfDay       int
	Absent        int
	OnLeave       int
	WorkedSeconds int64
}
