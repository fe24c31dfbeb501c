package report

import (
	"context"
	"io"
)

type ReportService interface {
	GenerateMonthlyAttendanceReport(ctx context.Context, req MonthlyAttendanceReportRequest) (MonthlyAttendanceReport, error)

	// ExportMonthlyAttendanceReport renders the report as xlsx or pdf to w.
	ExportMonthlyAttendanceReport(ctx context.Context, req MonthlyAttendanceReportRequest, w io.Writer) (ExportFile, error)

	GenerateNewHireReport(ctx context.Context, req NewHireReportRequest) (NewHireReport, error)
}
