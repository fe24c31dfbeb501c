package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/excel"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pdf"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

var (
	secondsPerHour = decimal.NewFromInt(3600)
	hundred        = decimal.NewFromInt(100)
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	now        func() time.Time
}

func NewReportService(reportRepo report.ReportRepository) *ReportServiceImpl {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

// GenerateMonthlyAttendanceReport implements report.ReportService. Every
// active employee appears, including those without a record in the month.
func (s *ReportServiceImpl) GenerateMonthlyAttendanceReport(ctx context.Context, req report.MonthlyAttendanceReportRequest) (report.MonthlyAttendanceReport, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return report.MonthlyAttendanceReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.MonthlyAttendanceReport{}, err
	}
	periodStart, periodEnd := req.Period()

	var (
		roster []report.EmployeeRef
		totals []report.AttendanceTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.reportRepo.ListEmployees(gctx, companyID, req.BranchID)
		if err != nil {
			return fmt.Errorf("failed to get employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		totals, err = s.reportRepo.AttendanceTotals(gctx, companyID, req.BranchID, periodStart, periodEnd)
		if err != nil {
			return fmt.Errorf("failed to get attendance data: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.MonthlyAttendanceReport{}, err
	}

	byEmployee := make(map[string]report.AttendanceTotals, len(totals))
	for _, t := range totals {
		byEmployee[t.EmployeeID] = t
	}

	result := report.MonthlyAttendanceReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		PeriodStart: periodStart.Format("2006-01-02"),
		PeriodEnd:   periodEnd.Format("2006-01-02"),
		BranchID:    req.BranchID,
		GeneratedAt: s.now().Format(time.RFC3339),
		Employees:   make([]report.MonthlyAttendanceEmployee, 0, len(roster)),
	}

	var grand report.AttendanceTotals
	for _, e := range roster {
		t := byEmployee[e.ID]
		grand.Present += t.Present
		grand.Late += t.Late
		grand.HalfDay += t.HalfDay
		grand.Absent += t.Absent
		grand.OnLeave += t.OnLeave
		grand.WorkedSeconds += t.WorkedSeconds

		result.Employees = append(result.Employees, report.MonthlyAttendanceEmployee{
			EmployeeID:   e.ID,
			EmployeeCode: e.Code,
			EmployeeName: e.FullName,
			BranchName:   e.BranchName,
			Summary:      summarize(t),
		})
	}
	result.Totals = summarize(grand)

	return result, nil
}

// ExportMonthlyAttendanceReport implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthlyAttendanceReport(ctx context.Context, req report.MonthlyAttendanceReportRequest, w io.Writer) (report.ExportFile, error) {
	result, err := s.GenerateMonthlyAttendanceReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	title := fmt.Sprintf("Attendance Report %s - %s", result.PeriodStart, result.PeriodEnd)
	header := []string{"Code", "Name", "Branch", "Present", "Late", "Half Day", "Absent", "On Leave", "Worked Hours", "Attendance Rate (%)"}
	base := fmt.Sprintf("attendance_%04d_%02d", req.Year, req.Month)

	switch report.Format(req.Format) {
	case report.FormatXLSX:
		rows := make([][]any, 0, len(result.Employees)+1)
		for _, e := range result.Employees {
			rows = append(rows, []any{
				e.EmployeeCode, e.EmployeeName, e.BranchName,
				e.Summary.Present, e.Summary.Late, e.Summary.HalfDay, e.Summary.Absent, e.Summary.OnLeave,
				e.Summary.WorkedHours.InexactFloat64(), e.Summary.AttendanceRate.InexactFloat64(),
			})
		}
		rows = append(rows, []any{
			"", "Total", "",
			result.Totals.Present, result.Totals.Late, result.Totals.HalfDay, result.Totals.Absent, result.Totals.OnLeave,
			result.Totals.WorkedHours.InexactFloat64(), result.Totals.AttendanceRate.InexactFloat64(),
		})
		if err := excel.WriteTable(w, excel.Table{Sheet: "Attendance", Title: title, Header: header, Rows: rows}); err != nil {
			return report.ExportFile{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
		}
		return report.ExportFile{Filename: base + ".xlsx", ContentType: contentTypeXLSX}, nil

	case report.FormatPDF:
		rows := make([][]string, 0, len(result.Employees)+1)
		for _, e := range result.Employees {
			rows = append(rows, summaryCells(e.EmployeeCode, e.EmployeeName, e.BranchName, e.Summary))
		}
		rows = append(rows, summaryCells("", "Total", "", result.Totals))
		err := pdf.WriteTable(w, pdf.Table{
			Title:    title,
			Subtitle: "Generated " + result.GeneratedAt,
			Header:   header,
			Widths:   []float64{22, 50, 35, 17, 17, 20, 18, 20, 35, 43},
			Rows:     rows,
			Now:      s.now(),
		})
		if err != nil {
			return report.ExportFile{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
		}
		return report.ExportFile{Filename: base + ".pdf", ContentType: contentTypePDF}, nil
	}
	return report.ExportFile{}, report.ErrUnsupportedFormat
}

// GenerateNewHireReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateNewHireReport(ctx context.Context, req report.NewHireReportRequest) (report.NewHireReport, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return report.NewHireReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.NewHireReport{}, err
	}
	from, to := req.Range()

	rows, err := s.reportRepo.GetNewHires(ctx, companyID, from, to)
	if err != nil {
		return report.NewHireReport{}, fmt.Errorf("failed to get new hire data: %w", err)
	}
	if rows == nil {
		rows = []report.NewHireRow{}
	}

	return report.NewHireReport{
		GeneratedAt: s.now().Format(time.RFC3339),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Total:       len(rows),
		Rows:        rows,
	}, nil
}

func summarize(t report.AttendanceTotals) report.AttendanceSummary {
	s := report.AttendanceSummary{
		Present:        t.Present,
		Late:           t.Late,
		HalfDay:        t.HalfDay,
		Absent:         t.Absent,
		OnLeave:        t.OnLeave,
		WorkedHours:    decimal.NewFromInt(t.WorkedSeconds).Div(secondsPerHour).Round(2),
		AttendanceRate: decimal.Zero,
	}
	if due := s.Attended() + s.Absent; due > 0 {
		s.AttendanceRate = decimal.NewFromInt(int64(s.Attended())).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(due))).
			Round(2)
	}
	return s
}

func summaryCells(code, name, branch string, s report.AttendanceSummary) []string {
	return []string{
		code, name, branch,
		fmt.Sprint(s.Present), fmt.Sprint(s.Late), fmt.Sprint(s.HalfDay), fmt.Sprint(s.Absent), fmt.Sprint(s.OnLeave),
		s.WorkedHours.StringFixed(2), s.AttendanceRate.StringFixed(2),
	}
}
