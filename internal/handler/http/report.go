package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request)
	GetNewHireReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetMonthlyAttendanceReport handles GET /reports/attendance. format=json
// returns the envelope; xlsx and pdf return a download.
func (h *reportHandlerImpl) GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		response.BadRequest(w, "invalid month parameter", nil)
		return
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	req := report.MonthlyAttendanceReportRequest{
		Month:    month,
		Year:     year,
		BranchID: optional(q, "branch_id"),
		Format:   q.Get("format"),
	}

	if req.Format == "" || req.Format == string(report.FormatJSON) {
		result, err := h.reportService.GenerateMonthlyAttendanceReport(r.Context(), req)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, result)
		return
	}

	// Rendered to a buffer so a failure can still be reported as JSON.
	var buf bytes.Buffer
	file, err := h.reportService.ExportMonthlyAttendanceReport(r.Context(), req, &buf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.Filename, file.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write report", "error", err)
	}
}

// GetNewHireReport handles GET /reports/new-hires
func (h *reportHandlerImpl) GetNewHireReport(w http.ResponseWriter, r *http.Request) {
	req := report.NewHireReportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.reportService.GenerateNewHireReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
