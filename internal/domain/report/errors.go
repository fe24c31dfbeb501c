package report

import "errors"

var (
	ErrInvalidDateRange       = errors.New("end date must be after start date")
	ErrUnsupportedFormat      = errors.New("unsupported report format")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
