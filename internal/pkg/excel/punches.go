package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

// PunchRow is one data row of a punch export: employee code, local
// timestamp and kind.
type PunchRow struct {
	Row          int
	EmployeeCode string
	Timestamp    time.Time
	Kind         attendance.PunchKind
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"1/2/06 15:04",
	"01-02-06 15:04",
}

// ReadPunches reads the first sheet of an xlsx punch export. The first row
// is a header. Timestamps are interpreted in loc. Bad rows are returned in
// invalid keyed by "row N" and do not fail the whole file.
func ReadPunches(r io.Reader, loc *time.Location) (rows []PunchRow, invalid map[string]string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in excel file")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}

	invalid = make(map[string]string)
	for i, cols := range raw {
		if i == 0 {
			continue
		}
		rowNum := i + 1
		key := fmt.Sprintf("row %d", rowNum)

		if isBlank(cols) {
			continue
		}
		if len(cols) < 3 {
			invalid[key] = "expected employee_code, timestamp and kind"
			continue
		}

		code := strings.TrimSpace(cols[0])
		if code == "" {
			invalid[key] = "employee_code is empty"
			continue
		}
		ts, err := ParseTimestamp(cols[1], loc)
		if err != nil {
			invalid[key] = err.Error()
			continue
		}
		kind, ok := ParseKind(cols[2])
		if !ok {
			invalid[key] = fmt.Sprintf("unknown kind %q", strings.TrimSpace(cols[2]))
			continue
		}

		rows = append(rows, PunchRow{Row: rowNum, EmployeeCode: code, Timestamp: ts, Kind: kind})
	}
	return rows, invalid, nil
}

// ParseTimestamp accepts text timestamps and Excel date serials.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ParseKind maps the spellings terminals export to a punch kind.
func ParseKind(s string) (attendance.PunchKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "i", "check_in", "checkin", "check in", "c/in", "0":
		return attendance.PunchCheckIn, true
	case "out", "o", "check_out", "checkout", "check out", "c/out", "1":
		return attendance.PunchCheckOut, true
	}
	return "", false
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
