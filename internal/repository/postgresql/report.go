package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// ListEmployees implements report.ReportRepository.
func (r *reportRepositoryImpl) ListEmployees(ctx context.Context, companyID string, branchID *string) ([]report.EmployeeRef, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.employee_code, e.full_name, b.name
		FROM employees e
		JOIN branches b ON b.id = e.branch_id
		WHERE e.company_id = $1
		  AND e.status = 'active'
		  AND e.deleted_at IS NULL
		  AND ($2::uuid IS NULL OR e.branch_id = $2)
		ORDER BY e.employee_code
	`
	rows, err := q.Query(ctx, query, companyID, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report employees: %w", err)
	}
	defer rows.Close()

	var refs []report.EmployeeRef
	for rows.Next() {
		var ref report.EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.Code, &ref.FullName, &ref.BranchName); err != nil {
			return nil, fmt.Errorf("failed to scan report employee: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// AttendanceTotals implements report.ReportRepository. Worked time counts
// only records with both punches.
func (r *reportRepositoryImpl) AttendanceTotals(ctx context.Context, companyID string, branchID *string, from, to time.Time) ([]report.AttendanceTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			a.employee_id,
			COUNT(*) FILTER (WHERE a.status = 'present'),
			COUNT(*) FILTER (WHERE a.status = 'late'),
			COUNT(*) FILTER (WHERE a.status = 'half_day'),
			COUNT(*) FILTER (WHERE a.status = 'absent'),
			COUNT(*) FILTER (WHERE a.status = 'on_leave'),
			COALESCE(SUM(EXTRACT(EPOCH FROM (a.check_out - a.check_in)))
				FILTER (WHERE a.check_in IS NOT NULL AND a.check_out IS NOT NULL), 0)::bigint
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.company_id = $1
		  AND a.date BETWEEN $2 AND $3
		  AND ($4::uuid IS NULL OR e.branch_id = $4)
		GROUP BY a.employee_id
	`
	rows, err := q.Query(ctx, query, companyID, from, to, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance totals: %w", err)
	}
	defer rows.Close()

	var totals []report.AttendanceTotals
	for rows.Next() {
		var t report.AttendanceTotals
		if err := rows.Scan(&t.EmployeeID, &t.Present, &t.Late, &t.HalfDay, &t.Absent, &t.OnLeave, &t.WorkedSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan attendance totals: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// GetNewHires implements report.ReportRepository.
func (r *reportRepositoryImpl) GetNewHires(ctx context.Context, companyID string, from, to time.Time) ([]report.NewHireRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.employee_code, e.full_name, b.name, d.name,
			   to_char(e.hire_date, 'YYYY-MM-DD'), e.employment_type
		FROM employees e
		JOIN branches b ON b.id = e.branch_id
		LEFT JOIN departments d ON d.id = e.department_id
		WHERE e.company_id = $1
		  AND e.deleted_at IS NULL
		  AND e.hire_date BETWEEN $2 AND $3
		ORDER BY e.hire_date, e.employee_code
	`
	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query new hires: %w", err)
	}
	defer rows.Close()

	var result []report.NewHireRow
	for rows.Next() {
		var row report.NewHireRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeCode, &row.FullName, &row.BranchName,
			&row.DepartmentName, &row.HireDate, &row.EmploymentType); err != nil {
			return nil, fmt.Errorf("failed to scan new hire: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
