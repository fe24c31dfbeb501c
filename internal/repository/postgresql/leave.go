package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

const leaveTypeColumns = `id, company_id, name, code, requires_approval, created_at, updated_at`

func scanLeaveType(row pgx.Row) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(&lt.ID, &lt.CompanyID, &lt.Name, &lt.Code, &lt.RequiresApproval, &lt.CreatedAt, &lt.UpdatedAt)
	return lt, err
}

// Create implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_types (company_id, name, code, requires_approval)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + leaveTypeColumns
	created, err := scanLeaveType(q.QueryRow(ctx, query, lt.CompanyID, lt.Name, lt.Code, lt.RequiresApproval))
	if err != nil {
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types WHERE id = $1 AND company_id = $2`
	lt, err := scanLeaveType(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	return lt, nil
}

// GetByCompanyID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+leaveTypeColumns+` FROM leave_types WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave type: %w", err)
		}
		types = append(types, lt)
	}
	return types, rows.Err()
}

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

const leaveApplicationColumns = `
	la.id, la.company_id, la.employee_id, la.leave_type_id, la.start_date, la.end_date, la.reason,
	la.status, la.reviewed_by, la.reviewed_at, la.rejection_reason, la.created_at, la.updated_at,
	e.full_name, lt.name, e.branch_id`

const leaveApplicationFrom = `
	FROM leave_applications la
	JOIN employees e ON e.id = la.employee_id
	JOIN leave_types lt ON lt.id = la.leave_type_id`

func scanLeaveApplication(row pgx.Row) (leave.LeaveApplication, error) {
	var a leave.LeaveApplication
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.LeaveTypeID, &a.StartDate, &a.EndDate, &a.Reason,
		&a.Status, &a.ReviewedBy, &a.ReviewedAt, &a.RejectionReason, &a.CreatedAt, &a.UpdatedAt,
		&a.EmployeeName, &a.LeaveTypeName, &a.BranchID,
	)
	return a, err
}

// Create implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, app leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (company_id, employee_id, leave_type_id, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		app.CompanyID, app.EmployeeID, app.LeaveTypeID, app.StartDate, app.EndDate, app.Reason, app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return leave.LeaveApplication{}, fmt.Errorf("failed to create leave application: %w", err)
	}
	return app, nil
}

// GetByID implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + leaveApplicationFrom + `
		WHERE la.id = $1 AND la.company_id = $2`
	a, err := scanLeaveApplication(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveApplication{}, leave.ErrApplicationNotFound
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to get leave application: %w", err)
	}
	return a, nil
}

// List implements leave.LeaveApplicationRepository. From and To select
// applications intersecting the range.
func (r *leaveApplicationRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter, companyID string) ([]leave.LeaveApplication, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "la.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND la.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.LeaveTypeID != nil && *filter.LeaveTypeID != "" {
		where += fmt.Sprintf(" AND la.leave_type_id = $%d", argIdx)
		args = append(args, *filter.LeaveTypeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND la.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.From != nil && *filter.From != "" {
		where += fmt.Sprintf(" AND la.end_date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil && *filter.To != "" {
		where += fmt.Sprintf(" AND la.start_date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM leave_applications la WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave applications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY la.start_date DESC, la.id
		LIMIT $%d OFFSET $%d
	`, leaveApplicationColumns, leaveApplicationFrom, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave applications: %w", err)
	}
	defer rows.Close()

	var apps []leave.LeaveApplication
	for rows.Next() {
		a, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read leave applications: %w", err)
	}
	return apps, total, nil
}

// UpdateStatus implements leave.LeaveApplicationRepository. Only a pending
// application can change status, so concurrent reviews cannot both win.
func (r *leaveApplicationRepositoryImpl) UpdateStatus(ctx context.Context, app leave.LeaveApplication) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5 AND company_id = $6 AND status = 'pending'
	`
	tag, err := q.Exec(ctx, query, app.Status, app.ReviewedBy, app.ReviewedAt, app.RejectionReason, app.ID, app.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to update leave application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrApplicationNotPending
	}
	return nil
}

// HasOverlap implements leave.LeaveApplicationRepository.
func (r *leaveApplicationRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_applications
			WHERE company_id = $1 AND employee_id = $2
			  AND status IN ('pending', 'approved')
			  AND start_date <= $4 AND end_date >= $3
		)
	`
	var overlap bool
	if err := q.QueryRow(ctx, query, companyID, employeeID, start, end).Scan(&overlap); err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return overlap, nil
}
