package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.company_id, a.employee_id, a.date, a.check_in, a.check_out, a.status,
	a.device_id, a.leave_application_id, a.notes, a.updated_by, a.created_at, a.updated_at,
	e.full_name, e.employee_code, e.branch_id`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.CompanyID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut, &att.Status,
		&att.DeviceID, &att.LeaveApplicationID, &att.Notes, &att.UpdatedBy, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeeCode, &att.BranchID,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			company_id, employee_id, date, check_in, check_out, status,
			device_id, leave_application_id, notes, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newAttendance.CompanyID,
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.CheckIn,
		newAttendance.CheckOut,
		newAttendance.Status,
		newAttendance.DeviceID,
		newAttendance.LeaveApplicationID,
		newAttendance.Notes,
		newAttendance.UpdatedBy,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1 AND a.company_id = $2
	`
	att, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository. The row is
// locked when called inside a transaction.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.date = $2 AND a.company_id = $3
	`
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		query += " FOR UPDATE OF a"
	}

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_in = $1, check_out = $2, status = $3, device_id = $4,
			leave_application_id = $5, notes = $6, updated_by = $7, updated_at = NOW()
		WHERE id = $8 AND company_id = $9
	`
	tag, err := q.Exec(ctx, query,
		att.CheckIn, att.CheckOut, att.Status, att.DeviceID,
		att.LeaveApplicationID, att.Notes, att.UpdatedBy,
		att.ID, att.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		baseWhere += fmt.Sprintf(" AND e.branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendances a JOIN employees e ON e.id = a.employee_id WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	orderByField := "a.date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.full_name"
	case "check_in":
		orderByField = "a.check_in"
	case "check_out":
		orderByField = "a.check_out"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`SELECT %s
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s, a.id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendances: %w", err)
	}
	return attendances, total, nil
}

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) attendance.PolicyRepository {
	return &policyRepository{db: db}
}

func scanPolicy(row pgx.Row) (attendance.AttendancePolicy, error) {
	var (
		p          attendance.AttendancePolicy
		start, end string
		weekend    []int16
	)
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.BranchID, &start, &end,
		&p.LateThresholdMinutes, &p.HalfDayHours, &weekend,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return attendance.AttendancePolicy{}, err
	}
	if p.WorkStart, err = attendance.ParseClock(start); err != nil {
		return attendance.AttendancePolicy{}, err
	}
	if p.WorkEnd, err = attendance.ParseClock(end); err != nil {
		return attendance.AttendancePolicy{}, err
	}
	p.WeekendDays = make([]time.Weekday, 0, len(weekend))
	for _, d := range weekend {
		p.WeekendDays = append(p.WeekendDays, time.Weekday(d))
	}
	return p, nil
}

const policyColumns = `
	id, company_id, branch_id, to_char(work_start, 'HH24:MI'), to_char(work_end, 'HH24:MI'),
	late_threshold_minutes, half_day_hours, weekend_days, created_at, updated_at`

// GetByBranchID implements attendance.PolicyRepository.
func (p *policyRepository) GetByBranchID(ctx context.Context, branchID string, companyID string) (*attendance.AttendancePolicy, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + policyColumns + ` FROM attendance_policies WHERE branch_id = $1 AND company_id = $2`
	policy, err := scanPolicy(q.QueryRow(ctx, query, branchID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance policy: %w", err)
	}
	return &policy, nil
}

// Upsert implements attendance.PolicyRepository.
func (p *policyRepository) Upsert(ctx context.Context, policy attendance.AttendancePolicy) (attendance.AttendancePolicy, error) {
	q := GetQuerier(ctx, p.db)

	weekend := make([]int16, 0, len(policy.WeekendDays))
	for _, d := range policy.WeekendDays {
		weekend = append(weekend, int16(d))
	}

	query := `
		INSERT INTO attendance_policies (
			company_id, branch_id, work_start, work_end,
			late_threshold_minutes, half_day_hours, weekend_days
		) VALUES ($1, $2, $3::time, $4::time, $5, $6, $7)
		ON CONFLICT (branch_id) DO UPDATE SET
			work_start = EXCLUDED.work_start,
			work_end = EXCLUDED.work_end,
			late_threshold_minutes = EXCLUDED.late_threshold_minutes,
			half_day_hours = EXCLUDED.half_day_hours,
			weekend_days = EXCLUDED.weekend_days,
			updated_at = NOW()
		RETURNING ` + policyColumns
	saved, err := scanPolicy(q.QueryRow(ctx, query,
		policy.CompanyID, policy.BranchID, policy.WorkStart.String(), policy.WorkEnd.String(),
		policy.LateThresholdMinutes, policy.HalfDayHours, weekend,
	))
	if err != nil {
		return attendance.AttendancePolicy{}, fmt.Errorf("failed to upsert attendance policy: %w", err)
	}
	return saved, nil
}

type punchLogRepository struct {
	db *database.DB
}

func NewPunchLogRepository(db *database.DB) attendance.PunchLogRepository {
	return &punchLogRepository{db: db}
}

// BulkInsert implements attendance.PunchLogRepository. Rows are sent in one
// batch; duplicates are skipped by the unique index.
func (p *punchLogRepository) BulkInsert(ctx context.Context, logs []attendance.PunchLog) (int64, error) {
	if len(logs) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO punch_logs (
			company_id, device_id, device_user_pin, punched_at, kind, verify_mode, source, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (device_id, device_user_pin, punched_at) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, l := range logs {
		batch.Queue(query, l.CompanyID, l.DeviceID, l.DeviceUserPIN, l.Timestamp, l.Kind, l.VerifyMode, l.Source, l.ReceivedAt)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range logs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert punch log: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// ListByDevice implements attendance.PunchLogRepository.
func (p *punchLogRepository) ListByDevice(ctx context.Context, deviceID string, from, to time.Time) ([]attendance.PunchLog, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, company_id, device_id, device_user_pin, punched_at, kind, verify_mode, source, received_at
		FROM punch_logs
		WHERE device_id = $1 AND punched_at >= $2 AND punched_at < $3
		ORDER BY punched_at, id
	`
	rows, err := q.Query(ctx, query, deviceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query punch logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.PunchLog
	for rows.Next() {
		var l attendance.PunchLog
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.DeviceID, &l.DeviceUserPIN, &l.Timestamp, &l.Kind, &l.VerifyMode, &l.Source, &l.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan punch log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read punch logs: %w", err)
	}
	return logs, nil
}
