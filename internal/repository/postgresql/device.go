package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type deviceRepositoryImpl struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) device.DeviceRepository {
	return &deviceRepositoryImpl{db: db}
}

const deviceColumns = `
	d.id, d.company_id, d.branch_id, d.serial_number, d.name, d.ip_address, d.status,
	d.last_synced_at, d.last_seen_at, d.created_at, d.updated_at,
	b.name, b.timezone`

func scanDevice(row pgx.Row) (device.Device, error) {
	var d device.Device
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.BranchID, &d.SerialNumber, &d.Name, &d.IPAddress, &d.Status,
		&d.LastSyncedAt, &d.LastSeenAt, &d.CreatedAt, &d.UpdatedAt,
		&d.BranchName, &d.Timezone,
	)
	return d, err
}

func (r *deviceRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + deviceColumns + `
		FROM devices d
		JOIN branches b ON b.id = d.branch_id
		WHERE ` + where
	d, err := scanDevice(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// Create implements device.DeviceRepository.
func (r *deviceRepositoryImpl) Create(ctx context.Context, d device.Device) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO devices (company_id, branch_id, serial_number, name, ip_address, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, d.CompanyID, d.BranchID, d.SerialNumber, d.Name, d.IPAddress, d.Status).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return device.Device{}, fmt.Errorf("failed to create device: %w", err)
	}
	return d, nil
}

// GetByID implements device.DeviceRepository.
func (r *deviceRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (device.Device, error) {
	return r.getOne(ctx, "d.id = $1 AND d.company_id = $2", id, companyID)
}

// GetBySerialNumber implements device.DeviceRepository.
func (r *deviceRepositoryImpl) GetBySerialNumber(ctx context.Context, serialNumber string) (device.Device, error) {
	return r.getOne(ctx, "d.serial_number = $1", serialNumber)
}

// List implements device.DeviceRepository.
func (r *deviceRepositoryImpl) List(ctx context.Context, filter device.DeviceFilter, companyID string) ([]device.Device, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "d.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.BranchID != nil && *filter.BranchID != "" {
		where += fmt.Sprintf(" AND d.branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND d.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		where += fmt.Sprintf(" AND (d.name ILIKE $%d OR d.serial_number ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM devices d WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM devices d
		JOIN branches b ON b.id = d.branch_id
		WHERE %s
		ORDER BY d.name, d.id
		LIMIT $%d OFFSET $%d
	`, deviceColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	devices, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return devices, total, nil
}

// ListActive implements device.DeviceRepository.
func (r *deviceRepositoryImpl) ListActive(ctx context.Context, companyID string, ids []string) ([]device.Device, error) {
	query := `SELECT ` + deviceColumns + `
		FROM devices d
		JOIN branches b ON b.id = d.branch_id
		WHERE d.company_id = $1 AND d.status = 'active'`
	args := []interface{}{companyID}
	if len(ids) > 0 {
		query += " AND d.id = ANY($2::uuid[])"
		args = append(args, ids)
	}
	query += " ORDER BY d.serial_number"
	return r.query(ctx, query, args...)
}

func (r *deviceRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]device.Device, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []device.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}
	return devices, nil
}

// Update implements device.DeviceRepository.
func (r *deviceRepositoryImpl) Update(ctx context.Context, req device.UpdateDeviceRequest, companyID string) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.BranchID != nil {
		updates["branch_id"] = *req.BranchID
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IPAddress != nil {
		updates["ip_address"] = *req.IPAddress
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return nil
	}

	sql, args := buildUpdate("devices", updates)
	sql += fmt.Sprintf(" WHERE id = $%d AND company_id = $%d", len(args)+1, len(args)+2)
	args = append(args, req.ID, companyID)

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}

// Delete implements device.DeviceRepository.
func (r *deviceRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM devices WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}

// MarkSynced implements device.DeviceRepository.
func (r *deviceRepositoryImpl) MarkSynced(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE devices SET last_synced_at = $1 WHERE id = $2`, at, id)
	return err
}

// MarkSeen implements device.DeviceRepository.
func (r *deviceRepositoryImpl) MarkSeen(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `UPDATE devices SET last_seen_at = $1 WHERE id = $2`, at, id)
	return err
}
