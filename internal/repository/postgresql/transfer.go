package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/transfer"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type transferRepositoryImpl struct {
	db *database.DB
}

func NewTransferRepository(db *database.DB) transfer.TransferRepository {
	return &transferRepositoryImpl{db: db}
}

const transferColumns = `
	t.id, t.company_id, t.employee_id, t.from_branch_id, t.to_branch_id, t.effective_date, t.reason,
	t.status, t.requested_by, t.reviewed_by, t.reviewed_at, t.rejection_reason, t.created_at, t.updated_at,
	e.full_name, fb.name, tb.name`

const transferFrom = `
	FROM branch_transfers t
	JOIN employees e ON e.id = t.employee_id
	JOIN branches fb ON fb.id = t.from_branch_id
	JOIN branches tb ON tb.id = t.to_branch_id`

func scanTransfer(row pgx.Row) (transfer.Transfer, error) {
	var t transfer.Transfer
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.EmployeeID, &t.FromBranchID, &t.ToBranchID, &t.EffectiveDate, &t.Reason,
		&t.Status, &t.RequestedBy, &t.ReviewedBy, &t.ReviewedAt, &t.RejectionReason, &t.CreatedAt, &t.UpdatedAt,
		&t.EmployeeName, &t.FromBranchName, &t.ToBranchName,
	)
	return t, err
}

// Create implements transfer.TransferRepository.
func (r *transferRepositoryImpl) Create(ctx context.Context, t transfer.Transfer) (transfer.Transfer, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO branch_transfers (
			company_id, employee_id, from_branch_id, to_branch_id, effective_date, reason, status, requested_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		t.CompanyID, t.EmployeeID, t.FromBranchID, t.ToBranchID, t.EffectiveDate, t.Reason, t.Status, t.RequestedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("failed to create transfer: %w", err)
	}
	return t, nil
}

// GetByID implements transfer.TransferRepository.
func (r *transferRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (transfer.Transfer, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + transferColumns + transferFrom + ` WHERE t.id = $1 AND t.company_id = $2`
	t, err := scanTransfer(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transfer.Transfer{}, transfer.ErrTransferNotFound
		}
		return transfer.Transfer{}, fmt.Errorf("failed to get transfer: %w", err)
	}
	return t, nil
}

// List implements transfer.TransferRepository. BranchID matches either end.
func (r *transferRepositoryImpl) List(ctx context.Context, filter transfer.TransferFilter, companyID string) ([]transfer.Transfer, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "t.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND t.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.BranchID != nil && *filter.BranchID != "" {
		where += fmt.Sprintf(" AND (t.from_branch_id = $%d OR t.to_branch_id = $%d)", argIdx, argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND t.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM branch_transfers t WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY t.created_at DESC, t.id
		LIMIT $%d OFFSET $%d
	`, transferColumns, transferFrom, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []transfer.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read transfers: %w", err)
	}
	return transfers, total, nil
}

// UpdateStatus implements transfer.TransferRepository.
func (r *transferRepositoryImpl) UpdateStatus(ctx context.Context, t transfer.Transfer) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE branch_transfers
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5 AND company_id = $6 AND status = 'pending'
	`
	tag, err := q.Exec(ctx, query, t.Status, t.ReviewedBy, t.ReviewedAt, t.RejectionReason, t.ID, t.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return transfer.ErrTransferNotPending
	}
	return nil
}

// HasPending implements transfer.TransferRepository.
func (r *transferRepositoryImpl) HasPending(ctx context.Context, employeeID string, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var pending bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM branch_transfers
			WHERE company_id = $1 AND employee_id = $2 AND status = 'pending'
		)
	`, companyID, employeeID).Scan(&pending)
	if err != nil {
		return false, fmt.Errorf("failed to check pending transfer: %w", err)
	}
	return pending, nil
}
