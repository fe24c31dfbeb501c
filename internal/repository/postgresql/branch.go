package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

// Create implements branch.BranchRepository.
func (r *branchRepositoryImpl) Create(ctx context.Context, b branch.Branch) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO branches (company_id, name, address, timezone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, name, address, timezone, created_at, updated_at
	`
	var result branch.Branch
	err := q.QueryRow(ctx, query, b.CompanyID, b.Name, b.Address, b.Timezone).Scan(
		&result.ID, &result.CompanyID, &result.Name, &result.Address, &result.Timezone,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return branch.Branch{}, fmt.Errorf("failed to create branch: %w", err)
	}
	return result, nil
}

// GetByID implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, address, timezone, created_at, updated_at
		FROM branches
		WHERE id = $1 AND company_id = $2
	`
	var result branch.Branch
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&result.ID, &result.CompanyID, &result.Name, &result.Address, &result.Timezone,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}
	return result, nil
}

// GetByCompanyID implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, address, timezone, created_at, updated_at
		FROM branches
		WHERE company_id = $1
		ORDER BY name
	`
	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		var b branch.Branch
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.Name, &b.Address, &b.Timezone, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// Update implements branch.BranchRepository.
func (r *branchRepositoryImpl) Update(ctx context.Context, req branch.UpdateBranchRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Timezone != nil {
		updates["timezone"] = *req.Timezone
	}
	if len(updates) == 0 {
		return nil
	}

	sql, args := buildUpdate("branches", updates)
	sql += fmt.Sprintf(" WHERE id = $%d AND company_id = $%d", len(args)+1, len(args)+2)
	args = append(args, req.ID, req.CompanyID)

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrBranchNotFound
	}
	return nil
}

// Delete implements branch.BranchRepository. Employees and devices keep a
// restricting foreign key, so a branch in use fails with 23503.
func (r *branchRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM branches WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrBranchNotFound
	}
	return nil
}

// GetTimezone implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetTimezone(ctx context.Context, id string, companyID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var tz string
	err := q.QueryRow(ctx, `SELECT timezone FROM branches WHERE id = $1 AND company_id = $2`, id, companyID).Scan(&tz)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", branch.ErrBranchNotFound
		}
		return "", fmt.Errorf("failed to get branch timezone: %w", err)
	}
	return tz, nil
}
