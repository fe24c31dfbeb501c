package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

// Create implements company.CompanyRepository.
func (c *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO companies (name, username, address, logo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, newCompany.Name, newCompany.Username, newCompany.Address, newCompany.LogoURL).
		Scan(&newCompany.ID, &newCompany.CreatedAt, &newCompany.UpdatedAt)
	if err != nil {
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	return newCompany, nil
}

// GetByID implements company.CompanyRepository.
func (c *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT id, name, username, address, logo_url, created_at, updated_at
		FROM companies
		WHERE id = $1
	`
	var result company.Company
	err := q.QueryRow(ctx, query, id).Scan(
		&result.ID, &result.Name, &result.Username, &result.Address, &result.LogoURL,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company: %w", err)
	}
	return result, nil
}

// ExistsByUsername implements company.CompanyRepository.
func (c *companyRepositoryImpl) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	q := GetQuerier(ctx, c.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE username = $1)`, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check company username: %w", err)
	}
	return exists, nil
}

// Update implements company.CompanyRepository.
func (c *companyRepositoryImpl) Update(ctx context.Context, updated company.Company) error {
	q := GetQuerier(ctx, c.db)

	tag, err := q.Exec(ctx, `
		UPDATE companies SET name = $1, address = $2, logo_url = $3, updated_at = NOW()
		WHERE id = $4
	`, updated.Name, updated.Address, updated.LogoURL, updated.ID)
	if err != nil {
		return fmt.Errorf("failed to update company with id %s: %w", updated.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// ListIDs implements company.CompanyRepository.
func (c *companyRepositoryImpl) ListIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, c.db)

	rows, err := q.Query(ctx, `SELECT id FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read companies: %w", err)
	}
	return ids, nil
}
