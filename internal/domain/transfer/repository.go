package transfer

import "context"

type TransferRepository interface {
	Create(ctx context.Context, t Transfer) (Transfer, error)
	GetByID(ctx context.Context, id string, companyID string) (Transfer, error)
	List(ctx context.Context, filter TransferFilter, companyID string) ([]Transfer, int64, error)
	UpdateStatus(ctx context.Context, t Transfer) error
	HasPending(ctx context.Context, employeeID string, companyID string) (bool, error)
}
