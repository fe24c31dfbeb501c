package transfer

import "context"

type TransferService interface {
	Request(ctx context.Context, req CreateTransferRequest) (TransferResponse, error)
	List(ctx context.Context, filter TransferFilter) (ListTransferResponse, error)
	Get(ctx context.Context, id string) (TransferResponse, error)

	// Approve moves the employee to the target branch.
	Approve(ctx context.Context, id string) (TransferResponse, error)
	Reject(ctx context.Context, req RejectTransferRequest) (TransferResponse, error)
}
