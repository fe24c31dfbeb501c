package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/transfer"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
)

// EmployeeMover reads an employee and rewrites its home branch.
type EmployeeMover interface {
	GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error)
	UpdateBranch(ctx context.Context, id string, branchID string, companyID string) error
}

type BranchLookup interface {
	GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error)
}

type TransferServiceImpl struct {
	transfers transfer.TransferRepository
	employees EmployeeMover
	branches  BranchLookup
	tx        database.Transactor
	now       func() time.Time
}

func NewTransferService(
	transfers transfer.TransferRepository,
	employees EmployeeMover,
	branches BranchLookup,
	tx database.Transactor,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		transfers: transfers,
		employees: employees,
		branches:  branches,
		tx:        tx,
		now:       time.Now,
	}
}

// Request implements transfer.TransferService.
func (s *TransferServiceImpl) Request(ctx context.Context, req transfer.CreateTransferRequest) (transfer.TransferResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return transfer.TransferResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return transfer.TransferResponse{}, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID, claims.CompanyID)
	if err != nil {
		return transfer.TransferResponse{}, err
	}
	if emp.Status != employee.StatusActive {
		return transfer.TransferResponse{}, employee.ErrEmployeeNotActive
	}
	if emp.BranchID == req.ToBranchID {
		return transfer.TransferResponse{}, transfer.ErrSameBranch
	}
	target, err := s.branches.GetByID(ctx, req.ToBranchID, claims.CompanyID)
	if err != nil {
		return transfer.TransferResponse{}, err
	}

	pending, err := s.transfers.HasPending(ctx, emp.ID, claims.CompanyID)
	if err != nil {
		return transfer.TransferResponse{}, fmt.Errorf("failed to check pending transfers: %w", err)
	}
	if pending {
		return transfer.TransferResponse{}, transfer.ErrTransferAlreadyPending
	}

	created, err := s.transfers.Create(ctx, transfer.Transfer{
		CompanyID:     claims.CompanyID,
		EmployeeID:    emp.ID,
		FromBranchID:  emp.BranchID,
		ToBranchID:    target.ID,
		EffectiveDate: req.Effective(),
		Reason:        req.Reason,
		Status:        transfer.StatusPending,
		RequestedBy:   claims.UserID,
	})
	if err != nil {
		return transfer.TransferResponse{}, fmt.Errorf("failed to create transfer: %w", err)
	}
	created.EmployeeName = &emp.FullName
	created.FromBranchName = emp.BranchName
	created.ToBranchName = &target.Name

	slog.Info("transfer requested", "transfer_id", created.ID, "employee_id", emp.ID, "to_branch_id", target.ID)
	return transfer.NewTransferResponse(created), nil
}

// List implements transfer.TransferService.
func (s *TransferServiceImpl) List(ctx context.Context, filter transfer.TransferFilter) (transfer.ListTransferResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return transfer.ListTransferResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return transfer.ListTransferResponse{}, err
	}

	rows, total, err := s.transfers.List(ctx, filter, companyID)
	if err != nil {
		return transfer.ListTransferResponse{}, fmt.Errorf("failed to list transfers: %w", err)
	}

	resp := transfer.ListTransferResponse{
		Page:      pagination.New(total, filter.Page, filter.Limit),
		Transfers: make([]transfer.TransferResponse, 0, len(rows)),
	}
	for _, t := range rows {
		resp.Transfers = append(resp.Transfers, transfer.NewTransferResponse(t))
	}
	return resp, nil
}

// Get implements transfer.TransferService.
func (s *TransferServiceImpl) Get(ctx context.Context, id string) (transfer.TransferResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return transfer.TransferResponse{}, err
	}
	t, err := s.transfers.GetByID(ctx, id, companyID)
	if err != nil {
		return transfer.TransferResponse{}, err
	}
	return transfer.NewTransferResponse(t), nil
}

// Approve implements transfer.TransferService.
func (s *TransferServiceImpl) Approve(ctx context.Context, id string) (transfer.TransferResponse, error) {
	claims, t, err := s.pending(ctx, id)
	if err != nil {
		return transfer.TransferResponse{}, err
	}

	now := s.now().UTC()
	t.Status = transfer.StatusApproved
	t.ReviewedBy = &claims.UserID
	t.ReviewedAt = &now

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.transfers.UpdateStatus(ctx, t); err != nil {
			return fmt.Errorf("failed to approve transfer: %w", err)
		}
		if err := s.employees.UpdateBranch(ctx, t.EmployeeID, t.ToBranchID, claims.CompanyID); err != nil {
			return fmt.Errorf("failed to move employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return transfer.TransferResponse{}, err
	}

	slog.Info("transfer approved",
		"transfer_id", t.ID,
		"employee_id", t.EmployeeID,
		"from_branch_id", t.FromBranchID,
		"to_branch_id", t.ToBranchID,
		"reviewed_by", claims.UserID,
	)
	return transfer.NewTransferResponse(t), nil
}

// Reject implements transfer.TransferService.
func (s *TransferServiceImpl) Reject(ctx context.Context, req transfer.RejectTransferRequest) (transfer.TransferResponse, error) {
	if err := req.Validate(); err != nil {
		return transfer.TransferResponse{}, err
	}
	claims, t, err := s.pending(ctx, req.ID)
	if err != nil {
		return transfer.TransferResponse{}, err
	}

	now := s.now().UTC()
	t.Status = transfer.StatusRejected
	t.ReviewedBy = &claims.UserID
	t.ReviewedAt = &now
	t.RejectionReason = &req.Reason
	if err := s.transfers.UpdateStatus(ctx, t); err != nil {
		return transfer.TransferResponse{}, fmt.Errorf("failed to reject transfer: %w", err)
	}
	return transfer.NewTransferResponse(t), nil
}

func (s *TransferServiceImpl) pending(ctx context.Context, id string) (jwt.Claims, transfer.Transfer, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, transfer.Transfer{}, err
	}
	t, err := s.transfers.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return jwt.Claims{}, transfer.Transfer{}, err
	}
	if t.Status != transfer.StatusPending {
		return jwt.Claims{}, transfer.Transfer{}, transfer.ErrTransferNotPending
	}
	return claims, t, nil
}
