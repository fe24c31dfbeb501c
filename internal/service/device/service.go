package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	"github.com/jackc/pgx/v5/pgconn"
)

type BranchLookup interface {
	GetByID(ctx context.Context, id string, companyID string) (branch.Branch, error)
}

type DeviceServiceImpl struct {
	devices  device.DeviceRepository
	branches BranchLookup
}

func NewDeviceService(devices device.DeviceRepository, branches BranchLookup) *DeviceServiceImpl {
	return &DeviceServiceImpl{
		devices:  devices,
		branches: branches,
	}
}

// Create implements device.DeviceService.
func (s *DeviceServiceImpl) Create(ctx context.Context, req device.CreateDeviceRequest) (device.DeviceResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return device.DeviceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return device.DeviceResponse{}, err
	}
	if err := s.checkBranch(ctx, req.BranchID, companyID); err != nil {
		return device.DeviceResponse{}, err
	}

	created, err := s.devices.Create(ctx, device.Device{
		CompanyID:    companyID,
		BranchID:     req.BranchID,
		SerialNumber: req.SerialNumber,
		Name:         req.Name,
		IPAddress:    req.IPAddress,
		Status:       device.StatusActive,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return device.DeviceResponse{}, device.ErrSerialNumberExists
		}
		return device.DeviceResponse{}, fmt.Errorf("failed to create device: %w", err)
	}

	slog.Info("device registered", "device_id", created.ID, "serial_number", created.SerialNumber, "branch_id", created.BranchID)
	return toDeviceResponse(created), nil
}

// GetByID implements device.DeviceService.
func (s *DeviceServiceImpl) GetByID(ctx context.Context, id string) (device.DeviceResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return device.DeviceResponse{}, err
	}

	d, err := s.devices.GetByID(ctx, id, companyID)
	if err != nil {
		return device.DeviceResponse{}, err
	}
	return toDeviceResponse(d), nil
}

// List implements device.DeviceService.
func (s *DeviceServiceImpl) List(ctx context.Context, filter device.DeviceFilter) (device.ListDeviceResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return device.ListDeviceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return device.ListDeviceResponse{}, err
	}

	rows, total, err := s.devices.List(ctx, filter, companyID)
	if err != nil {
		return device.ListDeviceResponse{}, fmt.Errorf("failed to list devices: %w", err)
	}

	resp := device.ListDeviceResponse{
		Page:    pagination.New(total, filter.Page, filter.Limit),
		Devices: make([]device.DeviceResponse, 0, len(rows)),
	}
	for _, d := range rows {
		resp.Devices = append(resp.Devices, toDeviceResponse(d))
	}
	return resp, nil
}

// Update implements device.DeviceService.
func (s *DeviceServiceImpl) Update(ctx context.Context, req device.UpdateDeviceRequest) (device.DeviceResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return device.DeviceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return device.DeviceResponse{}, err
	}
	if req.BranchID != nil {
		if err := s.checkBranch(ctx, *req.BranchID, companyID); err != nil {
			return device.DeviceResponse{}, err
		}
	}

	if err := s.devices.Update(ctx, req, companyID); err != nil {
		return device.DeviceResponse{}, err
	}
	return s.GetByID(ctx, req.ID)
}

// Delete implements device.DeviceService. Staged punch logs of the device
// are kept.
func (s *DeviceServiceImpl) Delete(ctx context.Context, id string) error {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.devices.Delete(ctx, id, companyID)
}

func (s *DeviceServiceImpl) checkBranch(ctx context.Context, branchID, companyID string) error {
	if _, err := s.branches.GetByID(ctx, branchID, companyID); err != nil {
		if errors.Is(err, branch.ErrBranchNotFound) {
			return device.ErrBranchNotInCompany
		}
		return err
	}
	return nil
}

func toDeviceResponse(d device.Device) device.DeviceResponse {
	return device.DeviceResponse{
		ID:           d.ID,
		BranchID:     d.BranchID,
		BranchName:   d.BranchName,
		SerialNumber: d.SerialNumber,
		Name:         d.Name,
		IPAddress:    d.IPAddress,
		Status:       string(d.Status),
		LastSyncedAt: formatTime(d.LastSyncedAt),
		LastSeenAt:   formatTime(d.LastSeenAt),
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
