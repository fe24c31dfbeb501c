package device

import (
	"context"
	"time"
)

type DeviceRepository interface {
	Create(ctx context.Context, device Device) (Device, error)
	GetByID(ctx context.Context, id string, companyID string) (Device, error)

	// GetBySerialNumber is used by the push endpoint, which has no tenant
	// context yet; it returns ErrDeviceNotFound for unknown serials.
	GetBySerialNumber(ctx context.Context, serialNumber string) (Device, error)

	List(ctx context.Context, filter DeviceFilter, companyID string) ([]Device, int64, error)
	// ListActive returns active devices, optionally restricted to ids.
	ListActive(ctx context.Context, companyID string, ids []string) ([]Device, error)
	Update(ctx context.Context, req UpdateDeviceRequest, companyID string) error
	Delete(ctx context.Context, id string, companyID string) error

	MarkSynced(ctx context.Context, id string, at time.Time) error
	MarkSeen(ctx context.Context, id string, at time.Time) error
}
