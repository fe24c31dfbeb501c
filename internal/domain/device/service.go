package device

import "context"

type DeviceService interface {
	Create(ctx context.Context, req CreateDeviceRequest) (DeviceResponse, error)
	GetByID(ctx context.Context, id string) (DeviceResponse, error)
	List(ctx context.Context, filter DeviceFilter) (ListDeviceResponse, error)
	Update(ctx context.Context, req UpdateDeviceRequest) (DeviceResponse, error)
	Delete(ctx context.Context, id string) error
}
