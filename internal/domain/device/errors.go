package device

import "errors"

var (
	ErrDeviceNotFound     = errors.New("device not found")
	ErrSerialNumberExists = errors.New("device with this serial number already exists")
	ErrDeviceInactive     = errors.New("device is inactive")
	ErrBranchNotInCompany = errors.New("branch does not belong to this company")
)
