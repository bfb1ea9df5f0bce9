package auth

import (
	"context"
	"fmt"

	"github.com/nerrad567/switchboard/internal/device"
)

// DeviceLister returns the devices a user owns. Satisfied by
// *device.Repository.
type DeviceLister interface {
	ListByOwner(ctx context.Context, ownerUserID int64) ([]device.Device, error)
}

// Authority answers ownership questions. It never writes.
type Authority struct {
	devices DeviceLister
}

// NewAuthority creates an Authority over devices.
func NewAuthority(devices DeviceLister) *Authority {
	return &Authority{devices: devices}
}

// Devices returns the user's devices ordered by ID. Extensions are not loaded.
func (a *Authority) Devices(ctx context.Context, userID int64) ([]device.Device, error) {
	devices, err := a.devices.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing devices for user %d: %w", userID, err)
	}
	return devices, nil
}

// DoesUserOwnDevice reports whether deviceID is among the user's devices.
// A device that does not exist is simply not owned; the error is reserved
// for storage failures.
func (a *Authority) DoesUserOwnDevice(ctx context.Context, userID, deviceID int64) (bool, error) {
	devices, err := a.Devices(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, d := range devices {
		if d.ID == deviceID {
			return true, nil
		}
	}
	return false, nil
}
