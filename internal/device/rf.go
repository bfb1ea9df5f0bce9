package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RF property keys and limits.
const (
	PropOnCode      = "on_code"
	PropOffCode     = "off_code"
	PropPulseLength = "pulse_length"

	// maxPulseLength is in microseconds; common 433MHz remotes sit at 150-700.
	maxPulseLength = 100000
)

// RFStore persists RF extensions in the rf_devices table, keyed by device id.
type RFStore struct{}

// Find returns the extension for deviceID, or sql.ErrNoRows wrapped when
// there is none.
func (RFStore) Find(ctx context.Context, q DBTX, deviceID int64) (*RFExtension, error) {
	var ext RFExtension
	err := q.QueryRowContext(ctx,
		`SELECT device_id, on_code, off_code, pulse_length FROM rf_devices WHERE device_id = ?`,
		deviceID,
	).Scan(&ext.DeviceID, &ext.OnCode, &ext.OffCode, &ext.PulseLength)
	if err != nil {
		return nil, fmt.Errorf("querying rf device %d: %w", deviceID, err)
	}
	return &ext, nil
}

// Save writes ext, replacing any existing row for the same device.
func (RFStore) Save(ctx context.Context, q DBTX, ext *RFExtension) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO rf_devices (device_id, on_code, off_code, pulse_length)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			on_code = excluded.on_code,
			off_code = excluded.off_code,
			pulse_length = excluded.pulse_length`,
		ext.DeviceID, ext.OnCode, ext.OffCode, ext.PulseLength,
	)
	if err != nil {
		return fmt.Errorf("saving rf device %d: %w", ext.DeviceID, err)
	}
	return nil
}

// Destroy removes the extension for deviceID. Absent rows are ignored.
func (RFStore) Destroy(ctx context.Context, q DBTX, deviceID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM rf_devices WHERE device_id = ?`, deviceID); err != nil {
		return fmt.Errorf("deleting rf device %d: %w", deviceID, err)
	}
	return nil
}

// RFHandler is the ExtensionHandler for TypeRF.
type RFHandler struct {
	store RFStore
}

// NewRFHandler returns the RF variant handler.
func NewRFHandler() *RFHandler {
	return &RFHandler{}
}

// Type implements ExtensionHandler.
func (*RFHandler) Type() TypeID { return TypeRF }

// Validate requires on_code, off_code and pulse_length. Codes must be
// non-negative; pulse length must be positive and at most 100ms.
func (*RFHandler) Validate(props Properties) error {
	_, err := parseRF(0, props)
	return err
}

// Create implements ExtensionHandler.
func (h *RFHandler) Create(ctx context.Context, q DBTX, deviceID int64, props Properties) (Extension, error) {
	return h.save(ctx, q, deviceID, props)
}

// Update implements ExtensionHandler. A device whose RF row has gone
// missing gets a fresh one.
func (h *RFHandler) Update(ctx context.Context, q DBTX, deviceID int64, props Properties) (Extension, error) {
	return h.save(ctx, q, deviceID, props)
}

func (h *RFHandler) save(ctx context.Context, q DBTX, deviceID int64, props Properties) (Extension, error) {
	ext, err := parseRF(deviceID, props)
	if err != nil {
		return nil, err
	}
	if err := h.store.Save(ctx, q, ext); err != nil {
		return nil, err
	}
	return ext, nil
}

// Load implements ExtensionHandler.
func (h *RFHandler) Load(ctx context.Context, q DBTX, deviceID int64) (Extension, error) {
	ext, err := h.store.Find(ctx, q, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: rf device %d", ErrExtensionMissing, deviceID)
		}
		return nil, err
	}
	return ext, nil
}

// Delete implements ExtensionHandler.
func (h *RFHandler) Delete(ctx context.Context, q DBTX, deviceID int64) error {
	return h.store.Destroy(ctx, q, deviceID)
}

func parseRF(deviceID int64, props Properties) (*RFExtension, error) {
	onCode, err := props.Int(PropOnCode)
	if err != nil {
		return nil, err
	}
	offCode, err := props.Int(PropOffCode)
	if err != nil {
		return nil, err
	}
	pulse, err := props.Int(PropPulseLength)
	if err != nil {
		return nil, err
	}

	if onCode < 0 || offCode < 0 {
		return nil, fmt.Errorf("%w: rf codes must be non-negative", ErrInvalidDevice)
	}
	if pulse <= 0 || pulse > maxPulseLength {
		return nil, fmt.Errorf("%w: %s must be between 1 and %d", ErrInvalidDevice, PropPulseLength, maxPulseLength)
	}

	return &RFExtension{
		DeviceID:    deviceID,
		OnCode:      onCode,
		OffCode:     offCode,
		PulseLength: pulse,
	}, nil
}
