package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidDevice is returned when a property bag fails validation.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrPersistence is returned when the underlying store fails.
	ErrPersistence = errors.New("device: persistence failure")

	// ErrUnregisteredType is returned when no extension handler is
	// registered for a device's type tag.
	ErrUnregisteredType = errors.New("device: unregistered type")

	// ErrDuplicateType is returned when registering a second handler for a tag.
	ErrDuplicateType = errors.New("device: type already registered")

	// ErrExtensionMissing is returned when a device row has no variant row.
	// It is always wrapped together with ErrPersistence.
	ErrExtensionMissing = errors.New("device: extension record missing")
)
