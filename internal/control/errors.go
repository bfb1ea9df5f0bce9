package control

import "errors"

// Domain-specific errors for control requests.
var (
	// ErrInvalidRequest is returned when the action or device id fails
	// boundary validation. Nothing is published.
	ErrInvalidRequest = errors.New("control: invalid request")

	// ErrOwnershipDenied is returned when the user does not own the device,
	// including when the device does not exist. Nothing is published.
	ErrOwnershipDenied = errors.New("control: ownership denied")

	// ErrTransport is returned when the broker did not accept the command.
	// It wraps the underlying mqtt error. Not retried.
	ErrTransport = errors.New("control: transport failure")

	// ErrUnknownCodec is returned for an unsupported payload format name.
	ErrUnknownCodec = errors.New("control: unknown payload format")
)
