// Package control turns a user's request to actuate a device into a message
// on the broker.
//
// A request moves through a small state machine:
//
//	received ──▶ authorized ──▶ published
//	    │
//	    └──────▶ rejected
//
// Gateway validates the action (lower-case letters only) and asks the
// ownership checker whether the user owns the device. Only then does it hand
// a Command to the Publisher, which encodes it (JSON or CBOR) and publishes
// it on {prefix}/users/{user}/devices/{device}/{action}. Delivery to the
// physical device is not confirmed and failed publishes are not retried.
package control
