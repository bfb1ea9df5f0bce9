// Package api is the HTTP boundary for Switchboard.
//
// It translates requests into calls on the device repository, the ownership
// authority and the control gateway, and their results into JSON. There is
// no business logic here beyond the ownership gate on per-device routes.
//
// # Security
//
// Every device route requires a bearer JWT (HS256) whose subject is the
// user ID. Tokens are minted by the operator CLI; there is no login
// endpoint. A device the caller does not own is reported exactly like one
// that does not exist.
//
// # Routes
//
//	GET    /api/v1/health
//	GET    /api/v1/metrics
//	GET    /api/v1/devices
//	POST   /api/v1/devices
//	GET    /api/v1/devices/{id}
//	PATCH  /api/v1/devices/{id}
//	DELETE /api/v1/devices/{id}
//	POST   /api/v1/devices/{id}/{action}
//	GET    /api/v1/audit
package api
