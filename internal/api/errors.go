package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/switchboard/internal/control"
	"github.com/nerrad567/switchboard/internal/device"
)

// Error represents a structured error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeBadGateway     = "broker_unavailable"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// msgDeviceNotFound is used for missing and not-owned devices alike so the
// response never reveals that someone else's device exists.
const msgDeviceNotFound = "device not found"

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeDeviceNotFound writes the one 404 used for every device miss.
func writeDeviceNotFound(w http.ResponseWriter) {
	writeNotFound(w, msgDeviceNotFound)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps repository and gateway errors onto HTTP responses.
// Validation messages are passed through; storage details are not.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, device.ErrInvalidDevice),
		errors.Is(err, device.ErrUnregisteredType),
		errors.Is(err, control.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, device.ErrDeviceNotFound),
		errors.Is(err, control.ErrOwnershipDenied):
		writeDeviceNotFound(w)
	case errors.Is(err, control.ErrTransport):
		s.logger.Warn("broker rejected command", "error", err,
			"request_id", r.Context().Value(ctxKeyRequestID))
		writeError(w, http.StatusBadGateway, ErrCodeBadGateway, "command could not be delivered to the broker")
	default:
		s.logger.Error("request failed", "error", err,
			"method", r.Method, "path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, "internal server error")
	}
}
