package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/switchboard/internal/control"
)

// handleControlDevice sends an action to one of the caller's devices.
//
// The gateway decides ownership, so a device the caller does not own gets
// the same 404 as a missing one. Success is 202: the command reached the
// broker, not necessarily the device.
func (s *Server) handleControlDevice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeDeviceNotFound(w)
		return
	}

	out, err := s.controller.Control(r.Context(), control.Request{
		UserID:   userIDFromContext(r.Context()),
		Action:   chi.URLParam(r, "action"),
		DeviceID: id,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, out)
}
