package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/switchboard/internal/audit"
	"github.com/nerrad567/switchboard/internal/device"
)

// typeKey selects the variant on create. It is stripped before the bag
// reaches the repository.
const typeKey = "type"

// handleListDevices returns the caller's devices ordered by ID.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.owners.Devices(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if devices == nil {
		devices = []device.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleCreateDevice creates a device owned by the caller.
//
// The body is a property bag, either JSON or a URL-encoded form. An optional
// "type" key names the variant; otherwise the configured default is used.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	props, ok := decodeProperties(w, r)
	if !ok {
		return
	}

	typeID := s.defaultType
	if raw, present := props[typeKey]; present {
		delete(props, typeKey)
		var name string
		switch v := raw.(type) {
		case string:
			name = v
		case json.Number:
			name = v.String()
		}
		parsed, err := device.ParseTypeID(name)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		typeID = parsed
	}

	userID := userIDFromContext(r.Context())
	dev, err := s.devices.Create(r.Context(), props, userID, typeID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(audit.ActionCreate, dev.ID, userID, map[string]any{
		"name": dev.Name,
		"type": dev.TypeID.String(),
	})
	writeJSON(w, http.StatusCreated, dev)
}

// handleGetDevice returns one of the caller's devices with its extension.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedDeviceID(w, r)
	if !ok {
		return
	}

	dev, err := s.devices.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleUpdateDevice replaces the mutable fields and extension of one of the
// caller's devices. Type and owner cannot change.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedDeviceID(w, r)
	if !ok {
		return
	}

	props, ok := decodeProperties(w, r)
	if !ok {
		return
	}
	delete(props, typeKey)

	dev, err := s.devices.Update(r.Context(), id, props)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(audit.ActionUpdate, dev.ID, userIDFromContext(r.Context()), map[string]any{
		"name": dev.Name,
	})
	writeJSON(w, http.StatusOK, dev)
}

// handleDeleteDevice removes one of the caller's devices and its extension.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedDeviceID(w, r)
	if !ok {
		return
	}

	name, err := s.devices.Name(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.devices.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(audit.ActionDelete, id, userIDFromContext(r.Context()), map[string]any{
		"name": name,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"message": "Deleted device " + name,
	})
}

// ownedDeviceID parses the {id} URL parameter and confirms the caller owns
// it. On failure the response has been written and ok is false.
func (s *Server) ownedDeviceID(w http.ResponseWriter, r *http.Request) (id int64, ok bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeDeviceNotFound(w)
		return 0, false
	}

	owned, err := s.owners.DoesUserOwnDevice(r.Context(), userIDFromContext(r.Context()), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return 0, false
	}
	if !owned {
		writeDeviceNotFound(w)
		return 0, false
	}
	return id, true
}

// decodeProperties reads a JSON object or form body into a property bag.
func decodeProperties(w http.ResponseWriter, r *http.Request) (device.Properties, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")) //nolint:errcheck // empty on failure, treated as JSON

	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			writeBadRequest(w, "invalid form body")
			return nil, false
		}
		props := make(device.Properties, len(r.PostForm))
		for key := range r.PostForm {
			props[key] = r.PostForm.Get(key)
		}
		return props, true
	}

	// Numbers stay json.Number so RF codes above 2^53 are not rounded.
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var props device.Properties
	if err := dec.Decode(&props); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return nil, false
		}
		writeBadRequest(w, "invalid JSON body")
		return nil, false
	}
	if props == nil {
		writeBadRequest(w, "request body must be a JSON object")
		return nil, false
	}
	return props, true
}
