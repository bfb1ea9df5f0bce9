package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/switchboard/internal/audit"
)

// recordAudit queues a device mutation for the audit trail (best-effort).
func (s *Server) recordAudit(action string, deviceID, userID int64, details map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(&audit.Entry{
		Action:     action,
		EntityType: audit.EntityDevice,
		EntityID:   strconv.FormatInt(deviceID, 10),
		UserID:     strconv.FormatInt(userID, 10),
		Source:     audit.SourceAPI,
		Details:    details,
	})
}

// handleListAudit returns the caller's own audit entries, newest first.
//
// Query parameters:
//   - action: filter by action (create, update, delete, control)
//   - entity_id: filter by device ID
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditLog == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "audit log not available")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: audit.EntityDevice,
		EntityID:   q.Get("entity_id"),
		UserID:     strconv.FormatInt(userIDFromContext(r.Context()), 10),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	result, err := s.auditLog.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
