package handlers

import (
	"net/http"
)

// Maintenance returns the full status report.
func (h *Handler) Maintenance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Report())
}

// NextService returns the most urgent status, or 204 when no services are
// defined.
func (h *Handler) NextService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	next, ok := h.store.Report().Next()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, next)
}
