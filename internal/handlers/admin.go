package handlers

import (
	"context"
	"net/http"
	"time"
)

// Export returns the full state as a backup document.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="motorcheck-backup.json"`)
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// Reset wipes all logs and restores defaults. The theme is kept.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.store.ResetAll(r.Context()); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// Health reports whether the server and its database are reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.WithError(err).Warn("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
