package handlers

import (
	"net/http"

	"github.com/ukydev/motorcheck/internal/models"
)

// Services lists or creates service definitions.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.ServiceDefinitions())
	case http.MethodPost:
		var def models.ServiceDefinition
		if !decodeJSON(w, r, &def) {
			return
		}
		created, err := h.store.AddServiceDefinition(r.Context(), def)
		if err != nil {
			h.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// Service updates or deletes one definition. Deleting also removes its logs.
func (h *Handler) Service(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodPut:
		var def models.ServiceDefinition
		if !decodeJSON(w, r, &def) {
			return
		}
		def.ID = id
		if err := h.store.UpdateServiceDefinition(r.Context(), def); err != nil {
			h.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, def)
	case http.MethodDelete:
		if err := h.store.DeleteServiceDefinition(r.Context(), id); err != nil {
			h.storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

// ProgramService sets an explicit next due odometer.
func (h *Handler) ProgramService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req programRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TargetOdometer == nil {
		http.Error(w, "targetOdometer is required", http.StatusBadRequest)
		return
	}
	def, err := h.store.ProgramService(r.Context(), r.PathValue("id"), *req.TargetOdometer)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// ResetServices restores the predefined service set.
func (h *Handler) ResetServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := h.store.ResetServicesToDefault(r.Context()); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.ServiceDefinitions())
}
