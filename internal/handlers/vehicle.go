package handlers

import (
	"net/http"

	"github.com/ukydev/motorcheck/internal/models"
)

// Vehicle reads or replaces the vehicle settings.
func (h *Handler) Vehicle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.Vehicle())
	case http.MethodPut:
		var v models.VehicleSettings
		if !decodeJSON(w, r, &v) {
			return
		}
		if err := h.store.UpdateVehicle(r.Context(), v); err != nil {
			h.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.store.Vehicle())
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

// Odometer sets the current odometer and returns the recomputed report.
func (h *Handler) Odometer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var req odometerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Odometer == nil {
		http.Error(w, "odometer is required", http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateOdometer(r.Context(), *req.Odometer); err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Report())
}
