package handlers

import (
	"net/http"
)

// ServiceLogs lists the service history or records a performed service.
func (h *Handler) ServiceLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		logs := h.store.ServiceLogs()
		if id := r.URL.Query().Get("serviceId"); id != "" {
			filtered := logs[:0]
			for _, l := range logs {
				if l.ServiceID == id {
					filtered = append(filtered, l)
				}
			}
			logs = filtered
		}
		writeJSON(w, http.StatusOK, logs)
	case http.MethodPost:
		var req serviceLogRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		created, err := h.store.AddServiceLog(r.Context(), req.model())
		if err != nil {
			h.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// ServiceLog updates or deletes one service log.
func (h *Handler) ServiceLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodPut:
		var req serviceLogRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.ID = id
		if err := h.store.UpdateServiceLog(r.Context(), req.model()); err != nil {
			h.storeError(w, err)
			return
		}
		for _, l := range h.store.ServiceLogs() {
			if l.ID == id {
				writeJSON(w, http.StatusOK, l)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := h.store.DeleteServiceLog(r.Context(), id); err != nil {
			h.storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

// FuelLogs lists or records refuels.
func (h *Handler) FuelLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.store.FuelLogs())
	case http.MethodPost:
		var req fuelLogRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		created, err := h.store.AddFuelLog(r.Context(), req.model())
		if err != nil {
			h.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// FuelLog updates or deletes one refuel.
func (h *Handler) FuelLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodPut:
		var req fuelLogRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.ID = id
		l := req.model()
		if err := h.store.UpdateFuelLog(r.Context(), l); err != nil {
			h.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	case http.MethodDelete:
		if err := h.store.DeleteFuelLog(r.Context(), id); err != nil {
			h.storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}
