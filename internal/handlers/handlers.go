// Package handlers exposes the vehicle store over a JSON HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/motorcheck/internal/maintenance"
	"github.com/ukydev/motorcheck/internal/models"
	"github.com/ukydev/motorcheck/internal/store"
)

const maxBodyBytes = 1 << 20

// Store is the state the handlers read and mutate.
type Store interface {
	Report() maintenance.Report
	Snapshot() models.Snapshot
	Vehicle() models.VehicleSettings
	ServiceDefinitions() []models.ServiceDefinition
	ServiceLogs() []models.ServiceLog
	FuelLogs() []models.FuelLog

	UpdateVehicle(ctx context.Context, v models.VehicleSettings) error
	UpdateOdometer(ctx context.Context, km int) error

	AddServiceDefinition(ctx context.Context, def models.ServiceDefinition) (models.ServiceDefinition, error)
	UpdateServiceDefinition(ctx context.Context, def models.ServiceDefinition) error
	DeleteServiceDefinition(ctx context.Context, id string) error
	ProgramService(ctx context.Context, id string, target int) (models.ServiceDefinition, error)
	ResetServicesToDefault(ctx context.Context) error
	ResetAll(ctx context.Context) error

	AddServiceLog(ctx context.Context, l models.ServiceLog) (models.ServiceLog, error)
	UpdateServiceLog(ctx context.Context, l models.ServiceLog) error
	DeleteServiceLog(ctx context.Context, id string) error

	AddFuelLog(ctx context.Context, l models.FuelLog) (models.FuelLog, error)
	UpdateFuelLog(ctx context.Context, l models.FuelLog) error
	DeleteFuelLog(ctx context.Context, id string) error
}

// Handler serves the motorcheck API.
type Handler struct {
	store  Store
	clock  func() time.Time
	logger log.FieldLogger
	ping   func(ctx context.Context) error
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock overrides the time source used for stats ranges.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) { h.clock = clock }
}

// WithLogger sets the logger for internal errors.
func WithLogger(logger log.FieldLogger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithHealthCheck adds a dependency check to /health.
func WithHealthCheck(ping func(ctx context.Context) error) Option {
	return func(h *Handler) { h.ping = ping }
}

// NewHandler creates a Handler over s.
func NewHandler(s Store, opts ...Option) *Handler {
	h := &Handler{store: s, clock: time.Now, logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)

	mux.HandleFunc("/api/maintenance", h.Maintenance)
	mux.HandleFunc("/api/maintenance/next", h.NextService)

	mux.HandleFunc("/api/vehicle", h.Vehicle)
	mux.HandleFunc("/api/vehicle/odometer", h.Odometer)

	mux.HandleFunc("/api/services", h.Services)
	mux.HandleFunc("/api/services/reset", h.ResetServices)
	mux.HandleFunc("/api/services/{id}", h.Service)
	mux.HandleFunc("/api/services/{id}/program", h.ProgramService)

	mux.HandleFunc("/api/service-logs", h.ServiceLogs)
	mux.HandleFunc("/api/service-logs/{id}", h.ServiceLog)

	mux.HandleFunc("/api/fuel-logs", h.FuelLogs)
	mux.HandleFunc("/api/fuel-logs/{id}", h.FuelLog)

	mux.HandleFunc("/api/stats", h.Stats)
	mux.HandleFunc("/api/export", h.Export)
	mux.HandleFunc("/api/reset", h.Reset)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// storeError maps store errors to HTTP statuses.
func (h *Handler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrDuplicateID):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrClosed):
		http.Error(w, "Service shutting down", http.StatusServiceUnavailable)
	default:
		h.logger.WithError(err).Error("Store operation failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
