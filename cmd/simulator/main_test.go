package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	return Settings{SpeedKmh: 60, TankLiters: 40, KmPerLiter: 10, PricePerLiter: 1.5, ServiceCost: 50, PerformServices: true}
}

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	overdue  bool
	fail     bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	fail, overdue := f.fail, f.overdue
	f.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/vehicle":
		json.NewEncoder(w).Encode(map[string]int{"currentOdometer": 1234})
	case "/maintenance":
		status := "ok"
		if overdue {
			status = "danger"
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"statuses": []map[string]interface{}{{"serviceId": "oil_engine", "name": "Oil", "status": status, "kmLeft": -10}},
		})
	case "/fuel-logs", "/service-logs":
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("{}"))
	default:
		w.Write([]byte("{}"))
	}
}

func (f *fakeAPI) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func TestStep_AdvancesOdometer(t *testing.T) {
	cfg := testSettings()
	s := &DriveState{OdometerKm: 1000, FuelLiters: 40, SpeedKmh: 60}

	refuel := step(s, cfg, time.Hour)
	assert.Zero(t, refuel)
	assert.Greater(t, s.OdometerKm, 1000.0)
	assert.GreaterOrEqual(t, s.SpeedKmh, 20.0)
	assert.LessOrEqual(t, s.SpeedKmh, 90.0)
	assert.InDelta(t, 40-(s.OdometerKm-1000)/10, s.FuelLiters, 1e-9)
}

func TestStep_RefuelsLowTank(t *testing.T) {
	cfg := testSettings()
	s := &DriveState{OdometerKm: 1000, FuelLiters: 6, SpeedKmh: 60}

	refuel := step(s, cfg, time.Hour)
	assert.Greater(t, refuel, 34.0)
	assert.Equal(t, cfg.TankLiters, s.FuelLiters)
}

func TestClient_CurrentOdometer(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api)
	defer server.Close()

	km, err := newClient(server.URL).currentOdometer()
	require.NoError(t, err)
	assert.Equal(t, 1234, km)
}

func TestClient_ServerError(t *testing.T) {
	api := &fakeAPI{fail: true}
	server := httptest.NewServer(api)
	defer server.Close()

	_, err := newClient(server.URL).currentOdometer()
	assert.ErrorContains(t, err, "500")
}

func TestTick_SendsOdometer(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api)
	defer server.Close()

	s := &DriveState{OdometerKm: 1000, FuelLiters: 40, SpeedKmh: 60}
	tick(newClient(server.URL), s, testSettings(), time.Hour, time.Now())

	assert.Equal(t, []string{"PUT /vehicle/odometer", "GET /maintenance"}, api.paths())
	assert.Equal(t, float64(int(s.OdometerKm)), api.requests[0].Body["odometer"])
}

func TestTick_RefuelAndOverdueService(t *testing.T) {
	api := &fakeAPI{overdue: true}
	server := httptest.NewServer(api)
	defer server.Close()

	s := &DriveState{OdometerKm: 1000, FuelLiters: 1, SpeedKmh: 60}
	tick(newClient(server.URL), s, testSettings(), time.Hour, time.Now())

	assert.Equal(t, []string{
		"POST /fuel-logs",
		"PUT /vehicle/odometer",
		"GET /maintenance",
		"POST /service-logs",
	}, api.paths())
	assert.Equal(t, true, api.requests[0].Body["isFullTank"])
	assert.Equal(t, "oil_engine", api.requests[3].Body["serviceId"])
}

func TestTick_NetworkError(t *testing.T) {
	c := &Client{BaseURL: "http://127.0.0.1:1", HTTPClient: &http.Client{Timeout: 100 * time.Millisecond}}
	s := &DriveState{OdometerKm: 1000, FuelLiters: 40, SpeedKmh: 60}

	// This should not panic even with network error
	tick(c, s, testSettings(), time.Hour, time.Now())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SIM_TANK_LITERS", "50")
	t.Setenv("SIM_PERFORM_SERVICES", "false")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, 2, cfg.TickSeconds)
	assert.Equal(t, 1.0, cfg.HoursPerTick)
	assert.Equal(t, 50.0, cfg.Car.TankLiters)
	assert.Equal(t, 12.0, cfg.Car.KmPerLiter)
	assert.False(t, cfg.Car.PerformServices)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"not a number", "SIM_KM_PER_LITER", "not-a-number"},
		{"zero speed", "SIM_SPEED_KMH", "0"},
		{"tick below one second", "SIM_TICK_SECONDS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}
