package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	log "github.com/sirupsen/logrus"
)

// FuelLog is the refuel payload accepted by the API.
type FuelLog struct {
	Date         time.Time `json:"date"`
	Odometer     int       `json:"odometer"`
	Volume       float64   `json:"volume"`
	PricePerUnit float64   `json:"pricePerUnit"`
	TotalCost    float64   `json:"totalCost"`
	FuelType     string    `json:"fuelType"`
	IsFullTank   bool      `json:"isFullTank"`
}

// ServiceLog is the performed-service payload accepted by the API.
type ServiceLog struct {
	ServiceID string    `json:"serviceId"`
	Date      time.Time `json:"date"`
	Odometer  int       `json:"odometer"`
	Cost      float64   `json:"cost"`
	Notes     string    `json:"notes"`
}

// ServiceStatus is the subset of the maintenance report the simulator reads.
type ServiceStatus struct {
	ServiceID string `json:"serviceId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	KmLeft    *int   `json:"kmLeft"`
}

// Settings tune the simulated car.
type Settings struct {
	SpeedKmh      float64 `env:"SIM_SPEED_KMH" env-default:"60"`
	TankLiters    float64 `env:"SIM_TANK_LITERS" env-default:"45"`
	KmPerLiter    float64 `env:"SIM_KM_PER_LITER" env-default:"12"`
	PricePerLiter float64 `env:"SIM_PRICE_PER_LITER" env-default:"1.2"`
	ServiceCost   float64 `env:"SIM_SERVICE_COST" env-default:"60"`
	// PerformServices logs overdue services as soon as they show up.
	PerformServices bool `env:"SIM_PERFORM_SERVICES" env-default:"true"`
}

// Config is the simulator's environment.
type Config struct {
	APIBaseURL  string `env:"API_BASE_URL" env-default:"http://localhost:8080/api"`
	TickSeconds int    `env:"SIM_TICK_SECONDS" env-default:"2"`
	// HoursPerTick is simulated driving time per tick, so a short run covers
	// many kilometers.
	HoursPerTick float64 `env:"SIM_HOURS_PER_TICK" env-default:"1"`
	Car          Settings
}

// DriveState is the simulated car between ticks.
type DriveState struct {
	OdometerKm float64
	FuelLiters float64
	SpeedKmh   float64
}

// Client talks to the motorcheck API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func newClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed with status: %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// currentOdometer reads the odometer the server holds.
func (c *Client) currentOdometer() (int, error) {
	var v struct {
		CurrentOdometer int `json:"currentOdometer"`
	}
	if err := c.do(http.MethodGet, "/vehicle", nil, &v); err != nil {
		return 0, err
	}
	return v.CurrentOdometer, nil
}

func (c *Client) updateOdometer(km int) error {
	return c.do(http.MethodPut, "/vehicle/odometer", map[string]int{"odometer": km}, nil)
}

func (c *Client) addFuelLog(l FuelLog) error {
	return c.do(http.MethodPost, "/fuel-logs", l, nil)
}

func (c *Client) addServiceLog(l ServiceLog) error {
	return c.do(http.MethodPost, "/service-logs", l, nil)
}

func (c *Client) overdueServices() ([]ServiceStatus, error) {
	var report struct {
		Statuses []ServiceStatus `json:"statuses"`
	}
	if err := c.do(http.MethodGet, "/maintenance", nil, &report); err != nil {
		return nil, err
	}
	var overdue []ServiceStatus
	for _, s := range report.Statuses {
		if s.Status == "danger" {
			overdue = append(overdue, s)
		}
	}
	return overdue, nil
}

// step advances the car by tick and reports the liters needed to fill the
// tank when it dropped below 15%.
func step(s *DriveState, cfg Settings, tick time.Duration) (refuel float64) {
	// small speed noise
	s.SpeedKmh += (rand.Float64()*2 - 1) * 3
	s.SpeedKmh = math.Max(20, math.Min(cfg.SpeedKmh*1.5, s.SpeedKmh))

	km := s.SpeedKmh * tick.Hours()
	s.OdometerKm += km
	s.FuelLiters -= km / cfg.KmPerLiter
	if s.FuelLiters < 0 {
		s.FuelLiters = 0
	}

	if s.FuelLiters < cfg.TankLiters*0.15 {
		refuel = cfg.TankLiters - s.FuelLiters
		s.FuelLiters = cfg.TankLiters
	}
	return refuel
}

func roundToTwo(v float64) float64 {
	return math.Round(v*100) / 100
}

// tick runs one simulation step against the API.
func tick(c *Client, s *DriveState, cfg Settings, interval time.Duration, now time.Time) {
	liters := step(s, cfg, interval)
	odometer := int(s.OdometerKm)

	if liters > 0 {
		l := FuelLog{
			Date:         now,
			Odometer:     odometer,
			Volume:       roundToTwo(liters),
			PricePerUnit: cfg.PricePerLiter,
			TotalCost:    roundToTwo(liters * cfg.PricePerLiter),
			FuelType:     "Gasolina",
			IsFullTank:   true,
		}
		if err := c.addFuelLog(l); err != nil {
			log.WithError(err).Error("Failed to send fuel log")
		} else {
			log.WithFields(log.Fields{"odometer": odometer, "liters": l.Volume, "cost": l.TotalCost}).Info("Refueled")
		}
	}

	if err := c.updateOdometer(odometer); err != nil {
		log.WithError(err).Error("Failed to update odometer")
		return
	}
	log.WithFields(log.Fields{"odometer": odometer, "speed": roundToTwo(s.SpeedKmh)}).Debug("Sent odometer")

	if !cfg.PerformServices {
		return
	}
	overdue, err := c.overdueServices()
	if err != nil {
		log.WithError(err).Warn("Failed to read maintenance report")
		return
	}
	for _, svc := range overdue {
		l := ServiceLog{ServiceID: svc.ServiceID, Date: now, Odometer: odometer, Cost: cfg.ServiceCost, Notes: "simulated"}
		if err := c.addServiceLog(l); err != nil {
			log.WithError(err).WithField("service", svc.ServiceID).Error("Failed to log service")
			continue
		}
		log.WithFields(log.Fields{"service": svc.Name, "odometer": odometer}).Info("Performed overdue service")
	}
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	switch {
	case cfg.APIBaseURL == "":
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	case cfg.TickSeconds < 1:
		return Config{}, fmt.Errorf("SIM_TICK_SECONDS must be at least 1")
	case cfg.HoursPerTick <= 0, cfg.Car.SpeedKmh <= 0, cfg.Car.TankLiters <= 0,
		cfg.Car.KmPerLiter <= 0, cfg.Car.PricePerLiter <= 0, cfg.Car.ServiceCost < 0:
		return Config{}, fmt.Errorf("SIM_* rates and capacities must be positive")
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Fatal("Invalid simulator configuration")
	}
	apiURL := cfg.APIBaseURL
	interval := time.Duration(cfg.TickSeconds) * time.Second
	driven := time.Duration(cfg.HoursPerTick * float64(time.Hour))
	client := newClient(apiURL)

	start, err := client.currentOdometer()
	if err != nil {
		log.WithError(err).Error("API is not reachable. Exiting.")
		return
	}
	state := &DriveState{OdometerKm: float64(start), FuelLiters: cfg.Car.TankLiters, SpeedKmh: cfg.Car.SpeedKmh}

	log.WithFields(log.Fields{
		"api_url":  apiURL,
		"interval": interval,
		"odometer": start,
	}).Info("Starting drive simulation")

	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		tick(client, state, cfg.Car, driven, time.Now())
	}
}
