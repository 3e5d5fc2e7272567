// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config is the server configuration.
type Config struct {
	Port string `env:"PORT" env-default:"8080"`

	// An empty MongoURI keeps all state in memory.
	MongoURI string `env:"MONGO_URI"`
	MongoDB  string `env:"MONGO_DB" env-default:"motorcheck"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	NotifyWindow     time.Duration `env:"NOTIFY_WINDOW" env-default:"12h"`
	EvaluateInterval time.Duration `env:"EVALUATE_INTERVAL" env-default:"1h"`

	MQTTBroker   string `env:"MQTT_BROKER"`
	MQTTTopic    string `env:"MQTT_TOPIC" env-default:"motorcheck/notifications"`
	MQTTClientID string `env:"MQTT_CLIENT_ID" env-default:"motorcheck-server"`
	MQTTQoS      int    `env:"MQTT_QOS" env-default:"1"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" env-default:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" env-default:"20"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Load reads an optional .env file, then the environment, and validates the
// result. Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.WithError(err).Debug("No .env file loaded")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.NotifyWindow <= 0 {
		return fmt.Errorf("NOTIFY_WINDOW must be positive")
	}
	if c.EvaluateInterval <= 0 {
		return fmt.Errorf("EVALUATE_INTERVAL must be positive")
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	if c.MQTTBroker != "" && c.MQTTTopic == "" {
		return fmt.Errorf("MQTT_TOPIC is required when MQTT_BROKER is set")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Logger builds the logrus logger described by the config.
func (c *Config) Logger() *log.Logger {
	logger := log.New()
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}
