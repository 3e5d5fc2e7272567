package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/motorcheck/internal/config"
	"github.com/ukydev/motorcheck/internal/db"
	"github.com/ukydev/motorcheck/internal/handlers"
	"github.com/ukydev/motorcheck/internal/middleware"
	"github.com/ukydev/motorcheck/internal/models"
	"github.com/ukydev/motorcheck/internal/notify"
	"github.com/ukydev/motorcheck/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	_ store.Persister       = (*db.MongoStore)(nil)
	_ notify.TimestampStore = (*db.MongoStore)(nil)
)

// app is the wired server.
type app struct {
	store   *store.Store
	handler http.Handler
	logger  *log.Logger
	cleanup []func()
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// newApp connects the configured backends and builds the HTTP handler.
// Without MONGO_URI all state lives in memory.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	a := &app{logger: logger}

	snap := models.DefaultSnapshot()
	var persister store.Persister
	var timestamps notify.TimestampStore = &notify.MemoryTimestamps{}
	var health func(ctx context.Context) error

	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.cleanup = append(a.cleanup, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.WithError(err).Warn("Failed to disconnect from MongoDB")
			}
		})

		mongoStore := db.NewMongoStore(client.Database(cfg.MongoDB))
		loaded, fresh, err := mongoStore.Load(ctx)
		if err != nil {
			a.close()
			return nil, err
		}
		if fresh {
			if err := mongoStore.Seed(ctx, loaded); err != nil {
				a.close()
				return nil, err
			}
			logger.WithField("database", cfg.MongoDB).Info("Seeded empty database with defaults")
		}
		snap = loaded
		persister = mongoStore
		timestamps = mongoStore
		health = pingMongo(client)
		logger.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	} else {
		logger.Warn("MONGO_URI not set, state will not survive a restart")
	}

	sender, disconnect, err := newSender(cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.cleanup = append(a.cleanup, disconnect)

	trigger := notify.NewTrigger(notify.NewGate(timestamps, cfg.NotifyWindow), sender, logger)
	a.store = store.New(snap, store.Options{
		Persister: persister,
		Notifier:  trigger,
		Logger:    logger,
	})
	a.cleanup = append(a.cleanup, a.store.Close)

	opts := []handlers.Option{handlers.WithLogger(logger)}
	if health != nil {
		opts = append(opts, handlers.WithHealthCheck(health))
	}
	limiter := middleware.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	a.handler = middleware.Chain(
		handlers.NewHandler(a.store, opts...).Routes(),
		middleware.Recover(logger),
		middleware.RequestLogger(logger),
		limiter.RateLimit,
	)
	return a, nil
}

// newSender picks the MQTT transport when a broker is configured and the log
// sender otherwise. The returned func releases the connection.
func newSender(cfg *config.Config, logger *log.Logger) (notify.Sender, func(), error) {
	if cfg.MQTTBroker == "" {
		return &notify.LogSender{Logger: logger}, func() {}, nil
	}
	client, err := notify.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, 10*time.Second)
	if err != nil {
		return nil, nil, err
	}
	logger.WithFields(log.Fields{
		"broker": cfg.MQTTBroker,
		"topic":  cfg.MQTTTopic,
	}).Info("Connected to MQTT broker")
	sender := &notify.MQTTSender{Client: client, Topic: cfg.MQTTTopic, QoS: byte(cfg.MQTTQoS)}
	return sender, func() { client.Disconnect(250) }, nil
}

func pingMongo(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// evaluateEvery re-runs the status calculation so that time-based services
// turn due without any mutation.
func evaluateEvery(ctx context.Context, s *store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evaluate(ctx)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to start")
	}
	defer a.close()

	report := a.store.Evaluate(ctx)
	logger.WithFields(log.Fields{
		"urgent":   report.UrgentCount,
		"upcoming": report.UpcomingCount,
	}).Info("Initial maintenance evaluation")
	go evaluateEvery(ctx, a.store, cfg.EvaluateInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Graceful shutdown failed")
	}
}
