package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/motorcheck/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names in the motorcheck database.
const (
	SettingsCollection    = "settings"
	DefinitionsCollection = "service_definitions"
	ServiceLogsCollection = "service_logs"
	FuelLogsCollection    = "fuel_logs"
)

const (
	vehicleDocID      = "vehicle"
	notificationDocID = "notification"
)

type vehicleDoc struct {
	ID                     string `bson:"_id"`
	models.VehicleSettings `bson:",inline"`
}

type notificationDoc struct {
	ID       string    `bson:"_id"`
	LastSent time.Time `bson:"last_sent"`
}

// MongoStore persists a vehicle snapshot across four collections and keeps
// the last notification time next to the vehicle settings.
type MongoStore struct {
	Settings    Collection
	Definitions Collection
	ServiceLogs Collection
	FuelLogs    Collection
}

// NewMongoStore binds a MongoStore to the collections of database.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		Settings:    &MongoCollection{Collection: database.Collection(SettingsCollection)},
		Definitions: &MongoCollection{Collection: database.Collection(DefinitionsCollection)},
		ServiceLogs: &MongoCollection{Collection: database.Collection(ServiceLogsCollection)},
		FuelLogs:    &MongoCollection{Collection: database.Collection(FuelLogsCollection)},
	}
}

// Load reads the stored snapshot. When no vehicle document exists the
// database has never been written and the default snapshot is returned with
// fresh set to true.
func (s *MongoStore) Load(ctx context.Context) (snap models.Snapshot, fresh bool, err error) {
	var v vehicleDoc
	err = s.Settings.FindByID(ctx, vehicleDocID, &v)
	if errors.Is(err, ErrNoDocument) {
		return models.DefaultSnapshot(), true, nil
	}
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("load vehicle: %w", err)
	}
	snap.Vehicle = v.VehicleSettings

	snap.ServiceDefinitions = []models.ServiceDefinition{}
	if err := s.Definitions.FindAll(ctx, &snap.ServiceDefinitions); err != nil {
		return models.Snapshot{}, false, fmt.Errorf("load service definitions: %w", err)
	}
	snap.ServiceLogs = []models.ServiceLog{}
	if err := s.ServiceLogs.FindAll(ctx, &snap.ServiceLogs); err != nil {
		return models.Snapshot{}, false, fmt.Errorf("load service logs: %w", err)
	}
	snap.FuelLogs = []models.FuelLog{}
	if err := s.FuelLogs.FindAll(ctx, &snap.FuelLogs); err != nil {
		return models.Snapshot{}, false, fmt.Errorf("load fuel logs: %w", err)
	}
	return snap, false, nil
}

// Seed writes every collection of snap.
func (s *MongoStore) Seed(ctx context.Context, snap models.Snapshot) error {
	if err := s.SaveVehicle(ctx, snap.Vehicle); err != nil {
		return err
	}
	if err := s.SaveServiceDefinitions(ctx, snap.ServiceDefinitions); err != nil {
		return err
	}
	if err := s.SaveServiceLogs(ctx, snap.ServiceLogs); err != nil {
		return err
	}
	return s.SaveFuelLogs(ctx, snap.FuelLogs)
}

// SaveVehicle replaces the vehicle settings document.
func (s *MongoStore) SaveVehicle(ctx context.Context, vehicle models.VehicleSettings) error {
	doc := vehicleDoc{ID: vehicleDocID, VehicleSettings: vehicle}
	if err := s.Settings.Upsert(ctx, vehicleDocID, doc); err != nil {
		return fmt.Errorf("save vehicle: %w", err)
	}
	return nil
}

// SaveServiceDefinitions replaces the stored definitions with defs.
func (s *MongoStore) SaveServiceDefinitions(ctx context.Context, defs []models.ServiceDefinition) error {
	docs := make([]Document, len(defs))
	for i, d := range defs {
		docs[i] = Document{ID: d.ID, Doc: d}
	}
	if err := s.Definitions.ReplaceAll(ctx, docs); err != nil {
		return fmt.Errorf("save service definitions: %w", err)
	}
	return nil
}

// SaveServiceLogs replaces the stored service history with logs.
func (s *MongoStore) SaveServiceLogs(ctx context.Context, logs []models.ServiceLog) error {
	docs := make([]Document, len(logs))
	for i, l := range logs {
		docs[i] = Document{ID: l.ID, Doc: l}
	}
	if err := s.ServiceLogs.ReplaceAll(ctx, docs); err != nil {
		return fmt.Errorf("save service logs: %w", err)
	}
	return nil
}

// SaveFuelLogs replaces the stored refuels with logs.
func (s *MongoStore) SaveFuelLogs(ctx context.Context, logs []models.FuelLog) error {
	docs := make([]Document, len(logs))
	for i, l := range logs {
		docs[i] = Document{ID: l.ID, Doc: l}
	}
	if err := s.FuelLogs.ReplaceAll(ctx, docs); err != nil {
		return fmt.Errorf("save fuel logs: %w", err)
	}
	return nil
}

// LastSent returns the time of the last delivered notification.
func (s *MongoStore) LastSent(ctx context.Context) (time.Time, bool, error) {
	var doc notificationDoc
	err := s.Settings.FindByID(ctx, notificationDocID, &doc)
	if errors.Is(err, ErrNoDocument) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load notification time: %w", err)
	}
	return doc.LastSent, true, nil
}

// MarkSent stores at as the last notification time.
func (s *MongoStore) MarkSent(ctx context.Context, at time.Time) error {
	doc := notificationDoc{ID: notificationDocID, LastSent: at.UTC()}
	if err := s.Settings.Upsert(ctx, notificationDocID, doc); err != nil {
		return fmt.Errorf("save notification time: %w", err)
	}
	return nil
}
