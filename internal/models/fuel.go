package models

import (
	"time"
)

// FuelLog represents a refuel.
type FuelLog struct {
	ID           string    `bson:"_id" json:"id"`
	Date         time.Time `bson:"date" json:"date"`
	Odometer     int       `bson:"odometer" json:"odometer"`             // in kilometers
	Volume       float64   `bson:"volume" json:"volume"`                 // liters or gallons, per unit system
	PricePerUnit float64   `bson:"price_per_unit" json:"pricePerUnit"`   // per liter or gallon
	TotalCost    float64   `bson:"total_cost" json:"totalCost"`
	FuelType     string    `bson:"fuel_type,omitempty" json:"fuelType,omitempty"`
	IsFullTank   bool      `bson:"is_full_tank" json:"isFullTank"`
	ReceiptPhoto string    `bson:"receipt_photo,omitempty" json:"receiptPhoto,omitempty"`
}

// Snapshot is the complete persisted state of one vehicle.
type Snapshot struct {
	Vehicle            VehicleSettings     `json:"vehicle"`
	ServiceDefinitions []ServiceDefinition `json:"serviceDefinitions"`
	ServiceLogs        []ServiceLog        `json:"serviceLogs"`
	FuelLogs           []FuelLog           `json:"fuelLogs"`
}

// DefaultSnapshot returns the state of a vehicle that has never been configured.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Vehicle:            DefaultVehicle(),
		ServiceDefinitions: PredefinedServices(),
		ServiceLogs:        []ServiceLog{},
		FuelLogs:           []FuelLog{},
	}
}
