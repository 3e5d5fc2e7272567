package models

import (
	"time"
)

// ServiceDefinition is a maintenance rule: a named service repeated every
// IntervalKm kilometers and/or IntervalMonths months.
type ServiceDefinition struct {
	ID              string `bson:"_id" json:"id"`
	Name            string `bson:"name" json:"name"`
	IntervalKm      int    `bson:"interval_km" json:"intervalKm"`         // 0 disables the distance trigger
	IntervalMonths  int    `bson:"interval_months" json:"intervalMonths"` // 0 disables the time trigger
	Notes           string `bson:"notes,omitempty" json:"notes,omitempty"`
	NextDueOdometer *int   `bson:"next_due_odometer,omitempty" json:"nextDueOdometer,omitempty"` // explicit target set when programming a service
}

// ServiceLog records a service that was actually performed.
//
// ServiceName is a snapshot of the definition name at creation time and
// survives renames and deletion of the definition.
type ServiceLog struct {
	ID           string    `bson:"_id" json:"id"`
	ServiceID    string    `bson:"service_id" json:"serviceId"`
	ServiceName  string    `bson:"service_name" json:"serviceName"`
	Date         time.Time `bson:"date" json:"date"`
	Odometer     int       `bson:"odometer" json:"odometer"` // in kilometers
	Cost         float64   `bson:"cost" json:"cost"`
	Notes        string    `bson:"notes" json:"notes"`
	ReceiptPhoto string    `bson:"receipt_photo,omitempty" json:"receiptPhoto,omitempty"`
}

// PredefinedServices returns the default service set for a gasoline vehicle.
// A fresh slice is returned on every call.
func PredefinedServices() []ServiceDefinition {
	return []ServiceDefinition{
		{ID: "oil_engine", Name: "Cambio de aceite y filtro", IntervalKm: 5000, IntervalMonths: 6},
		{ID: "filter_air", Name: "Filtro de aire", IntervalKm: 10000, IntervalMonths: 12},
		{ID: "filter_fuel", Name: "Filtro de gasolina", IntervalKm: 20000, IntervalMonths: 24},
		{ID: "spark_plugs", Name: "Bujías", IntervalKm: 30000, IntervalMonths: 24},
		{ID: "brakes_check", Name: "Revisión de frenos", IntervalKm: 10000, IntervalMonths: 12},
		{ID: "tires_rotate", Name: "Rotación de llantas", IntervalKm: 10000, IntervalMonths: 6},
		{ID: "battery", Name: "Revisión de batería (12V)", IntervalKm: 15000, IntervalMonths: 12},
	}
}
