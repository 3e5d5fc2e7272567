package handlers

import (
	"encoding/json"
	"time"

	"github.com/ukydev/motorcheck/internal/models"
)

// Date accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := models.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

type serviceLogRequest struct {
	ID           string  `json:"id"`
	ServiceID    string  `json:"serviceId"`
	ServiceName  string  `json:"serviceName"`
	Date         Date    `json:"date"`
	Odometer     int     `json:"odometer"`
	Cost         float64 `json:"cost"`
	Notes        string  `json:"notes"`
	ReceiptPhoto string  `json:"receiptPhoto"`
}

func (r serviceLogRequest) model() models.ServiceLog {
	return models.ServiceLog{
		ID:           r.ID,
		ServiceID:    r.ServiceID,
		ServiceName:  r.ServiceName,
		Date:         r.Date.Time,
		Odometer:     r.Odometer,
		Cost:         r.Cost,
		Notes:        r.Notes,
		ReceiptPhoto: r.ReceiptPhoto,
	}
}

type fuelLogRequest struct {
	ID           string  `json:"id"`
	Date         Date    `json:"date"`
	Odometer     int     `json:"odometer"`
	Volume       float64 `json:"volume"`
	PricePerUnit float64 `json:"pricePerUnit"`
	TotalCost    float64 `json:"totalCost"`
	FuelType     string  `json:"fuelType"`
	IsFullTank   bool    `json:"isFullTank"`
	ReceiptPhoto string  `json:"receiptPhoto"`
}

// model fills TotalCost from volume and price when it is omitted.
func (r fuelLogRequest) model() models.FuelLog {
	total := r.TotalCost
	if total == 0 && r.Volume > 0 && r.PricePerUnit > 0 {
		total = r.Volume * r.PricePerUnit
	}
	return models.FuelLog{
		ID:           r.ID,
		Date:         r.Date.Time,
		Odometer:     r.Odometer,
		Volume:       r.Volume,
		PricePerUnit: r.PricePerUnit,
		TotalCost:    total,
		FuelType:     r.FuelType,
		IsFullTank:   r.IsFullTank,
		ReceiptPhoto: r.ReceiptPhoto,
	}
}

type odometerRequest struct {
	Odometer *int `json:"odometer"`
}

type programRequest struct {
	TargetOdometer *int `json:"targetOdometer"`
}
