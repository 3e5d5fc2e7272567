// Package stats aggregates fuel and service spending over a date range.
package stats

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/ukydev/motorcheck/internal/models"
)

// ErrUnknownRange is returned for a range name other than 7d, month, year or
// custom.
var ErrUnknownRange = errors.New("unknown range")

// Granularity is the width of one chart bucket.
type Granularity string

const (
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// Range is an inclusive date window. A zero To leaves the window open.
type Range struct {
	From        time.Time   `json:"from"`
	To          time.Time   `json:"to,omitzero"`
	Granularity Granularity `json:"granularity"`
}

// Contains reports whether t falls inside the window.
func (r Range) Contains(t time.Time) bool {
	if t.Before(r.From) {
		return false
	}
	return r.To.IsZero() || !t.After(r.To)
}

// RangeFor resolves a named range relative to now. Custom ranges are built
// with CustomRange.
func RangeFor(name string, now time.Time) (Range, error) {
	today := startOfDay(now)
	switch name {
	case "7d":
		return Range{From: today.AddDate(0, 0, -7), Granularity: Daily}, nil
	case "month", "":
		return Range{From: startOfMonth(now), Granularity: Daily}, nil
	case "year":
		return Range{From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), Granularity: Monthly}, nil
	default:
		return Range{}, ErrUnknownRange
	}
}

// CustomRange spans whole days from the start of from to the end of to.
// Windows longer than 31 days are bucketed by month.
func CustomRange(from, to time.Time) Range {
	start := startOfDay(from)
	end := startOfDay(to)
	r := Range{From: start, To: end.AddDate(0, 0, 1).Add(-time.Millisecond), Granularity: Daily}
	if end.Sub(start) > 31*24*time.Hour {
		r.Granularity = Monthly
	}
	return r
}

// Metrics summarizes one range.
type Metrics struct {
	FuelVisits        int     `json:"fuelVisits"`
	ServiceVisits     int     `json:"serviceVisits"`
	TotalVolume       float64 `json:"totalVolume"`
	TotalFuelCost     float64 `json:"totalFuelCost"`
	TotalServiceCost  float64 `json:"totalServiceCost"`
	AvgCostPerRefuel  float64 `json:"avgCostPerRefuel"`
	AvgCostPerService float64 `json:"avgCostPerService"`
	Distance          int     `json:"distance"`
	Efficiency        float64 `json:"efficiency"`
	Unit              string  `json:"unit"`
}

// Compute aggregates the logs of snap that fall inside r. Efficiency follows
// the vehicle unit system: distance per volume, or volume per 100 km.
func Compute(snap models.Snapshot, r Range) Metrics {
	unit := snap.Vehicle.UnitSystem
	if unit == "" {
		unit = models.UnitKmPerGallon
	}
	m := Metrics{Unit: string(unit)}

	var volume, fuelCost, serviceCost float64
	var odometers []int
	for _, l := range snap.FuelLogs {
		if !r.Contains(l.Date) {
			continue
		}
		m.FuelVisits++
		volume += l.Volume
		fuelCost += l.TotalCost
		odometers = append(odometers, l.Odometer)
	}
	for _, l := range snap.ServiceLogs {
		if !r.Contains(l.Date) {
			continue
		}
		m.ServiceVisits++
		serviceCost += l.Cost
		odometers = append(odometers, l.Odometer)
	}

	m.TotalVolume = roundToTwo(volume)
	m.TotalFuelCost = roundToTwo(fuelCost)
	m.TotalServiceCost = roundToTwo(serviceCost)
	if m.FuelVisits > 0 {
		m.AvgCostPerRefuel = roundToTwo(m.TotalFuelCost / float64(m.FuelVisits))
	}
	if m.ServiceVisits > 0 {
		m.AvgCostPerService = roundToTwo(m.TotalServiceCost / float64(m.ServiceVisits))
	}

	if len(odometers) > 1 {
		sort.Ints(odometers)
		m.Distance = odometers[len(odometers)-1] - odometers[0]
	}

	switch unit {
	case models.UnitLitersPer100K:
		if m.Distance > 0 {
			m.Efficiency = roundToTwo(m.TotalVolume / float64(m.Distance) * 100)
		}
	default:
		if m.TotalVolume > 0 {
			m.Efficiency = roundToTwo(float64(m.Distance) / m.TotalVolume)
		}
	}
	return m
}

func roundToTwo(v float64) float64 {
	return math.Round(v*100) / 100
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
