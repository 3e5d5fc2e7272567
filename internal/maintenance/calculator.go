// Package maintenance derives the due state of every service definition from
// the vehicle odometer and the service history.
package maintenance

import (
	"math"
	"sort"
	"time"

	"github.com/ukydev/motorcheck/internal/models"
)

const (
	// WarningKm is the distance left at or below which a service is upcoming.
	WarningKm = 500
	// WarningDays is the number of days left at or below which a time-gated
	// service is upcoming.
	WarningDays = 30
)

// Input is everything the calculator reads.
type Input struct {
	CurrentOdometer int
	Definitions     []models.ServiceDefinition
	Logs            []models.ServiceLog
}

// Report is the ordered status list plus aggregate counts.
type Report struct {
	Statuses      []models.ServiceStatus `json:"statuses"`
	UrgentCount   int                    `json:"urgentCount"`
	UpcomingCount int                    `json:"upcomingCount"`
}

// Calculate computes the status of every definition at instant now.
// It never fails and never mutates its input.
func Calculate(in Input, now time.Time) Report {
	latest := latestLogs(in.Logs)

	statuses := make([]models.ServiceStatus, 0, len(in.Definitions))
	for _, def := range in.Definitions {
		var last *models.ServiceLog
		if l, ok := latest[def.ID]; ok {
			last = &l
		}
		statuses = append(statuses, evaluate(def, last, in.CurrentOdometer, now))
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		ti, tj := statuses[i].Status.Tier(), statuses[j].Status.Tier()
		if ti != tj {
			return ti < tj
		}
		return statuses[i].KmLeft.Less(statuses[j].KmLeft)
	})

	report := Report{Statuses: statuses}
	for _, s := range statuses {
		switch s.Status {
		case models.StatusDanger:
			report.UrgentCount++
		case models.StatusWarning:
			report.UpcomingCount++
		}
	}
	return report
}

// Critical returns the non-ok statuses, most urgent first.
func (r Report) Critical() []models.ServiceStatus {
	var out []models.ServiceStatus
	for _, s := range r.Statuses {
		if s.Status != models.StatusOK {
			out = append(out, s)
		}
	}
	return out
}

// Next returns the headline status, if any.
func (r Report) Next() (models.ServiceStatus, bool) {
	if len(r.Statuses) == 0 {
		return models.ServiceStatus{}, false
	}
	return r.Statuses[0], true
}

// latestLogs picks, per service id, the log with the highest odometer.
// Equal odometers resolve to the latest date, then the greatest id.
func latestLogs(logs []models.ServiceLog) map[string]models.ServiceLog {
	latest := make(map[string]models.ServiceLog)
	for _, l := range logs {
		cur, ok := latest[l.ServiceID]
		if !ok || newer(l, cur) {
			latest[l.ServiceID] = l
		}
	}
	return latest
}

func newer(a, b models.ServiceLog) bool {
	if a.Odometer != b.Odometer {
		return a.Odometer > b.Odometer
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}

func evaluate(def models.ServiceDefinition, last *models.ServiceLog, odometer int, now time.Time) models.ServiceStatus {
	status := models.ServiceStatus{
		ServiceID: def.ID,
		Name:      def.Name,
		DaysLeft:  models.NotApplicable,
		KmLeft:    models.NotApplicable,
	}

	var nextDueKm *int
	if last != nil {
		date, km := last.Date, last.Odometer
		status.LastPerformedDate = &date
		status.LastPerformedOdometer = &km

		if def.IntervalKm > 0 {
			nextDueKm = intPtr(last.Odometer + def.IntervalKm)
		}
		if def.IntervalMonths > 0 {
			due := last.Date.AddDate(0, def.IntervalMonths, 0)
			status.NextDueDate = &due
			status.DaysLeft = models.RemainingOf(daysUntil(due, now))
		}
	} else {
		nextDueKm = firstDue(def, odometer)
	}

	if nextDueKm != nil {
		status.NextDueOdometer = nextDueKm
		status.KmLeft = models.RemainingOf(*nextDueKm - odometer)
	}
	status.Status = classify(status.KmLeft, status.DaysLeft, def.IntervalMonths)
	return status
}

// firstDue estimates the due odometer of a service that was never logged.
// With no explicit target it assumes the service was done on schedule from
// odometer zero. A target of zero or less counts as unset.
func firstDue(def models.ServiceDefinition, odometer int) *int {
	switch {
	case def.NextDueOdometer != nil && *def.NextDueOdometer > 0:
		return intPtr(*def.NextDueOdometer)
	case def.IntervalKm <= 0:
		return nil
	case odometer < def.IntervalKm:
		return intPtr(def.IntervalKm)
	default:
		return intPtr((odometer/def.IntervalKm + 1) * def.IntervalKm)
	}
}

func classify(kmLeft, daysLeft models.Remaining, intervalMonths int) models.Status {
	switch {
	case kmLeft.Below(0) || daysLeft.Below(0):
		return models.StatusDanger
	case kmLeft.AtMost(WarningKm) || (daysLeft.AtMost(WarningDays) && intervalMonths > 0):
		return models.StatusWarning
	default:
		return models.StatusOK
	}
}

// daysUntil rounds the remaining time up to whole days.
func daysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

func intPtr(n int) *int {
	return &n
}
