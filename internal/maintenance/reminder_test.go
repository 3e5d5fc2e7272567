package maintenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/motorcheck/internal/models"
)

func status(name string, s models.Status) models.ServiceStatus {
	return models.ServiceStatus{ServiceID: name, Name: name, Status: s}
}

func TestBuildReminder(t *testing.T) {
	tests := []struct {
		name      string
		report    Report
		wantOK    bool
		wantTitle string
		wantBody  string
	}{
		{
			name:   "all ok",
			report: Report{Statuses: []models.ServiceStatus{status("Oil", models.StatusOK)}},
			wantOK: false,
		},
		{
			name:      "single warning",
			report:    Report{Statuses: []models.ServiceStatus{status("Oil", models.StatusWarning), status("Air", models.StatusOK)}, UpcomingCount: 1},
			wantOK:    true,
			wantTitle: "Maintenance reminder",
			wantBody:  "Oil needs attention.",
		},
		{
			name: "one overdue plus warnings",
			report: Report{
				Statuses: []models.ServiceStatus{
					status("Brakes", models.StatusDanger),
					status("Oil", models.StatusWarning),
					status("Tires", models.StatusWarning),
					status("Air", models.StatusOK),
				},
				UrgentCount:   1,
				UpcomingCount: 2,
			},
			wantOK:    true,
			wantTitle: "Attention! 1 overdue service",
			wantBody:  "Brakes needs attention. +2 more pending.",
		},
		{
			name: "several overdue",
			report: Report{
				Statuses:    []models.ServiceStatus{status("Brakes", models.StatusDanger), status("Oil", models.StatusDanger)},
				UrgentCount: 2,
			},
			wantOK:    true,
			wantTitle: "Attention! 2 overdue services",
			wantBody:  "Brakes needs attention. +1 more pending.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := BuildReminder(tt.report)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTitle, r.Title)
			assert.Equal(t, tt.wantBody, r.Body)
		})
	}
}
