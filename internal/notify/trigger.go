package notify

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/motorcheck/internal/maintenance"
)

// Trigger turns a maintenance report into at most one notification per gate
// window.
type Trigger struct {
	gate   *Gate
	sender Sender
	logger log.FieldLogger
	mu     sync.Mutex
}

// NewTrigger creates a trigger. A nil logger uses the logrus standard logger.
func NewTrigger(gate *Gate, sender Sender, logger log.FieldLogger) *Trigger {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Trigger{gate: gate, sender: sender, logger: logger}
}

// Evaluate sends a reminder when the report has overdue or upcoming services
// and the gate allows it. It reports whether a notification was emitted.
// The attempt consumes the gate window before delivery, so a failed send is
// not retried until the window passes. Gate and delivery failures are logged,
// never returned.
func (t *Trigger) Evaluate(ctx context.Context, report maintenance.Report, now time.Time) bool {
	reminder, ok := maintenance.BuildReminder(report)
	if !ok {
		return false
	}

	if !t.reserve(ctx, now) {
		return false
	}

	n := Notification{Title: reminder.Title, Body: reminder.Body, CreatedAt: now}
	if err := t.sender.Send(ctx, n); err != nil {
		t.logger.WithError(err).WithField("title", n.Title).Error("Failed to deliver notification")
		return false
	}

	t.logger.WithFields(log.Fields{
		"urgent":   report.UrgentCount,
		"upcoming": report.UpcomingCount,
	}).Info("Sent maintenance notification")
	return true
}

// reserve checks the gate and records the attempt at now. Only one caller
// can win a window; delivery happens after the lock is released.
func (t *Trigger) reserve(ctx context.Context, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed, err := t.gate.Allow(ctx, now)
	if err != nil {
		t.logger.WithError(err).Warn("Failed to read last notification time")
		return false
	}
	if !allowed {
		return false
	}
	if err := t.gate.Record(ctx, now); err != nil {
		t.logger.WithError(err).Warn("Failed to record notification time")
		return false
	}
	return true
}
