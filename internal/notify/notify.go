// Package notify delivers maintenance reminders, at most once per window.
package notify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Notification is a reminder ready for delivery.
type Notification struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Sender delivers notifications to the user.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, n Notification) error

// Send calls f(ctx, n).
func (f SenderFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogSender writes notifications to the log. It is used when no push
// transport is configured.
type LogSender struct {
	Logger log.FieldLogger
}

// Send logs the notification at info level.
func (s *LogSender) Send(ctx context.Context, n Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger.WithFields(log.Fields{
		"title": n.Title,
		"body":  n.Body,
	}).Info("Maintenance notification")
	return nil
}
