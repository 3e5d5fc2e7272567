package notify

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the minimum time between two notifications.
const DefaultWindow = 12 * time.Hour

// TimestampStore persists the time the last notification was sent.
type TimestampStore interface {
	LastSent(ctx context.Context) (time.Time, bool, error)
	MarkSent(ctx context.Context, at time.Time) error
}

// MemoryTimestamps keeps the last-sent time in process memory.
type MemoryTimestamps struct {
	mu   sync.Mutex
	last time.Time
	set  bool
}

// LastSent returns the stored time, if any.
func (m *MemoryTimestamps) LastSent(ctx context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.set, nil
}

// MarkSent stores at.
func (m *MemoryTimestamps) MarkSent(ctx context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = at
	m.set = true
	return nil
}

// Gate allows a notification when none was sent within Window.
type Gate struct {
	Store  TimestampStore
	Window time.Duration
}

// NewGate creates a gate over store. A non-positive window uses DefaultWindow.
func NewGate(store TimestampStore, window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{Store: store, Window: window}
}

// Allow reports whether a notification may be sent at now.
func (g *Gate) Allow(ctx context.Context, now time.Time) (bool, error) {
	last, ok, err := g.Store.LastSent(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return now.Sub(last) >= g.Window, nil
}

// Record marks a notification as sent at now.
func (g *Gate) Record(ctx context.Context, now time.Time) error {
	return g.Store.MarkSent(ctx, now)
}
