// Package store holds the vehicle state, recomputes maintenance statuses on
// every change and publishes them to subscribers.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/motorcheck/internal/maintenance"
	"github.com/ukydev/motorcheck/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate id")
	ErrInvalid     = errors.New("invalid input")
	ErrClosed      = errors.New("store closed")
)

// Notifier reacts to a freshly computed report.
type Notifier interface {
	Evaluate(ctx context.Context, report maintenance.Report, now time.Time) bool
}

// Options configures a Store. Every field is optional.
type Options struct {
	Persister Persister
	Notifier  Notifier
	Clock     func() time.Time
	Logger    log.FieldLogger
}

// Store is the single source of truth for one vehicle. Mutations run
// synchronously: state is updated, the report is recomputed and published,
// the notifier is evaluated, and the changed collections are handed to a
// background writer that the caller never waits on.
//
// Subscribers run in the mutating goroutine and must not mutate the store.
type Store struct {
	mu     sync.RWMutex
	pubMu  sync.Mutex
	state  models.Snapshot
	report maintenance.Report
	closed bool

	subscribers map[int]func(maintenance.Report)
	nextSub     int

	notifier Notifier
	clock    func() time.Time
	logger   log.FieldLogger
	writer   *writer
}

// New creates a store seeded with snap.
func New(snap models.Snapshot, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	s := &Store{
		state:       cloneSnapshot(snap),
		subscribers: make(map[int]func(maintenance.Report)),
		notifier:    opts.Notifier,
		clock:       opts.Clock,
		logger:      opts.Logger,
	}
	if s.state.ServiceDefinitions == nil {
		s.state.ServiceDefinitions = []models.ServiceDefinition{}
	}
	if s.state.ServiceLogs == nil {
		s.state.ServiceLogs = []models.ServiceLog{}
	}
	if s.state.FuelLogs == nil {
		s.state.FuelLogs = []models.FuelLog{}
	}
	sortServiceLogs(s.state.ServiceLogs)
	sortFuelLogs(s.state.FuelLogs)

	if opts.Persister != nil {
		s.writer = newWriter(opts.Persister, opts.Logger)
	}
	s.report = s.calculate()
	return s
}

// Close stops accepting mutations and waits for queued writes to finish.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.writer != nil {
		s.writer.close()
	}
}

// Subscribe registers fn to receive every recomputed report. The current
// report is delivered immediately. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(maintenance.Report)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	current := cloneReport(s.report)

	s.pubMu.Lock()
	s.mu.Unlock()
	fn(current)
	s.pubMu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Evaluate recomputes the report against the current clock and runs the
// notifier. It is used at startup and when time alone may have changed a
// status.
func (s *Store) Evaluate(ctx context.Context) maintenance.Report {
	s.mu.Lock()
	s.report = s.calculate()
	report := s.report
	s.publishAndUnlock(report)

	if s.notifier != nil {
		s.notifier.Evaluate(ctx, report, s.clock())
	}
	return report
}

// Report returns the last computed report.
func (s *Store) Report() maintenance.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneReport(s.report)
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.state)
}

// Vehicle returns the vehicle settings.
func (s *Store) Vehicle() models.VehicleSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Vehicle
}

// ServiceDefinitions returns a copy of the definitions.
func (s *Store) ServiceDefinitions() []models.ServiceDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDefinitions(s.state.ServiceDefinitions)
}

// ServiceLogs returns a copy of the service history, newest first.
func (s *Store) ServiceLogs() []models.ServiceLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ServiceLog{}, s.state.ServiceLogs...)
}

// FuelLogs returns a copy of the refuels, newest first.
func (s *Store) FuelLogs() []models.FuelLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FuelLog{}, s.state.FuelLogs...)
}

type dirty uint8

const (
	dirtyVehicle dirty = 1 << iota
	dirtyDefinitions
	dirtyServiceLogs
	dirtyFuelLogs

	dirtyAll = dirtyVehicle | dirtyDefinitions | dirtyServiceLogs | dirtyFuelLogs
)

// mutate applies fn to the state and, on success, runs the recompute,
// persist, publish and notify sequence.
func (s *Store) mutate(ctx context.Context, fn func(st *models.Snapshot) (dirty, error)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	changed, err := fn(&s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.report = s.calculate()
	report := s.report
	if s.writer != nil {
		s.enqueue(changed)
	}

	s.publishAndUnlock(report)

	if s.notifier != nil {
		s.notifier.Evaluate(ctx, report, s.clock())
	}
	return nil
}

// publishAndUnlock delivers report to every subscriber in registration
// order. It must be called with mu held and releases it; pubMu keeps
// concurrent publications in mutation order.
func (s *Store) publishAndUnlock(report maintenance.Report) {
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(maintenance.Report), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subscribers[id])
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	for _, fn := range subs {
		fn(cloneReport(report))
	}
}

// enqueue hands copies of the changed collections to the writer. Called with
// mu held so the newest copy of each collection always wins.
func (s *Store) enqueue(changed dirty) {
	if changed&dirtyVehicle != 0 {
		v := s.state.Vehicle
		s.writer.push("vehicle", func(ctx context.Context, p Persister) error {
			return p.SaveVehicle(ctx, v)
		})
	}
	if changed&dirtyDefinitions != 0 {
		defs := cloneDefinitions(s.state.ServiceDefinitions)
		s.writer.push("service_definitions", func(ctx context.Context, p Persister) error {
			return p.SaveServiceDefinitions(ctx, defs)
		})
	}
	if changed&dirtyServiceLogs != 0 {
		logs := append([]models.ServiceLog{}, s.state.ServiceLogs...)
		s.writer.push("service_logs", func(ctx context.Context, p Persister) error {
			return p.SaveServiceLogs(ctx, logs)
		})
	}
	if changed&dirtyFuelLogs != 0 {
		logs := append([]models.FuelLog{}, s.state.FuelLogs...)
		s.writer.push("fuel_logs", func(ctx context.Context, p Persister) error {
			return p.SaveFuelLogs(ctx, logs)
		})
	}
}

func (s *Store) calculate() maintenance.Report {
	return maintenance.Calculate(maintenance.Input{
		CurrentOdometer: s.state.Vehicle.CurrentOdometer,
		Definitions:     s.state.ServiceDefinitions,
		Logs:            s.state.ServiceLogs,
	}, s.clock())
}

func newID() string {
	return uuid.NewString()
}

func sortServiceLogs(logs []models.ServiceLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.After(logs[j].Date)
	})
}

func sortFuelLogs(logs []models.FuelLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.After(logs[j].Date)
	})
}

func cloneDefinitions(defs []models.ServiceDefinition) []models.ServiceDefinition {
	out := make([]models.ServiceDefinition, len(defs))
	for i, d := range defs {
		if d.NextDueOdometer != nil {
			n := *d.NextDueOdometer
			d.NextDueOdometer = &n
		}
		out[i] = d
	}
	return out
}

func cloneSnapshot(snap models.Snapshot) models.Snapshot {
	out := models.Snapshot{Vehicle: snap.Vehicle}
	if snap.ServiceDefinitions != nil {
		out.ServiceDefinitions = cloneDefinitions(snap.ServiceDefinitions)
	}
	if snap.ServiceLogs != nil {
		out.ServiceLogs = append([]models.ServiceLog{}, snap.ServiceLogs...)
	}
	if snap.FuelLogs != nil {
		out.FuelLogs = append([]models.FuelLog{}, snap.FuelLogs...)
	}
	return out
}

func cloneReport(r maintenance.Report) maintenance.Report {
	r.Statuses = append([]models.ServiceStatus{}, r.Statuses...)
	return r
}
