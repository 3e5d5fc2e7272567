package store

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/motorcheck/internal/models"
)

// Persister writes whole collections to durable storage.
type Persister interface {
	SaveVehicle(ctx context.Context, vehicle models.VehicleSettings) error
	SaveServiceDefinitions(ctx context.Context, defs []models.ServiceDefinition) error
	SaveServiceLogs(ctx context.Context, logs []models.ServiceLog) error
	SaveFuelLogs(ctx context.Context, logs []models.FuelLog) error
}

const writeTimeout = 10 * time.Second

type writeJob struct {
	name string
	run  func(ctx context.Context, p Persister) error
}

// writer applies writes one at a time on its own goroutine. Only the newest
// pending write per collection is kept, so push never waits on the persister
// and a slow backend skips intermediate states instead of piling them up.
type writer struct {
	persister Persister
	logger    log.FieldLogger

	mu      sync.Mutex
	pending map[string]writeJob
	order   []string
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newWriter(p Persister, logger log.FieldLogger) *writer {
	w := &writer{
		persister: p,
		logger:    logger,
		pending:   make(map[string]writeJob),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go w.loop()
	return w
}

// push replaces the pending write for name. It never blocks.
func (w *writer) push(name string, run func(ctx context.Context, p Persister) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if _, ok := w.pending[name]; !ok {
		w.order = append(w.order, name)
	}
	w.pending[name] = writeJob{name: name, run: run}

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// take empties the pending set, in the order collections first became dirty.
func (w *writer) take() []writeJob {
	w.mu.Lock()
	defer w.mu.Unlock()
	jobs := make([]writeJob, 0, len(w.order))
	for _, name := range w.order {
		jobs = append(jobs, w.pending[name])
	}
	w.pending = make(map[string]writeJob)
	w.order = nil
	return jobs
}

func (w *writer) loop() {
	defer close(w.done)
	for range w.wake {
		w.flush()
	}
	w.flush()
}

func (w *writer) flush() {
	for _, job := range w.take() {
		w.run(job)
	}
}

func (w *writer) run(job writeJob) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	start := time.Now()
	if err := job.run(ctx, w.persister); err != nil {
		w.logger.WithError(err).WithField("collection", job.name).Error("Failed to persist state")
		return
	}
	w.logger.WithFields(log.Fields{
		"collection": job.name,
		"duration":   time.Since(start),
	}).Debug("Persisted state")
}

// close stops accepting writes, flushes what is pending and waits for the
// last write.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()
	<-w.done
}
