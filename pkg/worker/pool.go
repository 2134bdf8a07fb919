// Package worker provides an asynchronous worker pool for persisting
// completed agent sessions using the provided storage.Driver and announcing
// them via the provided eventstream.Publisher.
//
// The pool decouples persistence from the streaming hot path so the client
// never waits on the database or the event broker.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/eventstream"
	"github.com/cognicodeco/chainstream/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool: one completed session.
type Job struct {
	Session *storage.Session
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting sessions.
	Driver storage.Driver

	// Publisher is the optional eventstream backend for announcing
	// completed sessions.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes session persistence jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Session == nil {
		p.logger.Error("job not queued, nil session")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			zap.String("session_id", job.Session.ID),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("session_id", job.Session.ID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("session worker stopped", zap.Uint("worker_id", id))
}

// processJob persists one session and, when a publisher is configured,
// announces it on the event stream. Publish errors are logged but do not
// undo the persisted session.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.config.Driver.Put(ctx, job.Session); err != nil {
		p.logger.Error("async session storage failed",
			zap.String("session_id", job.Session.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("session stored",
		zap.String("session_id", job.Session.ID),
		zap.String("status", job.Session.Status),
		zap.Int64("duration_ms", job.Session.DurationMs),
	)

	if p.config.Publisher == nil {
		return
	}

	event := &eventstream.SessionCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeSessionCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     job.Session.ID,
		Query:         job.Session.Query,
		Answer:        job.Session.Answer,
		Status:        job.Session.Status,
		DurationMs:    job.Session.DurationMs,
	}

	if err := p.config.Publisher.PublishSession(ctx, event); err != nil {
		p.logger.Warn("failed to publish session event",
			zap.String("session_id", job.Session.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("session event emitted",
		zap.String("event_id", event.EventID),
		zap.String("session_id", job.Session.ID),
	)
}
