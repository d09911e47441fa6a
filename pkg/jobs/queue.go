// Package jobs runs background work on a fixed pool of goroutines fed by a
// buffered channel. Nothing is persisted; callers that need durability keep
// their own job rows and re-enqueue them on boot.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by Enqueue when the buffer has no free slot.
var ErrQueueFull = errors.New("jobs: queue full")

// ErrNotStarted is returned by Enqueue before Start or after Stop.
var ErrNotStarted = errors.New("jobs: queue not running")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the queue drops the job instead of retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Job is one unit of background work. Attempt counts previous failures.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Stats is a point-in-time view of the queue.
type Stats struct {
	Depth     int
	InFlight  int
	Retrying  int
	Succeeded uint64
	Dropped   uint64
}

// Queue dispatches jobs to its workers. Failed jobs are re-enqueued after
// RetryDelay, at most MaxRetries times, unless the error is Permanent.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.SugaredLogger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	running bool

	inFlight  atomic.Int64
	retrying  atomic.Int64
	succeeded atomic.Uint64
	dropped   atomic.Uint64
}

// NewQueue builds a queue; call Start before enqueueing.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.Sugar().With("queue", name),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running || q.ctx != nil {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.logger.Infow("queue started", "workers", q.cfg.Workers, "buffer", q.cfg.BufferSize)
}

// Stop cancels the workers and waits for in-flight jobs to return. Jobs still
// buffered are abandoned.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Infow("queue stopped", "abandoned", len(q.jobs))
}

// Enqueue hands job to the workers without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return fmt.Errorf("%w: %s", ErrNotStarted, q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrQueueFull, q.name)
	}
}

// Stats reports the current depth and counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Depth:     len(q.jobs),
		InFlight:  int(q.inFlight.Load()),
		Retrying:  int(q.retrying.Load()),
		Succeeded: q.succeeded.Load(),
		Dropped:   q.dropped.Load(),
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.inFlight.Add(1)
			err := q.run(job)
			q.inFlight.Add(-1)
			if err != nil {
				q.fail(job, err)
				continue
			}
			q.succeeded.Add(1)
		}
	}
}

// run invokes the handler, turning a panic into a permanent failure.
func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("job %s panicked: %v", job.ID, r))
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) fail(job Job, err error) {
	log := q.logger.With("job_id", job.ID, "type", job.Type, "error", err)
	if IsPermanent(err) {
		q.dropped.Add(1)
		log.Errorw("job failed permanently")
		return
	}
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.dropped.Add(1)
		log.Errorw("job exceeded retries", "attempts", job.Attempt)
		return
	}
	log.Warnw("job failed, retrying", "attempt", job.Attempt, "delay", q.cfg.RetryDelay)

	q.retrying.Add(1)
	go func() {
		defer q.retrying.Add(-1)
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(job); err != nil {
				q.dropped.Add(1)
				q.logger.Errorw("failed to requeue job", "job_id", job.ID, "error", err)
			}
		}
	}()
}
