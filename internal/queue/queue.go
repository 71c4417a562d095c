// Package queue runs background jobs on a bounded worker pool.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cashon/internal/logger"
	"cashon/internal/metrics"
)

var (
	ErrQueueFull    = errors.New("queue is full")
	ErrQueueStopped = errors.New("queue is stopped")
	ErrDuplicateJob = errors.New("job already queued")
)

// Job is a unit of background work. Jobs sharing a Key are deduplicated while
// one of them is queued or running.
type Job struct {
	Name string
	Key  string
	Run  func(ctx context.Context) error
}

// Dispatcher accepts jobs for execution. An error from Enqueue is either a
// queueing failure or, for dispatchers that run the job in the caller, a
// *JobError carrying the job's own error.
type Dispatcher interface {
	Enqueue(ctx context.Context, job Job) error
}

// JobError is returned by Inline when the job ran and failed.
type JobError struct {
	Name string
	Err  error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: %v", e.Name, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// IsJobError reports whether err came from a job that ran, as opposed to one
// that was never queued.
func IsJobError(err error) bool {
	var je *JobError
	return errors.As(err, &je)
}

type Queue struct {
	jobs     chan Job
	workers  int
	timeout  time.Duration
	mu       sync.Mutex
	inflight map[string]struct{}
	stopped  bool
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// New creates a queue with workers goroutines and a buffer of size jobs.
// Each job runs under timeout when it is positive.
func New(workers, size int, timeout time.Duration) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 1
	}
	return &Queue{
		jobs:     make(chan Job, size),
		workers:  workers,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Start launches the workers. They exit when ctx is done or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Enqueue hands job to the workers. ctx only bounds the hand-off; the job
// runs under the context given to Start.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no Run func", job.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrQueueStopped
	}
	if job.Key != "" {
		if _, ok := q.inflight[job.Key]; ok {
			return ErrDuplicateJob
		}
	}

	select {
	case q.jobs <- job:
		if job.Key != "" {
			q.inflight[job.Key] = struct{}{}
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs, drains the buffer and waits for workers to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	if q.cancel != nil {
		q.cancel()
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(ctx, id, job)
	}
}

func (q *Queue) run(ctx context.Context, workerID int, job Job) {
	defer q.release(job.Key)
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordQueueJob(job.Name, "panic")
			logger.Error().
				Str("job", job.Name).
				Str("key", job.Key).
				Interface("panic", r).
				Msg("background job panicked")
		}
	}()

	jobCtx := ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(jobCtx); err != nil {
		metrics.RecordQueueJob(job.Name, "error")
		logger.Error().
			Err(err).
			Str("job", job.Name).
			Str("key", job.Key).
			Int("worker", workerID).
			Dur("took", time.Since(start)).
			Msg("background job failed")
		return
	}
	metrics.RecordQueueJob(job.Name, "ok")
	logger.Debug().
		Str("job", job.Name).
		Str("key", job.Key).
		Dur("took", time.Since(start)).
		Msg("background job done")
}

func (q *Queue) release(key string) {
	if key == "" {
		return
	}
	q.mu.Lock()
	delete(q.inflight, key)
	q.mu.Unlock()
}

// Inline runs jobs synchronously on Enqueue under the caller's context. It
// is the direct-call counterpart of Queue for CLI runs and tests.
type Inline struct{}

func (Inline) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no Run func", job.Name)
	}
	if err := job.Run(ctx); err != nil {
		return &JobError{Name: job.Name, Err: err}
	}
	return nil
}
