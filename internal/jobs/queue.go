package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"storepulse/internal/metrics"
	"storepulse/internal/report"
)

// Broadcaster receives job lifecycle notifications. The WebSocket hub
// implements it.
type Broadcaster interface {
	BroadcastJobStatus(jobID, status string)
	BroadcastJobProgress(jobID, storeID string, completed, total int)
	BroadcastJobComplete(jobID string, stores int)
	BroadcastJobError(jobID, message string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastJobStatus(string, string)             {}
func (noopBroadcaster) BroadcastJobProgress(string, string, int, int) {}
func (noopBroadcaster) BroadcastJobComplete(string, int)              {}
func (noopBroadcaster) BroadcastJobError(string, string)              {}

// Queue manages async calculation job execution
type Queue struct {
	mu             sync.RWMutex
	jobs           chan *Job
	workers        int
	wg             sync.WaitGroup
	store          Store
	maxConcurrency int
	broadcaster    Broadcaster
	metrics        *metrics.Metrics
	logger         *slog.Logger
	shutdown       chan struct{}
	active         map[string]*Job
	purgeEvery     time.Duration
}

// QueueOption configures a Queue
type QueueOption func(*Queue)

// WithBroadcaster installs a lifecycle broadcaster
func WithBroadcaster(b Broadcaster) QueueOption {
	return func(q *Queue) {
		if b != nil {
			q.broadcaster = b
		}
	}
}

// WithMetrics installs Prometheus collectors
func WithMetrics(m *metrics.Metrics) QueueOption {
	return func(q *Queue) { q.metrics = m }
}

// WithQueueSize sets the pending job buffer size
func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.jobs = make(chan *Job, n)
		}
	}
}

// WithMaxConcurrency bounds per-job store parallelism
func WithMaxConcurrency(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.maxConcurrency = n
		}
	}
}

// NewQueue creates a new calculation job queue
func NewQueue(workers int, store Store, logger *slog.Logger, opts ...QueueOption) *Queue {
	if workers <= 0 {
		workers = 2
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		jobs:           make(chan *Job, workers*2),
		workers:        workers,
		store:          store,
		maxConcurrency: 4,
		broadcaster:    noopBroadcaster{},
		logger:         logger.With(slog.String("component", "jobqueue")),
		shutdown:       make(chan struct{}),
		active:         make(map[string]*Job),
		purgeEvery:     10 * time.Minute,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start begins processing jobs
func (q *Queue) Start(ctx context.Context) {
	q.logger.Info("starting job queue", slog.Int("workers", q.workers))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	go q.purgeLoop(ctx)
}

// Stop gracefully shuts down the job queue
func (q *Queue) Stop(timeout time.Duration) error {
	q.logger.Info("stopping job queue")

	close(q.shutdown)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("job queue stopped gracefully")
		return nil
	case <-time.After(timeout):
		q.logger.Warn("job queue stop timeout exceeded")
		return fmt.Errorf("timeout waiting for workers to finish")
	}
}

// Enqueue creates a job for the request and adds it to the queue
func (q *Queue) Enqueue(req *Request) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
		Message:   "Job queued",
		Request:   req,
	}

	if err := q.store.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	// Snapshot before the send: a worker owns job the moment it is queued
	jobCopy := *job

	select {
	case q.jobs <- job:
		q.logger.Info("job enqueued", slog.String("job_id", job.ID))
		q.broadcaster.BroadcastJobStatus(job.ID, string(StatusPending))
		return &jobCopy, nil
	default:
		job.Status = StatusFailed
		job.Error = "job queue is full"
		now := time.Now()
		job.CompletedAt = &now
		if err := q.store.UpdateJob(job); err != nil {
			q.logger.Error("failed to update rejected job",
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("job queue is full")
	}
}

// GetJob retrieves a snapshot of a job by ID. The store copy is the only
// published view; the in-flight job a worker mutates is never handed out.
func (q *Queue) GetJob(id string) (*Job, error) {
	return q.store.GetJob(id)
}

// CancelJob cancels a pending job. Running jobs cannot be interrupted.
func (q *Queue) CancelJob(id string) error {
	job, err := q.GetJob(id)
	if err != nil {
		return err
	}

	if job.Status != StatusPending {
		return fmt.Errorf("job %s cannot be cancelled (status: %s)", id, job.Status)
	}

	job.Status = StatusCancelled
	now := time.Now()
	job.CompletedAt = &now

	q.broadcaster.BroadcastJobStatus(job.ID, string(StatusCancelled))
	return q.store.UpdateJob(job)
}

// ListJobs returns jobs matching the filter
func (q *Queue) ListJobs(filter Filter) ([]*Job, error) {
	return q.store.ListJobs(filter)
}

// Stats returns queue statistics
func (q *Queue) Stats() map[string]interface{} {
	q.mu.RLock()
	activeCount := len(q.active)
	q.mu.RUnlock()

	return map[string]interface{}{
		"workers":     q.workers,
		"queue_size":  len(q.jobs),
		"queue_cap":   cap(q.jobs),
		"active_jobs": activeCount,
	}
}

// worker processes jobs from the queue
func (q *Queue) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()

	logger := q.logger.With(slog.Int("worker_id", workerID))
	logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker stopped by context")
			return
		case <-q.shutdown:
			logger.Debug("worker stopped by shutdown")
			return
		case job := <-q.jobs:
			q.processJob(ctx, job, logger)
		}
	}
}

// processJob executes a single job
func (q *Queue) processJob(ctx context.Context, job *Job, logger *slog.Logger) {
	// A cancel that won the race stays cancelled
	if stored, err := q.store.GetJob(job.ID); err == nil && stored.Status == StatusCancelled {
		logger.Info("skipping cancelled job", slog.String("job_id", job.ID))
		return
	}

	logger = logger.With(slog.String("job_id", job.ID))
	logger.Info("processing job started")

	q.mu.Lock()
	q.active[job.ID] = job
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.JobsInFlight.Inc()
	}

	defer func() {
		// Panics stay inside the job boundary
		if r := recover(); r != nil {
			logger.Error("job processing panicked", slog.Any("panic", r))

			job.Status = StatusFailed
			job.Error = fmt.Sprintf("job processing panicked: %v", r)
			job.Message = "Internal error occurred"
			completedAt := time.Now()
			job.CompletedAt = &completedAt

			if err := q.store.UpdateJob(job); err != nil {
				logger.Error("failed to update job after panic", slog.String("error", err.Error()))
			}
			q.broadcaster.BroadcastJobError(job.ID, job.Error)
			if q.metrics != nil {
				q.metrics.JobsTotal.WithLabelValues(string(StatusFailed)).Inc()
			}
		}

		q.mu.Lock()
		delete(q.active, job.ID)
		q.mu.Unlock()

		if q.metrics != nil {
			q.metrics.JobsInFlight.Dec()
		}
	}()

	job.Status = StatusRunning
	now := time.Now()
	job.StartedAt = &now
	job.Progress = 0
	job.Message = "Job started"

	if err := q.store.UpdateJob(job); err != nil {
		logger.Error("failed to update job status", slog.String("error", err.Error()))
	}
	q.broadcaster.BroadcastJobStatus(job.ID, string(StatusRunning))

	results, err := q.runCalculation(ctx, job)
	if err != nil {
		q.handleJobError(job, err, logger)
		return
	}

	job.Status = StatusCompleted
	job.Progress = 100
	job.Message = "Calculation completed"
	job.Results = results
	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err := q.store.UpdateJob(job); err != nil {
		logger.Error("failed to update job completion", slog.String("error", err.Error()))
	}

	q.broadcaster.BroadcastJobComplete(job.ID, len(results))
	if q.metrics != nil {
		q.metrics.JobsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	}

	logger.Info("processing job completed", slog.Int("results", len(results)))
}

// runCalculation executes the engine with per-store progress reporting
func (q *Queue) runCalculation(ctx context.Context, job *Job) (map[string]*report.StoreResult, error) {
	req := job.Request
	if req == nil || req.Data == nil {
		return nil, fmt.Errorf("job %s carries no calculation request", job.ID)
	}

	start := time.Now()
	progress := func(storeID string, completed, total int) {
		pct := 0
		if total > 0 {
			pct = completed * 100 / total
		}
		// Snapshot under the lock: progress callbacks run concurrently
		q.mu.Lock()
		job.Progress = pct
		job.Message = fmt.Sprintf("Calculated store %s (%d/%d)", storeID, completed, total)
		jobCopy := *job
		q.mu.Unlock()
		if err := q.store.UpdateJob(&jobCopy); err != nil {
			q.logger.Error("failed to update job progress",
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()))
		}
		q.broadcaster.BroadcastJobProgress(job.ID, storeID, completed, total)
	}
	calc := report.NewCalculator(q.logger,
		report.WithMaxConcurrency(q.maxConcurrency),
		report.WithProgress(progress),
	)

	results, err := calc.CalculateAll(ctx, req.Data, req.Settings, req.DaysInMonth)
	if q.metrics != nil {
		q.metrics.ObserveCalculation(time.Since(start), len(results), err)
	}
	return results, err
}

// handleJobError handles job execution errors
func (q *Queue) handleJobError(job *Job, err error, logger *slog.Logger) {
	logger.Error("job failed", slog.String("error", err.Error()))

	job.Status = StatusFailed
	job.Error = err.Error()
	job.Message = "Job failed"
	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if updateErr := q.store.UpdateJob(job); updateErr != nil {
		logger.Error("failed to update job error", slog.String("error", updateErr.Error()))
	}

	q.broadcaster.BroadcastJobError(job.ID, err.Error())
	if q.metrics != nil {
		q.metrics.JobsTotal.WithLabelValues(string(StatusFailed)).Inc()
	}
}

// purgeLoop periodically evicts expired finished jobs from memory stores
func (q *Queue) purgeLoop(ctx context.Context) {
	memStore, ok := q.store.(*MemoryStore)
	if !ok {
		return
	}

	ticker := time.NewTicker(q.purgeEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.shutdown:
			return
		case <-ticker.C:
			if removed := memStore.Purge(time.Now()); removed > 0 {
				q.logger.Info("purged finished jobs", slog.Int("removed", removed))
			}
		}
	}
}
