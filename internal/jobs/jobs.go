// Package jobs runs monthly calculations asynchronously on a bounded worker
// pool. Each job runs exactly once and produces either a result set or an
// error.
package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"storepulse/internal/report"
)

// Status represents the status of a job
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Request carries the inputs of one monthly calculation
type Request struct {
	Data        *report.ImportedData
	Settings    report.Settings
	DaysInMonth int
}

// Job represents an async calculation job
type Job struct {
	ID          string                         `json:"id"`
	Status      Status                         `json:"status"`
	Progress    int                            `json:"progress"`
	Message     string                         `json:"message,omitempty"`
	Error       string                         `json:"error,omitempty"`
	CreatedAt   time.Time                      `json:"created_at"`
	StartedAt   *time.Time                     `json:"started_at,omitempty"`
	CompletedAt *time.Time                     `json:"completed_at,omitempty"`
	Results     map[string]*report.StoreResult `json:"results,omitempty"`

	Request *Request `json:"-"`
}

// Filter for querying jobs
type Filter struct {
	Status Status
	Since  time.Time
	Limit  int
}

// Store interface for job persistence
type Store interface {
	CreateJob(job *Job) error
	GetJob(id string) (*Job, error)
	UpdateJob(job *Job) error
	ListJobs(filter Filter) ([]*Job, error)
	DeleteJob(id string) error
}

// MemoryStore is an in-memory Store. Completed jobs are purged after the TTL.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
}

// NewMemoryStore creates a memory store. A non-positive ttl disables purging.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

// CreateJob stores a new job
func (s *MemoryStore) CreateJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	// Store a snapshot so later caller mutations stay invisible
	jobCopy := *job
	s.jobs[job.ID] = &jobCopy
	return nil
}

// GetJob returns a job by ID
func (s *MemoryStore) GetJob(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	// Return a copy to prevent external modification
	jobCopy := *job
	return &jobCopy, nil
}

// UpdateJob replaces a stored job with a snapshot of the given state
func (s *MemoryStore) UpdateJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("job %s not found", job.ID)
	}
	jobCopy := *job
	s.jobs[job.ID] = &jobCopy
	return nil
}

// ListJobs returns jobs matching the filter, newest first
func (s *MemoryStore) ListJobs(filter Filter) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if !filter.Since.IsZero() && job.CreatedAt.Before(filter.Since) {
			continue
		}
		// Copies, same as GetJob
		jobCopy := *job
		jobs = append(jobs, &jobCopy)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}
	return jobs, nil
}

// DeleteJob removes a job
func (s *MemoryStore) DeleteJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("job %s not found", id)
	}
	delete(s.jobs, id)
	return nil
}

// Purge removes finished jobs older than the TTL. Returns the count removed.
func (s *MemoryStore) Purge(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if job.CompletedAt == nil {
			continue
		}
		if now.Sub(*job.CompletedAt) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
