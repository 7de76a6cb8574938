package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// JobStatus represents the last known state of a job.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

// Job defines a scheduled background task.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

type jobEntry struct {
	Job

	mu        sync.Mutex
	status    JobStatus
	message   string
	lastRunAt *time.Time
	lastTook  time.Duration
	nextRunAt time.Time
}

// ListItem is the serializable representation of a job for the API.
type ListItem struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	IntervalMS  int64      `json:"intervalMs"`
	NextDate    *time.Time `json:"nextDate"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
}

// TaskResult is returned when polling job execution status.
type TaskResult struct {
	Status    JobStatus `json:"status"`
	Message   string    `json:"message,omitempty"`
	ElapsedMS int64     `json:"elapsedMs,omitempty"`
}

// Scheduler manages a collection of named interval jobs.
type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*jobEntry
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{jobs: make(map[string]*jobEntry)}
}

// Register adds a job to the scheduler. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobEntry{
		Job:       job,
		status:    StatusIdle,
		nextRunAt: time.Now().Add(job.Interval),
	}
}

// Start launches every registered job in its own goroutine. The jobs stop
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.jobs {
		go s.runLoop(ctx, entry)
	}
}

func (s *Scheduler) runLoop(ctx context.Context, entry *jobEntry) {
	for {
		entry.mu.Lock()
		wait := time.Until(entry.nextRunAt)
		entry.mu.Unlock()
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.execute(ctx, entry)
			entry.mu.Lock()
			entry.nextRunAt = time.Now().Add(entry.Interval)
			entry.mu.Unlock()
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, entry *jobEntry) {
	entry.mu.Lock()
	if entry.status == StatusRunning {
		entry.mu.Unlock()
		return
	}
	entry.status = StatusRunning
	entry.mu.Unlock()

	started := time.Now()
	err := entry.Fn(ctx)
	took := time.Since(started)

	entry.mu.Lock()
	entry.lastRunAt = &started
	entry.lastTook = took
	if err != nil {
		entry.status = StatusReject
		entry.message = err.Error()
	} else {
		entry.status = StatusFulfill
		entry.message = ""
	}
	entry.mu.Unlock()
}

// Run triggers a job by name without waiting for its next interval. The job
// executes in the background.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.RLock()
	entry, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	go s.execute(ctx, entry)
	return nil
}

// GetTask returns the current execution state of a job.
func (s *Scheduler) GetTask(name string) (*TaskResult, error) {
	s.mu.RLock()
	entry, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("job %q not found", name)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return &TaskResult{
		Status:    entry.status,
		Message:   entry.message,
		ElapsedMS: entry.lastTook.Milliseconds(),
	}, nil
}

// List returns a summary of all registered jobs sorted by name.
func (s *Scheduler) List() []ListItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ListItem, 0, len(s.jobs))
	for _, entry := range s.jobs {
		entry.mu.Lock()
		next := entry.nextRunAt
		items = append(items, ListItem{
			Name:        entry.Name,
			Description: entry.Description,
			Status:      entry.status,
			IntervalMS:  entry.Interval.Milliseconds(),
			NextDate:    &next,
			LastRunAt:   entry.lastRunAt,
		})
		entry.mu.Unlock()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
