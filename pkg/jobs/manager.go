package jobs

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/syncup/pkg/logging"
	"github.com/ritzau/syncup/pkg/metrics"
	"github.com/ritzau/syncup/pkg/pubsub"
)

// progressStep is the smallest progress change that is published
const progressStep = 0.01

// Manager keeps every job in memory and runs each in its own goroutine
type Manager struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	cancels   map[string]context.CancelFunc
	published map[string]float64 // last progress sent per job

	publisher pubsub.Publisher
	wg        sync.WaitGroup
}

// NewManager creates a manager that publishes on the jobs topic. A nil
// publisher discards progress events.
func NewManager(publisher pubsub.Publisher) *Manager {
	if publisher == nil {
		publisher = pubsub.Discard{}
	}
	return &Manager{
		jobs:      make(map[string]*Job),
		cancels:   make(map[string]context.CancelFunc),
		published: make(map[string]float64),
		publisher: publisher,
	}
}

// Start registers a job and runs task in the background. The job outlives
// ctx only if ctx is never cancelled; cancelling ctx cancels the job.
func (m *Manager) Start(ctx context.Context, kind string, task Task) Job {
	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:      uuid.NewString(),
		Kind:    kind,
		Status:  StatusPending,
		Message: "Queued",
		Created: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.cancels[job.ID] = cancel
	snapshot := *job
	m.mu.Unlock()

	metrics.JobsStarted.WithLabelValues(kind).Inc()
	logging.Info("job started", "jobID", job.ID, "kind", kind)
	m.publish(snapshot)

	m.wg.Add(1)
	go m.run(jobCtx, cancel, job.ID, task)
	return snapshot
}

func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, id string, task Task) {
	defer m.wg.Done()
	defer cancel()

	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()

	m.update(id, true, func(j *Job) {
		j.Status = StatusRunning
		j.Message = "Running"
	})

	report := func(progress float64, message string) {
		progress = math.Max(0, math.Min(1, progress))
		m.update(id, false, func(j *Job) {
			j.Progress = progress
			j.Message = message
		})
	}

	result, err := task(ctx, report)

	var final Job
	m.update(id, true, func(j *Job) {
		j.Ended = time.Now()
		switch {
		case errors.Is(err, context.Canceled) || (err == nil && ctx.Err() != nil):
			j.Status = StatusCancelled
			j.Message = "Cancelled"
			j.Result = nil
		case err != nil:
			j.Status = StatusError
			j.Error = err.Error()
			j.Message = "Failed"
		default:
			j.Status = StatusFinished
			j.Progress = 1
			j.Result = result
		}
		final = *j
	})

	m.mu.Lock()
	delete(m.cancels, id)
	delete(m.published, id)
	m.mu.Unlock()

	metrics.JobsFinished.WithLabelValues(final.Kind, string(final.Status)).Inc()
	if final.Status == StatusError {
		logging.Warn("job failed", "jobID", id, "kind", final.Kind, "error", final.Error)
	} else {
		logging.Info("job ended", "jobID", id, "kind", final.Kind, "status", string(final.Status),
			"durationMs", final.Ended.Sub(final.Created).Milliseconds())
	}
}

// update mutates a job under the lock and publishes the new state when
// force is set or progress moved by at least progressStep
func (m *Manager) update(id string, force bool, fn func(*Job)) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	fn(job)
	snapshot := *job
	send := force || snapshot.Progress-m.published[id] >= progressStep || snapshot.Progress == 1
	if send {
		m.published[id] = snapshot.Progress
	}
	m.mu.Unlock()

	if send {
		m.publish(snapshot)
	}
}

func (m *Manager) publish(j Job) {
	p := pubsub.JobProgress{
		ID:       j.ID,
		Kind:     j.Kind,
		Status:   string(j.Status),
		Progress: j.Progress,
		Message:  j.Message,
	}
	eventType := "progress"
	if j.Status.Done() {
		eventType = string(j.Status)
	}
	if err := m.publisher.Publish(pubsub.TopicJobs, eventType, p); err != nil {
		logging.Debug("failed to publish job progress", "jobID", j.ID, "error", err)
	}
}

// Get returns a snapshot of the job
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// List returns snapshots of every job, oldest first
func (m *Manager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].Created.Equal(out[k].Created) {
			return out[i].Created.Before(out[k].Created)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

// Cancel asks a running job to stop. It reports false for unknown or
// already finished jobs.
func (m *Manager) Cancel(id string) bool {
	m.mu.RLock()
	cancel, ok := m.cancels[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	cancel()
	logging.Info("job cancellation requested", "jobID", id)
	return true
}

// Forget drops a finished job from the manager
func (m *Manager) Forget(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok || !job.Status.Done() {
		return false
	}
	delete(m.jobs, id)
	return true
}

// Shutdown cancels every running job and waits for them to end
func (m *Manager) Shutdown() {
	m.mu.RLock()
	for _, cancel := range m.cancels {
		cancel()
	}
	m.mu.RUnlock()
	m.wg.Wait()
}

// Wait blocks until every started job has ended
func (m *Manager) Wait() {
	m.wg.Wait()
}
