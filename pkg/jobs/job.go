// Package jobs runs cancellable background work over the engine and
// reports its progress.
package jobs

import (
	"context"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Done reports whether the status is final
func (s Status) Done() bool {
	return s == StatusFinished || s == StatusCancelled || s == StatusError
}

// Job is a snapshot of one background task
type Job struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Status   Status    `json:"status"`
	Progress float64   `json:"progress"` // 0..1
	Message  string    `json:"message"`
	Result   any       `json:"result,omitempty"`
	Error    string    `json:"error,omitempty"`
	Created  time.Time `json:"created"`
	Ended    time.Time `json:"ended"`
}

// Reporter lets a task publish how far it has come
type Reporter func(progress float64, message string)

// Task is the body of a job. It must stop promptly once ctx is cancelled
// and return ctx.Err(); whatever it computed by then is discarded.
type Task func(ctx context.Context, report Reporter) (any, error)
