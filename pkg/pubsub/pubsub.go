// Package pubsub fans out engine and job events to SSE subscribers.
package pubsub

import (
	"context"

	"github.com/goccy/go-json"
)

const (
	// TopicEngineStatus carries build progress of the engine
	TopicEngineStatus = "engine_status"
	// TopicJobs carries progress of background jobs
	TopicJobs = "jobs"
)

// Event is one published message
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"` // e.g. "building", "ready", "progress", "finished"
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // per-topic sequence number
}

// Subscription is a client subscription to one topic
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher manages subscriptions and event publishing. Cancelling the
// context given to Subscribe closes the subscription.
type Publisher interface {
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Publish(topic string, eventType string, data any) error
	Close() error
}

// EngineStatus reports where a graph build is
type EngineStatus struct {
	State    string `json:"state"` // building, ready, error
	Message  string `json:"message"`
	Step     int    `json:"step"`
	Total    int    `json:"total"`
	Tracks   int    `json:"tracks"`
	Edges    int    `json:"edges"`
	Users    int    `json:"users"`
	Complete bool   `json:"complete"`
}

// JobProgress reports the state of a background job
type JobProgress struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"` // 0..1
	Message  string  `json:"message"`
}

// Discard is a Publisher that drops every event. It is used when nothing
// listens, such as in one-shot CLI runs and tests.
type Discard struct{}

func (Discard) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	return nil, errDiscard
}

func (Discard) Publish(string, string, any) error { return nil }

func (Discard) Close() error { return nil }
