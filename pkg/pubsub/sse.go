package pubsub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"

	"github.com/ritzau/syncup/pkg/logging"
)

var (
	errClosed  = errors.New("publisher is closed")
	errDiscard = errors.New("discard publisher has no subscriptions")
)

// subscriberBuffer bounds how far a slow client may lag before events drop
const subscriberBuffer = 100

// TopicConfig controls what a late subscriber sees
type TopicConfig struct {
	BufferSize int  // events kept for replay, 0 disables replay
	ReplayAll  bool // replay the whole buffer instead of only the newest event
}

// DefaultTopics configures the engine status topic to replay its latest
// state and the jobs topic to replay recent progress
func DefaultTopics(p *SSEPublisher) {
	p.ConfigureTopic(TopicEngineStatus, TopicConfig{BufferSize: 1})
	p.ConfigureTopic(TopicJobs, TopicConfig{BufferSize: 50, ReplayAll: true})
}

// SSEPublisher implements Publisher using Server-Sent Events
type SSEPublisher struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*sseSubscription]bool // topic -> set of subscriptions
	version       map[string]int                       // topic -> version counter
	eventBuffer   map[string][]Event                   // topic -> ring buffer of events
	topicConfig   map[string]TopicConfig               // topic -> configuration
	closed        bool
}

// NewSSEPublisher creates a new SSE-based publisher
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		subscriptions: make(map[string]map[*sseSubscription]bool),
		version:       make(map[string]int),
		eventBuffer:   make(map[string][]Event),
		topicConfig:   make(map[string]TopicConfig),
	}
}

// ConfigureTopic sets buffering configuration for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topicConfig[topic] = config
}

// Subscribe creates a new subscription to a topic
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil, errClosed
	}

	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}

	if p.subscriptions[topic] == nil {
		p.subscriptions[topic] = make(map[*sseSubscription]bool)
	}
	p.subscriptions[topic][sub] = true

	// Replay under the lock so no live event or Close can interleave
	config := p.topicConfig[topic]
	if buffered := p.eventBuffer[topic]; len(buffered) > 0 {
		replay := buffered
		if !config.ReplayAll {
			replay = buffered[len(buffered)-1:]
		}
		for _, event := range replay {
			select {
			case sub.events <- event:
			default:
				logging.Warn("could not replay event to new subscriber", "topic", topic)
			}
		}
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic
func (p *SSEPublisher) Publish(topic string, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errClosed
	}

	p.version[topic]++
	version := p.version[topic]

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    jsonData,
		Version: version,
	}

	config := p.topicConfig[topic]
	if config.BufferSize > 0 {
		buffer := p.eventBuffer[topic]
		buffer = append(buffer, event)

		if len(buffer) > config.BufferSize {
			buffer = buffer[len(buffer)-config.BufferSize:]
		}
		p.eventBuffer[topic] = buffer
	}

	// Slow subscribers lose events rather than block the publisher
	for sub := range p.subscriptions[topic] {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscription channel full, dropping event", "topic", topic, "type", eventType)
		}
	}

	return nil
}

// Close shuts down the publisher and all subscriptions
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	for _, subs := range p.subscriptions {
		for sub := range subs {
			close(sub.events)
		}
	}

	p.subscriptions = make(map[string]map[*sseSubscription]bool)

	return nil
}

// unsubscribe removes a subscription and ends its event stream. Close
// already ended every stream it dropped, so only registered ones close here.
func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	subs := p.subscriptions[sub.topic]
	if !subs[sub] {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(p.subscriptions, sub.topic)
	}
	close(sub.events)
}

// sseSubscription implements Subscription
type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	closed    bool
	mu        sync.Mutex
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// Close closes the subscription
func (s *sseSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.publisher.unsubscribe(s)

	return nil
}

// WriteSSE writes event as one "data:" frame
func WriteSSE(w io.Writer, event Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "data: %s\n\n", jsonData)
	return err
}
