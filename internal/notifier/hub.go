// Package notifier fans lifecycle events out to scoped subscriber channels.
//
// Delivery is best-effort and at-most-once: Publish never blocks and never
// returns an error, so a slow or disconnected subscriber cannot stall or
// fail the admission/transition that triggered the event.
package notifier

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lokeshloki65/college-event/internal/metrics"
)

// Audience topics. Subject topics are built with TopicSubject.
const (
	TopicBroadcast   = "broadcast"
	TopicRoleAdmin   = "role:admin"
	TopicRoleStudent = "role:student"
)

func TopicSubject(subjectID string) string {
	return "subject:" + subjectID
}

// Lifecycle event names carried on the wire.
const (
	EventRegistrationCreated   = "registration-created"
	EventRegistrationStatus    = "registration-status-changed"
	EventRegistrationCancelled = "registration-cancelled"
	EventRegistrationUpdated   = "registration-updated"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Name           string    `json:"name"`
	RegistrationID string    `json:"registrationId"`
	EventID        string    `json:"eventId"`
	SubjectID      string    `json:"subjectId"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

// Subscriber receives events for the topics it subscribed with. Its channel
// is closed on Unsubscribe or hub Close.
type Subscriber struct {
	id     string
	topics map[string]struct{}
	ch     chan Event
}

func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

const defaultBufferSize = 32

// Hub routes published events to all subscribers whose topic set includes
// the published topic. Events published by a single goroutine are delivered
// to each subscriber in publish order.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscriber
	buffer int
	closed bool
}

type Option func(*Hub)

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]*Subscriber),
		buffer: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a subscriber for the given topics. Subscribing to no
// topics yields a subscriber that never receives anything.
func (h *Hub) Subscribe(topics ...string) *Subscriber {
	sub := &Subscriber{
		id:     uuid.NewString(),
		topics: make(map[string]struct{}, len(topics)),
		ch:     make(chan Event, h.buffer),
	}
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		sub.topics[t] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.ch)
}

// Publish delivers ev to every subscriber of topic. A subscriber whose
// buffer is full loses the event rather than blocking the publisher.
func (h *Hub) Publish(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	metrics.RecordFanoutPublished(topicClass(topic))
	for _, sub := range h.subs {
		if _, ok := sub.topics[topic]; !ok {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			metrics.RecordFanoutDropped()
		}
	}
}

// Close shuts the hub down and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func topicClass(topic string) string {
	if i := strings.IndexByte(topic, ':'); i > 0 {
		return topic[:i]
	}
	return topic
}
