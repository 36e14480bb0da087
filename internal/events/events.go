// Package events is the pub/sub hub connecting the recognition
// pipeline to its consumers. The loop controller emits gate changes,
// per-tick predictions and decision events; the websocket transport and
// the CLI subscribe to forward them.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const emitTimeout = 5 * time.Second

// HandlerFunc is called for every event published on a subscribed topic.
type HandlerFunc func(context.Context, any) error

// HubOption configures a Hub.
type HubOption func(*hubConfig)

type hubConfig struct {
	bufferSize   int
	syncDelivery bool
	logger       *slog.Logger
}

// WithBufferSize sets the internal event channel buffer size.
func WithBufferSize(size int) HubOption {
	return func(cfg *hubConfig) {
		cfg.bufferSize = size
	}
}

// WithLogger sets a structured logger for handler errors.
func WithLogger(logger *slog.Logger) HubOption {
	return func(cfg *hubConfig) {
		cfg.logger = logger
	}
}

// WithSyncDelivery forces inline delivery on the hub goroutine. Use it
// when handlers must never run concurrently, such as websocket writers.
func WithSyncDelivery() HubOption {
	return func(cfg *hubConfig) {
		cfg.syncDelivery = true
	}
}

type event struct {
	topic   string
	message any
}

// Subscription identifies one registered handler. Call Unsubscribe to
// remove it.
type Subscription struct {
	Topic       string
	ID          string
	Unsubscribe func()
}

// Hub fans events out to topic subscribers from a single dispatch
// goroutine.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[string]HandlerFunc
	nextID int64

	events   chan event
	shutdown chan struct{}
	closed   sync.Once
	wg       sync.WaitGroup

	config hubConfig
}

// NewHub creates a hub and starts its dispatch goroutine.
func NewHub(opts ...HubOption) *Hub {
	cfg := hubConfig{bufferSize: 256}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Hub{
		subs:     make(map[string]map[string]HandlerFunc),
		events:   make(chan event, cfg.bufferSize),
		shutdown: make(chan struct{}),
		config:   cfg,
	}
	h.wg.Add(1)
	go h.dispatch()
	return h
}

// Emit publishes a typed event to a topic. It fails rather than block
// forever when the hub is saturated or already shut down.
func Emit[T any](h *Hub, topic string, value T) error {
	evt := event{topic: topic, message: value}
	select {
	case h.events <- evt:
		return nil
	case <-h.shutdown:
		return fmt.Errorf("events: hub is shut down, dropping %s", topic)
	case <-time.After(emitTimeout):
		return fmt.Errorf("events: emit timed out on %s", topic)
	}
}

// Subscribe registers a typed handler on a topic. Events whose payload
// is not a T are reported as handler errors, not delivered.
func Subscribe[T any](h *Hub, topic string, handler func(context.Context, T) error) Subscription {
	wrapped := HandlerFunc(func(ctx context.Context, data any) error {
		typed, ok := data.(T)
		if !ok {
			return fmt.Errorf("events: %s carries %T, handler wants %T", topic, data, *new(T))
		}
		return handler(ctx, typed)
	})

	h.mu.Lock()
	h.nextID++
	id := fmt.Sprintf("%s-%d", topic, h.nextID)
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[string]HandlerFunc)
	}
	h.subs[topic][id] = wrapped
	h.mu.Unlock()

	return Subscription{
		Topic: topic,
		ID:    id,
		Unsubscribe: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if topicSubs, ok := h.subs[topic]; ok {
				delete(topicSubs, id)
				if len(topicSubs) == 0 {
					delete(h.subs, topic)
				}
			}
		},
	}
}

// Close shuts the hub down. Idempotent; pending events are dropped.
func (h *Hub) Close() {
	h.closed.Do(func() {
		close(h.shutdown)
	})
	h.wg.Wait()
}

func (h *Hub) dispatch() {
	defer h.wg.Done()
	for {
		select {
		case <-h.shutdown:
			return
		case evt := <-h.events:
			h.mu.RLock()
			handlers := make([]HandlerFunc, 0, len(h.subs[evt.topic]))
			for _, fn := range h.subs[evt.topic] {
				handlers = append(handlers, fn)
			}
			h.mu.RUnlock()

			for _, fn := range handlers {
				h.deliver(fn, evt)
			}
		}
	}
}

func (h *Hub) deliver(fn HandlerFunc, evt event) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx, evt.message); err != nil && h.config.logger != nil {
			h.config.logger.Debug("event handler error", "topic", evt.topic, "error", err)
		}
	}
	if h.config.syncDelivery {
		run()
		return
	}
	go run()
}
