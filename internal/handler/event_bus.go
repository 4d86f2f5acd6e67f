// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/zap"

	"label-service/internal/model"
)

// EventBus fans job and status events out to stream subscribers
type EventBus struct {
	subscribers map[chan model.Event]struct{}
	events      chan model.Event
	done        chan struct{}
	closeOnce   sync.Once
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus. Call Start to begin delivery.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[chan model.Event]struct{}),
		events:      make(chan model.Event, 1000),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Start delivers published events until Close is called
func (eb *EventBus) Start() {
	for {
		select {
		case event := <-eb.events:
			eb.distributeEvent(event)
		case <-eb.done:
			return
		}
	}
}

// Close stops delivery and closes every subscription
func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		close(eb.done)

		eb.mutex.Lock()
		defer eb.mutex.Unlock()
		for subscriber := range eb.subscribers {
			close(subscriber)
			delete(eb.subscribers, subscriber)
		}
	})
}

// Publish queues an event without blocking
func (eb *EventBus) Publish(event model.Event) {
	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", event.Type),
		)
	}
}

// Subscribe returns a channel receiving every event published after the call
func (eb *EventBus) Subscribe() <-chan model.Event {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan model.Event, 100)
	select {
	case <-eb.done:
		close(subscriber)
	default:
		eb.subscribers[subscriber] = struct{}{}
	}
	return subscriber
}

// Unsubscribe removes and closes a subscription
func (eb *EventBus) Unsubscribe(ch <-chan model.Event) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for subscriber := range eb.subscribers {
		if subscriber == ch {
			delete(eb.subscribers, subscriber)
			close(subscriber)
			return
		}
	}
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event model.Event) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for subscriber := range eb.subscribers {
		select {
		case subscriber <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
