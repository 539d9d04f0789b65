// internal/handler/event_bus.go
package handler

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"board-bridge/internal/bridge"
)

// EventSink receives every bridge event. HandleEvent must not block for
// long; the bus calls sinks one after another.
type EventSink interface {
	HandleEvent(event bridge.Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(event bridge.Event)

// HandleEvent implements EventSink
func (f EventSinkFunc) HandleEvent(event bridge.Event) {
	f(event)
}

// EventBus drains the bridge event channel and fans events out to sinks
// and per-type subscribers.
type EventBus struct {
	sinks       []EventSink
	subscribers map[bridge.EventType][]chan bridge.Event
	mutex       sync.RWMutex
	logger      *zap.Logger

	delivered atomic.Int64
	dropped   atomic.Int64
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		subscribers: make(map[bridge.EventType][]chan bridge.Event),
		logger:      logger.With(zap.String("component", "event-bus")),
	}
}

// AddSink registers a sink for all events
func (eb *EventBus) AddSink(sink EventSink) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	eb.sinks = append(eb.sinks, sink)
}

// Subscribe subscribes to events of a specific type
func (eb *EventBus) Subscribe(eventType bridge.EventType) <-chan bridge.Event {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan bridge.Event, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// Run distributes events until ctx is done or source is closed. Events
// already buffered when ctx is done are still delivered.
func (eb *EventBus) Run(ctx context.Context, source <-chan bridge.Event) {
	eb.logger.Info("Event bus started")
	defer eb.logger.Info("Event bus stopped")

	for {
		select {
		case <-ctx.Done():
			eb.drain(source)
			return
		case event, ok := <-source:
			if !ok {
				return
			}
			eb.distributeEvent(event)
		}
	}
}

func (eb *EventBus) drain(source <-chan bridge.Event) {
	for {
		select {
		case event, ok := <-source:
			if !ok {
				return
			}
			eb.distributeEvent(event)
		default:
			return
		}
	}
}

// Stats returns delivered and dropped subscriber counts
func (eb *EventBus) Stats() (delivered, dropped int64) {
	return eb.delivered.Load(), eb.dropped.Load()
}

// distributeEvent distributes an event to sinks and subscribers
func (eb *EventBus) distributeEvent(event bridge.Event) {
	eb.mutex.RLock()
	sinks := eb.sinks
	subscribers := eb.subscribers[event.Type]
	eb.mutex.RUnlock()

	for _, sink := range sinks {
		sink.HandleEvent(event)
	}

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
			eb.delivered.Add(1)
		default:
			// Subscriber is slow, skip
			eb.dropped.Add(1)
			eb.logger.Debug("Subscriber full, dropping event",
				zap.String("event_type", string(event.Type)),
			)
		}
	}
}
