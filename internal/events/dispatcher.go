package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// InMemoryDispatcher is a simple in-process dispatcher.
type InMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
	async     bool
	wg        sync.WaitGroup
}

// Option configures the dispatcher.
type Option func(*InMemoryDispatcher)

// WithAsync runs handlers on their own goroutine. Failures are logged, never returned to
// the publisher.
func WithAsync() Option {
	return func(d *InMemoryDispatcher) { d.async = true }
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger, opts ...Option) *InMemoryDispatcher {
	d := &InMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish invokes handlers for the given event. In synchronous mode every handler runs and
// the joined errors are returned.
func (d *InMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	if d.async {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			// detached from the request; it may already be done
			if err := d.run(context.WithoutCancel(ctx), event, handlers); err != nil {
				d.logger.Error("event handler failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
		}()
		return nil
	}
	return d.run(ctx, event, handlers)
}

func (d *InMemoryDispatcher) run(ctx context.Context, event Event, handlers []EventHandler) error {
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event type.
func (d *InMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Wait blocks until in-flight asynchronous handlers return.
func (d *InMemoryDispatcher) Wait() {
	d.wg.Wait()
}
