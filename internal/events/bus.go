package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Handler consumes a single event. Returning an error requests redelivery.
type Handler func(ctx context.Context, event Event) error

// subscription keys are (collection, kind) pairs.
type subKey struct {
	collection Collection
	kind       Kind
}

// Bus dispatches change events to subscribed handlers.
//
// Events are processed one at a time in emission order on a single
// dispatch goroutine. Handlers may emit further events (cascades and
// counter adjustments do), and they emit from the dispatch goroutine
// itself, so the queue is unbounded: Emit must never block, or a large
// cascade would deadlock the dispatcher against its own backlog and
// stall every store mutation behind it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[subKey][]Handler

	queueMu sync.Mutex
	queue   []Event
	wake    chan struct{}

	logger  *slog.Logger
	pending sync.WaitGroup

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewBus creates a new event bus. Start must be called before events flow.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[subKey][]Handler),
		wake:     make(chan struct{}, 1),
		logger:   logger,
	}
}

// Subscribe registers a handler for a (collection, kind) pair.
// Subscriptions are expected to happen during startup, before Start.
func (b *Bus) Subscribe(collection Collection, kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := subKey{collection: collection, kind: kind}
	b.handlers[key] = append(b.handlers[key], handler)
}

// Emit queues an event for dispatch. Safe for concurrent use.
// Events emitted after shutdown are dropped.
func (b *Bus) Emit(event Event) {
	b.shutdownMu.RLock()
	defer b.shutdownMu.RUnlock()

	if b.shutdown {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.pending.Add(1)
	b.queueMu.Lock()
	b.queue = append(b.queue, event)
	b.queueMu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Start runs the dispatch loop until ctx is canceled.
// Call once, in a goroutine, at startup.
func (b *Bus) Start(ctx context.Context) {
	if b.logger != nil {
		b.logger.Info("event bus starting")
	}

	for {
		select {
		case <-b.wake:
			for {
				event, ok := b.next()
				if !ok {
					break
				}
				b.dispatch(ctx, event)
				b.pending.Done()
			}

		case <-ctx.Done():
			if b.logger != nil {
				b.logger.Info("event bus stopping")
			}
			return
		}
	}
}

// next pops the oldest queued event, if any.
func (b *Bus) next() (Event, bool) {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()

	if len(b.queue) == 0 {
		return Event{}, false
	}
	event := b.queue[0]
	b.queue = b.queue[1:]
	if len(b.queue) == 0 {
		b.queue = nil
	}
	return event, true
}

// dispatch delivers an event to every matching handler.
// A failing handler gets one redelivery; after that the error is logged
// and swallowed. Trigger failures never propagate to the caller that
// performed the original mutation.
func (b *Bus) dispatch(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[subKey{collection: event.Collection, kind: event.Kind}]
	b.mu.RUnlock()

	for _, handler := range handlers {
		err := handler(ctx, event)
		if err == nil {
			continue
		}

		// One redelivery, then give up.
		if err = handler(ctx, event); err != nil && b.logger != nil {
			b.logger.Error("trigger failed after redelivery",
				"collection", event.Collection,
				"kind", event.Kind,
				"id", event.ID,
				"error", err,
			)
		}
	}
}

// Drain blocks until every emitted event (including events emitted by
// handlers while draining) has been dispatched. Intended for tests and
// graceful shutdown.
func (b *Bus) Drain() {
	b.pending.Wait()
}

// Shutdown drains outstanding events and stops accepting new ones.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.shutdownMu.Lock()
	b.shutdown = true
	b.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		b.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
