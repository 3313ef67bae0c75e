// Package events provides the engine's publish/subscribe channel: a bounded
// multi-subscriber broadcast with an explicit drop policy, so that a slow or
// absent subscriber never blocks routing.
package events

import (
	"sync"

	"pathway-engine/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBufferSize is the per-subscriber pending-event capacity.
const DefaultBufferSize = 1000

// Subscription is one attached consumer. Events arrive on C until
// Unsubscribe or Close, after which C is closed.
type Subscription struct {
	ID uuid.UUID
	C  <-chan domain.Event

	ch chan domain.Event
}

// Bus fans events out to any number of subscribers. Publishing never blocks:
// when a subscriber's buffer is full the newest event is dropped for that
// subscriber (at-most-once, lossy under backpressure).
type Bus struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]chan domain.Event
	buffer  int
	closed  bool
	logger  *zap.Logger
	dropped func() // optional hook, used to count drops in metrics
}

// NewBus creates a bus with the given per-subscriber buffer size.
// A size <= 0 falls back to DefaultBufferSize.
func NewBus(buffer int, logger *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[uuid.UUID]chan domain.Event),
		buffer: buffer,
		logger: logger,
	}
}

// OnDrop registers a hook invoked once per dropped event, per subscriber.
func (b *Bus) OnDrop(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropped = fn
}

// Subscribe attaches a new consumer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.Event, b.buffer)
	if b.closed {
		close(ch)
		return &Subscription{ID: uuid.New(), C: ch, ch: ch}
	}

	id := uuid.New()
	b.subs[id] = ch
	return &Subscription{ID: id, C: ch, ch: ch}
}

// Unsubscribe detaches a consumer and closes its channel. Unknown ids are
// ignored.
func (b *Bus) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the event to every subscriber that has buffer room.
func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Buffer full: drop the newest event for this subscriber.
			if b.dropped != nil {
				b.dropped()
			}
			b.logger.Debug("event dropped for slow subscriber",
				zap.String("subscriber_id", id.String()),
				zap.String("kind", string(event.Kind)),
			)
		}
	}
}

// SubscriberCount returns the number of attached consumers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close detaches all subscribers and closes their channels. Publishing after
// Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
