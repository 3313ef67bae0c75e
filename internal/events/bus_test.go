package events

import (
	"testing"
	"time"

	"pathway-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(10, nil)

	first := bus.Subscribe()
	second := bus.Subscribe()
	require.Equal(t, 2, bus.SubscriberCount())

	event := domain.NewPathwayCreatedEvent("a", []string{"b"}, time.Now())
	bus.Publish(event)

	assert.Equal(t, event, <-first.C)
	assert.Equal(t, event, <-second.C)
}

func TestBus_PublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewBus(2, nil)

	var dropped int
	bus.OnDrop(func() { dropped++ })

	slow := bus.Subscribe()

	// Nobody reads from slow; the buffer holds 2 events, the rest drop.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			bus.Publish(domain.NewNodeProcessedEvent("stage", time.Millisecond, time.Now()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Equal(t, 3, dropped)
	assert.Len(t, slow.ch, 2)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(10, nil)

	sub := bus.Subscribe()
	bus.Unsubscribe(sub.ID)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, bus.SubscriberCount())

	// Unknown ids are ignored.
	bus.Unsubscribe(sub.ID)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(10, nil)
	sub := bus.Subscribe()

	bus.Close()

	_, open := <-sub.C
	assert.False(t, open)

	// Publishing and subscribing after close are harmless.
	bus.Publish(domain.NewPathwayPrunedEvent("a", "b", time.Now()))
	late := bus.Subscribe()
	_, open = <-late.C
	assert.False(t, open)
}
