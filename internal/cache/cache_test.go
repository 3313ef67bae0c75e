package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_PutAndGet(t *testing.T) {
	c := New(10)

	c.Put("req1", "Comp")

	component, ok := c.Get("req1")
	require.True(t, ok)
	assert.Equal(t, "Comp", component)

	entries := c.Entries()
	assert.Equal(t, uint64(1), entries["req1"].Hits)
}

func TestCache_MissHasNoSideEffects(t *testing.T) {
	c := New(10)

	_, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_PutOverwriteResetsHits(t *testing.T) {
	c := New(10)

	c.Put("key", "First")
	c.Get("key")
	c.Get("key")

	c.Put("key", "Second")

	component, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "Second", component)
	assert.Equal(t, uint64(1), c.Entries()["key"].Hits)
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := New(3)

	// Deterministic timestamps so "oldest" is unambiguous.
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	c.Put("first", "A")
	c.Put("second", "B")
	c.Put("third", "C")
	c.Put("fourth", "D")

	assert.Equal(t, 3, c.Len())

	_, ok := c.Get("first")
	assert.False(t, ok, "oldest entry should have been evicted")

	for _, key := range []string{"second", "third", "fourth"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %q should survive eviction", key)
	}
}

func TestCache_TenthHitRefreshesTimestamp(t *testing.T) {
	c := New(10)

	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	c.Put("key", "Comp")
	inserted := c.Entries()["key"].Timestamp

	for i := 0; i < 9; i++ {
		c.Get("key")
	}
	assert.Equal(t, inserted, c.Entries()["key"].Timestamp, "timestamp must not move before the 10th hit")

	c.Get("key")
	refreshed := c.Entries()["key"]
	assert.Equal(t, uint64(10), refreshed.Hits)
	assert.True(t, refreshed.Timestamp.After(inserted), "10th hit refreshes the timestamp")
}

func TestCache_CapacityPlusOneLeavesCapacityEntries(t *testing.T) {
	const capacity = 50
	c := New(capacity)

	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}

	for i := 0; i <= capacity; i++ {
		c.Put(fmt.Sprintf("key-%d", i), "comp")
	}

	assert.Equal(t, capacity, c.Len())
	_, ok := c.Get("key-0")
	assert.False(t, ok)
}

func TestCache_RestoreRoundTrip(t *testing.T) {
	c := New(10)
	c.Put("a", "CompA")
	c.Put("b", "CompB")
	c.Get("a")

	exported := c.Entries()

	fresh := New(10)
	fresh.Restore(exported)

	assert.Equal(t, exported, fresh.Entries())
}

func TestCache_Hooks(t *testing.T) {
	c := New(10)

	var hits, misses int
	c.OnHit(func() { hits++ })
	c.OnMiss(func() { misses++ })

	c.Put("key", "Comp")
	c.Get("key")
	c.Get("nope")

	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}
