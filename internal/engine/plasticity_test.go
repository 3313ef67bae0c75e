package engine

import (
	"context"
	"testing"
	"time"

	"pathway-engine/internal/domain"
	"pathway-engine/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlasticity_StrengthenPath(t *testing.T) {
	store := NewStore(0, nil, nil)
	store.CreateConnection("A", []string{"B"}, 0.8)
	store.CreateConnection("B", []string{"C"}, 0.6)

	p := NewPlasticity(store, nil)
	p.StrengthenPath(domain.Path{"A", "B", "C"})

	ab, err := store.Connection("A", "B")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, ab.Strength, 1e-9)
	assert.Equal(t, uint64(1), ab.UseCount)

	bc, err := store.Connection("B", "C")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, bc.Strength, 1e-9)

	// Reverse edges are not on the traversed path and stay untouched.
	ba, err := store.Connection("B", "A")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, ba.Strength, 1e-9)
	assert.Equal(t, uint64(0), ba.UseCount)
}

func TestPlasticity_StrengthenClampsAtOne(t *testing.T) {
	store := NewStore(0, nil, nil)
	store.CreateConnection("A", []string{"B"}, 0.95)

	p := NewPlasticity(store, nil)
	for i := 0; i < 3; i++ {
		p.StrengthenPath(domain.Path{"A", "B"})
	}

	conn, err := store.Connection("A", "B")
	require.NoError(t, err)
	assert.Equal(t, 1.0, conn.Strength)
	assert.Equal(t, uint64(3), conn.UseCount)
}

func TestPlasticity_StrengthenSkipsMissingEdges(t *testing.T) {
	store := NewStore(0, nil, nil)
	store.CreateConnection("A", []string{"B"}, 0.8)

	p := NewPlasticity(store, nil)

	// C is not in the graph; the hop B→C is silently skipped.
	p.StrengthenPath(domain.Path{"A", "B", "C"})

	ab, err := store.Connection("A", "B")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, ab.Strength, 1e-9)
}

func TestPlasticity_StrengthenPublishesEvents(t *testing.T) {
	bus := events.NewBus(10, nil)
	store := NewStore(0, bus, nil)
	store.CreateConnection("A", []string{"B"}, 0.8)

	sub := bus.Subscribe()
	drain(sub) // skip the creation event

	p := NewPlasticity(store, nil)
	var strengthened int
	p.OnStrengthened(func() { strengthened++ })

	p.StrengthenPath(domain.Path{"A", "B"})

	event := <-sub.C
	assert.Equal(t, domain.EventPathwayStrengthened, event.Kind)
	assert.Equal(t, "A", event.Source)
	assert.Equal(t, "B", event.Target)
	assert.InDelta(t, 0.9, event.Strength, 1e-9)
	assert.Equal(t, 1, strengthened)
}

func TestPlasticity_DecayOnlyTouchesStaleEdges(t *testing.T) {
	store := NewStore(0, nil, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	store.CreateConnection("A", []string{"B"}, 0.8)
	store.CreateConnection("C", []string{"D"}, 0.8)

	// A→B was used recently; C→D has been idle past the window.
	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	p := NewPlasticity(store, nil)
	p.StrengthenPath(domain.Path{"A", "B"})

	pruned := p.DecayCycle()
	assert.Equal(t, 0, pruned)

	ab, err := store.Connection("A", "B")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, ab.Strength, 1e-9, "recently used edge must not decay")

	cd, err := store.Connection("C", "D")
	require.NoError(t, err)
	assert.InDelta(t, 0.8*0.99, cd.Strength, 1e-9)
}

func TestPlasticity_DecayPrunesBelowFloor(t *testing.T) {
	bus := events.NewBus(10, nil)
	store := NewStore(0, bus, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	store.CreateConnection("A", []string{"B"}, 0.101)

	sub := bus.Subscribe()
	drain(sub)

	p := NewPlasticity(store, nil)
	// Aggressive decay so one stale cycle drops both edges below the floor.
	p.SetParameters(0, 0.5, 0)
	var prunedHook int
	p.OnPruned(func() { prunedHook++ })

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	pruned := p.DecayCycle()

	assert.Equal(t, 2, pruned, "forward and reverse edge both prune")
	assert.Equal(t, 2, prunedHook)
	assert.Equal(t, 0, store.ConnectionCount())

	_, err := store.Connection("A", "B")
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)

	kinds := map[domain.EventKind]int{}
	for i := 0; i < 2; i++ {
		event := <-sub.C
		kinds[event.Kind]++
	}
	assert.Equal(t, 2, kinds[domain.EventPathwayPruned], "exactly one pruned event per removed edge")
}

func TestPlasticity_SetParametersIgnoresZeroes(t *testing.T) {
	p := NewPlasticity(NewStore(0, nil, nil), nil)

	p.SetParameters(0.2, 0, 0)
	assert.Equal(t, 0.2, p.strengthenDelta)
	assert.Equal(t, DefaultDecayRate, p.decayRate)
	assert.Equal(t, DefaultStalenessWindow, p.stalenessWindow)
}

func TestPlasticity_RunDecayLoopStopsOnCancel(t *testing.T) {
	p := NewPlasticity(NewStore(0, nil, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.RunDecayLoop(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("decay loop did not stop on context cancel")
	}
}

// drain empties any buffered events from a subscription without blocking.
func drain(sub *events.Subscription) {
	for {
		select {
		case <-sub.C:
		default:
			return
		}
	}
}
