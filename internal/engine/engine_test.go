package engine

import (
	"context"
	"encoding/json"
	"testing"

	"pathway-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(DefaultOptions(), nil, nil)
	t.Cleanup(e.Close)
	return e
}

func TestEngine_ProcessInteractionReinforcesRoute(t *testing.T) {
	e := newTestEngine(t)
	e.CreateConnection("gateway", []string{"thinking"}, 0.8)
	e.CreateConnection("thinking", []string{"memory"}, 0.6)

	result, err := e.ProcessInteraction(context.Background(), domain.Interaction{
		Origin:  "user",
		Payload: json.RawMessage(`{"query":"remember this"}`),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.InteractionID)
	assert.Equal(t, domain.Path{"gateway", "thinking", "memory"}, result.Path)
	assert.Equal(t, `{"query":"remember this"}`, string(result.Output))

	first, err := e.Connection("gateway", "thinking")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, first.Strength, 1e-9)
	assert.Equal(t, uint64(1), first.UseCount)

	second, err := e.Connection("thinking", "memory")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, second.Strength, 1e-9)

	stat, ok := e.Status().Stats["gateway → thinking → memory"]
	require.True(t, ok)
	assert.Equal(t, uint64(1), stat.Count)
}

func TestEngine_OriginRouting(t *testing.T) {
	e := newTestEngine(t)
	e.CreateConnection("thinking", []string{"memory"}, 0.8)

	result, err := e.ProcessInteraction(context.Background(), domain.Interaction{
		Origin: "query",
	})
	require.NoError(t, err)
	assert.Equal(t, "thinking", result.Path[0])

	// Unknown origins fall back to the default start stage.
	result, err = e.ProcessInteraction(context.Background(), domain.Interaction{
		Origin: "something_else",
	})
	require.NoError(t, err)
	assert.Equal(t, "gateway", result.Path[0])
}

func TestEngine_SelfHealsOnEmptyGraph(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.ProcessInteraction(context.Background(), domain.Interaction{
		Origin: "user",
		Target: "memory",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Path{"gateway", "memory"}, result.Path)

	// The healed edge starts at seed strength and was reinforced once.
	conn, err := e.Connection("gateway", "memory")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, conn.Strength, 1e-9)
}

func TestEngine_NoRouteWithoutAutoHeal(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoHeal = false
	e := New(opts, nil, nil)
	t.Cleanup(e.Close)

	_, err := e.ProcessInteraction(context.Background(), domain.Interaction{
		Origin: "user",
		Target: "memory",
	})
	assert.ErrorIs(t, err, domain.ErrNoRoute)
}

func TestEngine_HandlersRunInPathOrder(t *testing.T) {
	e := newTestEngine(t)
	e.CreateConnection("gateway", []string{"memory"}, 0.8)

	e.RegisterHandler("gateway", HandlerFunc(func(_ context.Context, data []byte) ([]byte, error) {
		return append(data, 'g'), nil
	}))
	e.RegisterHandler("memory", HandlerFunc(func(_ context.Context, data []byte) ([]byte, error) {
		return append(data, 'm'), nil
	}))

	result, err := e.ProcessInteraction(context.Background(), domain.Interaction{
		Origin:  "user",
		Payload: json.RawMessage("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "xgm", string(result.Output))
}

func TestEngine_EmitsEventsDuringProcessing(t *testing.T) {
	e := newTestEngine(t)
	e.CreateConnection("gateway", []string{"memory"}, 0.8)

	sub := e.Subscribe()
	defer e.Unsubscribe(sub.ID)

	_, err := e.ProcessInteraction(context.Background(), domain.Interaction{Origin: "user"})
	require.NoError(t, err)

	kinds := map[domain.EventKind]int{}
	for i := 0; i < 3; i++ {
		event := <-sub.C
		kinds[event.Kind]++
	}
	assert.Equal(t, 2, kinds[domain.EventNodeProcessed])
	assert.Equal(t, 1, kinds[domain.EventPathwayStrengthened])
}

func TestEngine_StatusCounts(t *testing.T) {
	e := newTestEngine(t)
	e.CreateConnection("a", []string{"b"}, 0.8)
	e.CachePut("req", "Comp")
	sub := e.Subscribe()
	defer e.Unsubscribe(sub.ID)

	status := e.Status()
	assert.Equal(t, 2, status.Nodes)
	assert.Equal(t, 2, status.Connections)
	assert.Equal(t, 1, status.CacheSize)
	assert.Equal(t, 1, status.Subscribers)
	assert.InDelta(t, 0.5, status.Health, 1e-9)
}

func TestEngine_CachePassThrough(t *testing.T) {
	e := newTestEngine(t)

	e.CachePut("req1", "ResolvedComponent")

	component, ok := e.CacheGet("req1")
	require.True(t, ok)
	assert.Equal(t, "ResolvedComponent", component)

	_, ok = e.CacheGet("absent")
	assert.False(t, ok)
}

func TestEngine_SnapshotRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	e.CreateConnection("gateway", []string{"memory"}, 0.8)
	e.CachePut("req", "Comp")
	_, err := e.ProcessInteraction(context.Background(), domain.Interaction{Origin: "user"})
	require.NoError(t, err)

	snap := e.ExportSnapshot()

	// Snapshots must survive the JSON round trip used by the HTTP surface.
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored := newTestEngine(t)
	restored.ImportSnapshot(decoded)

	origConn, err := e.Connection("gateway", "memory")
	require.NoError(t, err)
	restoredConn, err := restored.Connection("gateway", "memory")
	require.NoError(t, err)
	assert.Equal(t, origConn.Strength, restoredConn.Strength)
	assert.Equal(t, origConn.UseCount, restoredConn.UseCount)
	assert.True(t, origConn.LastUsed.Equal(restoredConn.LastUsed))

	component, ok := restored.CacheGet("req")
	require.True(t, ok)
	assert.Equal(t, "Comp", component)

	assert.Equal(t, e.Status().Stats, restored.Status().Stats)
}
