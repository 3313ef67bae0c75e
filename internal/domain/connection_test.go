package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConnection_ClampsStrength(t *testing.T) {
	now := time.Now()

	t.Run("AboveRange", func(t *testing.T) {
		conn := NewConnection("a", "b", 1.7, now)
		assert.Equal(t, 1.0, conn.Strength)
	})

	t.Run("BelowRange", func(t *testing.T) {
		conn := NewConnection("a", "b", -0.3, now)
		assert.Equal(t, 0.0, conn.Strength)
	})

	t.Run("InRange", func(t *testing.T) {
		conn := NewConnection("a", "b", 0.42, now)
		assert.Equal(t, 0.42, conn.Strength)
	})
}

func TestConnection_Strengthen(t *testing.T) {
	now := time.Now()
	conn := NewConnection("a", "b", 0.8, now)

	later := now.Add(time.Minute)
	conn.Strengthen(0.1, later)

	assert.InDelta(t, 0.9, conn.Strength, 1e-9)
	assert.Equal(t, uint64(1), conn.UseCount)
	assert.Equal(t, later, conn.LastUsed)

	t.Run("ClampsAtOne", func(t *testing.T) {
		conn.Strengthen(0.5, later)
		assert.Equal(t, 1.0, conn.Strength)
		assert.Equal(t, uint64(2), conn.UseCount)
	})
}

func TestConnection_Decay(t *testing.T) {
	conn := NewConnection("a", "b", 0.5, time.Now())

	conn.Decay(0.01)
	assert.InDelta(t, 0.495, conn.Strength, 1e-9)

	t.Run("NeverNegative", func(t *testing.T) {
		conn.Decay(1.0)
		assert.Equal(t, 0.0, conn.Strength)
	})
}

func TestConnection_TraversalCost(t *testing.T) {
	now := time.Now()

	strong := NewConnection("a", "b", 0.8, now)
	assert.InDelta(t, 1.25, strong.TraversalCost(), 1e-9)

	// The cost floor prevents blow-up on near-zero edges.
	weak := NewConnection("a", "b", 0.01, now)
	assert.InDelta(t, 10.0, weak.TraversalCost(), 1e-9)
}

func TestConnection_Routable(t *testing.T) {
	now := time.Now()

	assert.False(t, NewConnection("a", "b", 0.1, now).Routable())
	assert.False(t, NewConnection("a", "b", 0.05, now).Routable())
	assert.True(t, NewConnection("a", "b", 0.11, now).Routable())
}

func TestConnection_StaleSince(t *testing.T) {
	created := time.Now()
	conn := NewConnection("a", "b", 0.5, created)

	assert.False(t, conn.StaleSince(created.Add(30*time.Minute), time.Hour))
	assert.True(t, conn.StaleSince(created.Add(2*time.Hour), time.Hour))
}
