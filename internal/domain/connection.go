package domain

import (
	"time"
)

// Tunable defaults for pathway learning. These mirror the engine's
// configuration defaults; config may override all of them at runtime.
const (
	// DefaultSeedStrength is the strength given to a self-healed edge
	// created when routing finds no existing path.
	DefaultSeedStrength = 0.5

	// ReverseStrengthFactor scales the reverse edge created alongside a
	// forward connection, keeping the graph traversable both ways without
	// requiring symmetric learning.
	ReverseStrengthFactor = 0.5

	// DefaultStrengthenDelta is added to an edge's strength on traversal.
	DefaultStrengthenDelta = 0.1

	// MinRoutableStrength is the floor below which an edge is ignored by
	// the path finder and eventually pruned by decay.
	MinRoutableStrength = 0.1

	// StrongConnectionThreshold separates "healthy" edges when computing
	// overall graph health.
	StrongConnectionThreshold = 0.5
)

// Connection is a directed, weighted pathway between two stages.
// Strength is always kept within [0.0, 1.0]; it grows with use and decays
// with disuse. A connection with UseCount > 0 always has LastUsed set to the
// time of its most recent traversal.
type Connection struct {
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Strength float64   `json:"strength"`
	LastUsed time.Time `json:"last_used"`
	UseCount uint64    `json:"use_count"`
}

// NewConnection creates a connection with a clamped strength. Out-of-range
// strengths are clamped rather than rejected; callers relying on strict
// validation must check beforehand.
func NewConnection(source, target string, strength float64, now time.Time) *Connection {
	return &Connection{
		Source:   source,
		Target:   target,
		Strength: ClampStrength(strength),
		LastUsed: now,
	}
}

// Strengthen reinforces the connection after a successful traversal.
func (c *Connection) Strengthen(delta float64, now time.Time) {
	c.Strength = ClampStrength(c.Strength + delta)
	c.UseCount++
	c.LastUsed = now
}

// Decay weakens the connection by a multiplicative rate in [0, 1].
func (c *Connection) Decay(rate float64) {
	c.Strength = ClampStrength(c.Strength * (1 - rate))
}

// TraversalCost converts strength into a search cost: strong pathways are
// cheap. The 0.1 floor prevents division blow-up on near-zero edges.
func (c *Connection) TraversalCost() float64 {
	s := c.Strength
	if s < MinRoutableStrength {
		s = MinRoutableStrength
	}
	return 1 / s
}

// Routable reports whether the connection is strong enough for the path
// finder to consider at all, independent of the cost floor.
func (c *Connection) Routable() bool {
	return c.Strength > MinRoutableStrength
}

// Strong reports whether the connection counts toward graph health.
func (c *Connection) Strong() bool {
	return c.Strength > StrongConnectionThreshold
}

// StaleSince reports whether the connection has gone unused for longer than
// the given window as of now.
func (c *Connection) StaleSince(now time.Time, window time.Duration) bool {
	return now.Sub(c.LastUsed) > window
}

// ClampStrength bounds a strength value to [0.0, 1.0].
func ClampStrength(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
