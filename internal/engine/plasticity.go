package engine

import (
	"context"
	"sync"
	"time"

	"pathway-engine/internal/domain"

	"go.uber.org/zap"
)

// Defaults for reinforcement and decay, overridable through configuration
// and tunable at runtime via the dynamic config watcher.
const (
	DefaultStalenessWindow = time.Hour
	DefaultDecayRate       = 0.01
	DefaultDecayInterval   = time.Minute
)

// Plasticity reinforces pathways on successful traversal and periodically
// weakens and prunes the ones that go unused. Traversal itself is the
// reinforcement signal; there is no separate reward channel.
type Plasticity struct {
	store  *Store
	logger *zap.Logger

	// Runtime-tunable parameters, guarded separately from the store lock so
	// a config reload never contends with routing.
	mu              sync.RWMutex
	strengthenDelta float64
	stalenessWindow time.Duration
	decayRate       float64

	onStrengthened func()
	onPruned       func()
}

// NewPlasticity creates the reinforcement and decay engine over a store.
func NewPlasticity(store *Store, logger *zap.Logger) *Plasticity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Plasticity{
		store:           store,
		logger:          logger,
		strengthenDelta: domain.DefaultStrengthenDelta,
		stalenessWindow: DefaultStalenessWindow,
		decayRate:       DefaultDecayRate,
	}
}

// SetParameters replaces the runtime-tunable learning parameters. Zero
// values leave the current setting untouched.
func (p *Plasticity) SetParameters(strengthenDelta, decayRate float64, stalenessWindow time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strengthenDelta > 0 {
		p.strengthenDelta = strengthenDelta
	}
	if decayRate > 0 {
		p.decayRate = decayRate
	}
	if stalenessWindow > 0 {
		p.stalenessWindow = stalenessWindow
	}
}

// OnStrengthened registers a hook invoked once per strengthened edge.
func (p *Plasticity) OnStrengthened(fn func()) { p.onStrengthened = fn }

// OnPruned registers a hook invoked once per pruned edge.
func (p *Plasticity) OnPruned(fn func()) { p.onPruned = fn }

// StrengthenPath reinforces every adjacent hop along a traversed path:
// strength grows by the configured delta (clamped to 1.0), the use count
// increments and last-used refreshes. Hops without a stored edge are
// silently skipped; the finder is expected to have materialized them.
func (p *Plasticity) StrengthenPath(path domain.Path) {
	p.mu.RLock()
	delta := p.strengthenDelta
	p.mu.RUnlock()

	type strengthened struct {
		source, target string
		strength       float64
	}
	var reinforced []strengthened

	p.store.mu.Lock()
	now := p.store.now()
	for _, pair := range path.Pairs() {
		conn, ok := p.store.edges[pair[0]][pair[1]]
		if !ok {
			continue
		}
		conn.Strengthen(delta, now)
		reinforced = append(reinforced, strengthened{pair[0], pair[1], conn.Strength})
	}
	p.store.mu.Unlock()

	for _, r := range reinforced {
		if p.store.bus != nil {
			p.store.bus.Publish(domain.NewPathwayStrengthenedEvent(r.source, r.target, r.strength, now))
		}
		if p.onStrengthened != nil {
			p.onStrengthened()
		}
	}
}

// DecayCycle weakens every edge unused beyond the staleness window by the
// decay rate and removes any edge whose strength falls below the routable
// floor, emitting one pruned event per removal. Returns the number of
// pruned edges.
func (p *Plasticity) DecayCycle() int {
	p.mu.RLock()
	window := p.stalenessWindow
	rate := p.decayRate
	p.mu.RUnlock()

	type prunedEdge struct{ source, target string }
	var pruned []prunedEdge

	p.store.mu.Lock()
	now := p.store.now()
	for source, targets := range p.store.edges {
		for target, conn := range targets {
			if !conn.StaleSince(now, window) {
				continue
			}
			conn.Decay(rate)
			if conn.Strength < domain.MinRoutableStrength {
				delete(targets, target)
				p.store.edgeCount--
				pruned = append(pruned, prunedEdge{source, target})
			}
		}
	}
	p.store.mu.Unlock()

	for _, e := range pruned {
		if p.store.bus != nil {
			p.store.bus.Publish(domain.NewPathwayPrunedEvent(e.source, e.target, now))
		}
		if p.onPruned != nil {
			p.onPruned()
		}
		p.logger.Info("pruned stale pathway",
			zap.String("source", e.source),
			zap.String("target", e.target),
		)
	}
	return len(pruned)
}

// RunDecayLoop runs DecayCycle at the given interval until the context is
// cancelled. The write lock is only held while iterating and mutating, never
// across the sleep, so foreground routing is not starved.
func (p *Plasticity) RunDecayLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultDecayInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.DecayCycle(); n > 0 {
				p.logger.Debug("decay cycle complete", zap.Int("pruned", n))
			}
		}
	}
}
