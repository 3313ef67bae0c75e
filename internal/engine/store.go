// Package engine implements the adaptive pathway routing engine: a directed
// weighted graph of processing stages whose edges are reinforced by use,
// decay with disuse, and steer a best-first router.
package engine

import (
	"sync"
	"time"

	"pathway-engine/internal/domain"
	"pathway-engine/internal/events"

	"go.uber.org/zap"
)

// DefaultMaxConnections caps total edge count so that self-healing and
// reverse-edge creation cannot grow the graph without bound.
const DefaultMaxConnections = 10000

// Store owns the pathway graph: stages keyed by name and directed weighted
// connections kept as an adjacency map guarded by a single reader/writer
// lock. All critical sections are short map mutations; nothing blocks on
// I/O under the lock.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*domain.Node
	// edges[source][target] -> connection owned by its source node.
	edges     map[string]map[string]*domain.Connection
	edgeCount int
	maxEdges  int

	bus    *events.Bus
	logger *zap.Logger

	onCreated func()

	now func() time.Time
}

// NewStore creates an empty pathway store. maxEdges <= 0 falls back to
// DefaultMaxConnections.
func NewStore(maxEdges int, bus *events.Bus, logger *zap.Logger) *Store {
	if maxEdges <= 0 {
		maxEdges = DefaultMaxConnections
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		nodes:    make(map[string]*domain.Node),
		edges:    make(map[string]map[string]*domain.Connection),
		maxEdges: maxEdges,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// OnCreated registers a hook invoked once per created connection batch.
func (s *Store) OnCreated(fn func()) {
	s.onCreated = fn
}

// CreateConnection idempotently ensures source and each target exist as
// stages, sets the forward edge to strength and the reverse edge to
// strength×0.5, and emits a pathway-created event. Re-creating a connection
// resets its strength (last write wins); no error is raised for duplicates.
// Out-of-range strengths are clamped.
func (s *Store) CreateConnection(source string, targets []string, strength float64) {
	strength = domain.ClampStrength(strength)

	s.mu.Lock()
	s.ensureNodeLocked(source)
	for _, target := range targets {
		s.ensureNodeLocked(target)
		s.setEdgeLocked(source, target, strength)
		s.setEdgeLocked(target, source, strength*domain.ReverseStrengthFactor)
	}
	now := s.now()
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(domain.NewPathwayCreatedEvent(source, targets, now))
	}
	if s.onCreated != nil {
		s.onCreated()
	}
}

// Connection returns a copy of the edge from source to target.
// ErrNodeNotFound is returned when either stage was never created,
// ErrConnectionNotFound when the stages exist but the edge does not.
func (s *Store) Connection(source, target string) (domain.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[source]; !ok {
		return domain.Connection{}, domain.ErrNodeNotFound
	}
	if _, ok := s.nodes[target]; !ok {
		return domain.Connection{}, domain.ErrNodeNotFound
	}
	conn, ok := s.edges[source][target]
	if !ok {
		return domain.Connection{}, domain.ErrConnectionNotFound
	}
	return *conn, nil
}

// HasNode reports whether a stage exists.
func (s *Store) HasNode(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[name]
	return ok
}

// NodeCount returns the number of stages.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// ConnectionCount returns the number of directed edges.
func (s *Store) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgeCount
}

// Health returns the ratio of edges with strength above the strong threshold
// to total edges. An empty graph is healthy by default (1.0) rather than a
// division by zero.
func (s *Store) Health() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.edgeCount == 0 {
		return 1.0
	}
	strong := 0
	for _, targets := range s.edges {
		for _, conn := range targets {
			if conn.Strong() {
				strong++
			}
		}
	}
	return float64(strong) / float64(s.edgeCount)
}

// Nodes returns a copy of the stage table, used for snapshot export.
func (s *Store) Nodes() []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	return out
}

// Connections returns a copy of every edge, used for snapshot export and the
// read-only status surface.
func (s *Store) Connections() []domain.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Connection, 0, s.edgeCount)
	for _, targets := range s.edges {
		for _, conn := range targets {
			out = append(out, *conn)
		}
	}
	return out
}

// Restore replaces the graph verbatim from snapshot data, preserving
// strengths, timestamps and use counts.
func (s *Store) Restore(nodes []domain.Node, conns []domain.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*domain.Node, len(nodes))
	for _, n := range nodes {
		node := n
		s.nodes[n.Name] = &node
	}
	s.edges = make(map[string]map[string]*domain.Connection, len(nodes))
	s.edgeCount = 0
	for _, c := range conns {
		conn := c
		conn.Strength = domain.ClampStrength(conn.Strength)
		if s.edges[conn.Source] == nil {
			s.edges[conn.Source] = make(map[string]*domain.Connection)
		}
		if _, exists := s.edges[conn.Source][conn.Target]; !exists {
			s.edgeCount++
		}
		s.edges[conn.Source][conn.Target] = &conn
	}
}

// neighbors returns the routable outgoing edges of a stage. Caller must hold
// at least the read lock.
func (s *Store) neighborsLocked(source string) []*domain.Connection {
	targets := s.edges[source]
	if len(targets) == 0 {
		return nil
	}
	out := make([]*domain.Connection, 0, len(targets))
	for _, conn := range targets {
		if conn.Routable() {
			out = append(out, conn)
		}
	}
	return out
}

// ensureNodeLocked lazily creates a stage on first reference. Caller must
// hold the write lock.
func (s *Store) ensureNodeLocked(name string) {
	if _, ok := s.nodes[name]; !ok {
		s.nodes[name] = &domain.Node{Name: name, CreatedAt: s.now()}
	}
}

// setEdgeLocked sets or overwrites a directed edge. When a brand-new edge
// would exceed the cap, the weakest existing edge is evicted first. Caller
// must hold the write lock.
func (s *Store) setEdgeLocked(source, target string, strength float64) {
	if s.edges[source] == nil {
		s.edges[source] = make(map[string]*domain.Connection)
	}
	if existing, ok := s.edges[source][target]; ok {
		existing.Strength = domain.ClampStrength(strength)
		return
	}

	if s.edgeCount >= s.maxEdges {
		s.evictWeakestLocked()
	}

	s.edges[source][target] = domain.NewConnection(source, target, strength, s.now())
	s.edgeCount++
}

// evictWeakestLocked removes the lowest-strength edge to make room under the
// connection cap. Caller must hold the write lock.
func (s *Store) evictWeakestLocked() {
	var weakest *domain.Connection
	for _, targets := range s.edges {
		for _, conn := range targets {
			if weakest == nil || conn.Strength < weakest.Strength {
				weakest = conn
			}
		}
	}
	if weakest == nil {
		return
	}
	delete(s.edges[weakest.Source], weakest.Target)
	s.edgeCount--
	s.logger.Warn("connection cap reached, evicted weakest edge",
		zap.String("source", weakest.Source),
		zap.String("target", weakest.Target),
		zap.Float64("strength", weakest.Strength),
	)
}
