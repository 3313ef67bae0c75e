package engine

import (
	"context"
	"time"

	"pathway-engine/internal/cache"
	"pathway-engine/internal/domain"
	"pathway-engine/internal/events"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options carries the engine's routing policy. Zero values fall back to the
// documented defaults.
type Options struct {
	// OriginRoutes maps an interaction's origin tag to its start stage.
	OriginRoutes map[string]string

	// DefaultStart handles origin tags missing from OriginRoutes.
	DefaultStart string

	// DefaultTarget handles interactions without an explicit target.
	DefaultTarget string

	// AutoHeal controls self-healing edge creation on unreachable pairs.
	AutoHeal bool

	// MaxConnections caps total edge count.
	MaxConnections int

	// EventBuffer is the per-subscriber pending-event capacity.
	EventBuffer int

	// CacheCapacity bounds the lookup cache.
	CacheCapacity int

	Breaker BreakerSettings
}

// DefaultOptions returns the routing policy used when configuration does not
// override it. The default stage set mirrors the system's processing tiers.
func DefaultOptions() Options {
	return Options{
		OriginRoutes: map[string]string{
			"user":   "gateway",
			"memory": "memory",
			"query":  "thinking",
			"agent":  "agent",
			"tool":   "mcp",
			"shadow": "shadow",
		},
		DefaultStart:   "gateway",
		DefaultTarget:  "memory",
		AutoHeal:       true,
		MaxConnections: DefaultMaxConnections,
		EventBuffer:    events.DefaultBufferSize,
		CacheCapacity:  cache.DefaultCapacity,
		Breaker:        DefaultBreakerSettings(),
	}
}

// Engine is the adaptive pathway routing engine facade. A single instance
// owns the entire graph in memory; the pathway map, lookup cache and usage
// statistics each sit behind their own reader/writer lock so a cache lookup
// never blocks a graph mutation.
type Engine struct {
	opts       Options
	store      *Store
	finder     *Finder
	plasticity *Plasticity
	processor  *Processor
	stats      *Stats
	cache      *cache.Cache
	bus        *events.Bus
	logger     *zap.Logger
}

// New assembles an engine from its parts. Pass nil for bus or logger to get
// working defaults.
func New(opts Options, bus *events.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bus == nil {
		bus = events.NewBus(opts.EventBuffer, logger)
	}
	if opts.DefaultStart == "" {
		opts.DefaultStart = "gateway"
	}
	if opts.DefaultTarget == "" {
		opts.DefaultTarget = "memory"
	}

	store := NewStore(opts.MaxConnections, bus, logger)
	return &Engine{
		opts:       opts,
		store:      store,
		finder:     NewFinder(store, opts.AutoHeal, logger),
		plasticity: NewPlasticity(store, logger),
		processor:  NewProcessor(opts.Breaker, bus, logger),
		stats:      NewStats(),
		cache:      cache.New(opts.CacheCapacity),
		bus:        bus,
		logger:     logger,
	}
}

// ProcessInteraction routes one unit of work: the origin tag picks the start
// stage, the finder resolves a route over the current graph, each stage on
// the route processes the payload, and the traversed edges are reinforced.
// With self-healing enabled (the default) routing has no failure mode
// visible to callers.
func (e *Engine) ProcessInteraction(ctx context.Context, interaction domain.Interaction) (domain.Result, error) {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}

	tracer := otel.Tracer("pathway-engine")
	ctx, span := tracer.Start(ctx, "engine.ProcessInteraction")
	span.SetAttributes(
		attribute.String("interaction.id", interaction.ID),
		attribute.String("interaction.origin", interaction.Origin),
	)
	defer span.End()

	start := e.startStage(interaction.Origin)
	goal := interaction.Target
	if goal == "" {
		goal = e.opts.DefaultTarget
	}

	began := time.Now()
	path, err := e.finder.FindPath(start, goal)
	if err != nil {
		// Only reachable with auto-healing disabled.
		span.RecordError(err)
		return domain.Result{}, err
	}

	data := []byte(interaction.Payload)
	for _, node := range path {
		data = e.processor.Process(ctx, node, data)
	}

	e.plasticity.StrengthenPath(path)

	elapsed := time.Since(began)
	e.stats.Record(path, elapsed)

	e.logger.Debug("interaction processed",
		zap.String("interaction_id", interaction.ID),
		zap.String("path", path.String()),
		zap.Duration("elapsed", elapsed),
	)

	return domain.Result{
		InteractionID: interaction.ID,
		Path:          path,
		Output:        data,
		Elapsed:       elapsed,
	}, nil
}

// startStage resolves an origin tag to its start stage.
func (e *Engine) startStage(origin string) string {
	if stage, ok := e.opts.OriginRoutes[origin]; ok {
		return stage
	}
	return e.opts.DefaultStart
}

// RegisterHandler binds a processing handler to a stage name.
func (e *Engine) RegisterHandler(node string, handler Handler) {
	e.processor.Register(node, handler)
}

// CreateConnection is the administrative entry point for seeding topology.
func (e *Engine) CreateConnection(source string, targets []string, strength float64) {
	e.store.CreateConnection(source, targets, strength)
}

// Connection returns a copy of one edge, or a not-found error.
func (e *Engine) Connection(source, target string) (domain.Connection, error) {
	return e.store.Connection(source, target)
}

// Health returns the ratio of strong edges to total edges (1.0 when empty).
func (e *Engine) Health() float64 {
	return e.store.Health()
}

// Subscribe attaches an event-stream consumer.
func (e *Engine) Subscribe() *events.Subscription {
	return e.bus.Subscribe()
}

// Unsubscribe detaches an event-stream consumer.
func (e *Engine) Unsubscribe(id uuid.UUID) {
	e.bus.Unsubscribe(id)
}

// CachePut stores a resolved component under an external lookup key.
func (e *Engine) CachePut(key, component string) {
	e.cache.Put(key, component)
}

// CacheGet resolves an external lookup key, if cached.
func (e *Engine) CacheGet(key string) (string, bool) {
	return e.cache.Get(key)
}

// DecayCycle runs one decay pass immediately. Normally decay runs on the
// background loop; this is the administrative and test entry point.
func (e *Engine) DecayCycle() int {
	return e.plasticity.DecayCycle()
}

// RunDecayLoop runs periodic decay until ctx is cancelled.
func (e *Engine) RunDecayLoop(ctx context.Context, interval time.Duration) {
	e.plasticity.RunDecayLoop(ctx, interval)
}

// SetLearningParameters retunes reinforcement and decay at runtime; zero
// values keep the current setting. Wired to the dynamic config watcher.
func (e *Engine) SetLearningParameters(strengthenDelta, decayRate float64, stalenessWindow time.Duration) {
	e.plasticity.SetParameters(strengthenDelta, decayRate, stalenessWindow)
}

// Status is the read-only state snapshot consumed by dashboards and the
// status endpoint.
type Status struct {
	Nodes       int                 `json:"nodes"`
	Connections int                 `json:"connections"`
	Health      float64             `json:"health"`
	CacheSize   int                 `json:"cache_size"`
	Subscribers int                 `json:"subscribers"`
	Stats       map[string]PathStat `json:"stats"`
}

// Status reports counts, health and usage statistics.
func (e *Engine) Status() Status {
	return Status{
		Nodes:       e.store.NodeCount(),
		Connections: e.store.ConnectionCount(),
		Health:      e.store.Health(),
		CacheSize:   e.cache.Len(),
		Subscribers: e.bus.SubscriberCount(),
		Stats:       e.stats.All(),
	}
}

// OnStrengthened registers a hook invoked once per strengthened edge.
// Wiring code uses it to drive metrics counters.
func (e *Engine) OnStrengthened(fn func()) {
	e.plasticity.OnStrengthened(fn)
}

// OnPruned registers a hook invoked once per pruned edge.
func (e *Engine) OnPruned(fn func()) {
	e.plasticity.OnPruned(fn)
}

// OnProcessed registers a hook invoked once per stage invocation.
func (e *Engine) OnProcessed(fn func(node string, elapsed time.Duration)) {
	e.processor.OnProcessed(fn)
}

// Store exposes the pathway store to wiring code and tests.
func (e *Engine) Store() *Store { return e.store }

// Cache exposes the lookup cache to wiring code and tests.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// Close releases the event channel and detaches all subscribers.
func (e *Engine) Close() {
	e.bus.Close()
}
