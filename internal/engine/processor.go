package engine

import (
	"context"
	"sync"
	"time"

	"pathway-engine/internal/domain"
	"pathway-engine/internal/events"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Handler is the opaque per-stage processing capability. The engine never
// interprets the payload; it only carries it from stage to stage.
type Handler interface {
	Handle(ctx context.Context, data []byte) ([]byte, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, data []byte) ([]byte, error)

// Handle invokes the function.
func (f HandlerFunc) Handle(ctx context.Context, data []byte) ([]byte, error) {
	return f(ctx, data)
}

// BreakerSettings configures the per-handler circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings returns the breaker defaults used when the
// configuration does not override them.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// registeredHandler pairs a handler with its circuit breaker.
type registeredHandler struct {
	handler Handler
	breaker *gobreaker.CircuitBreaker
}

// Processor invokes the registered handler for each stage on a route. A
// stage with no registered handler passes data through unchanged, so new,
// as-yet-unimplemented stage types never break a route. Handler failures and
// open breakers degrade to the same identity pass-through: routing never
// fails on a bad stage.
type Processor struct {
	mu       sync.RWMutex
	handlers map[string]*registeredHandler

	settings BreakerSettings
	bus      *events.Bus
	logger   *zap.Logger

	onProcessed func(node string, elapsed time.Duration)

	now func() time.Time
}

// NewProcessor creates a stage processor publishing node-processed events on
// the given bus.
func NewProcessor(settings BreakerSettings, bus *events.Bus, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		handlers: make(map[string]*registeredHandler),
		settings: settings,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// Register binds a handler to a stage name, wrapped in its own circuit
// breaker. Handlers are resolved once at startup; re-registering replaces
// the previous handler and resets its breaker.
func (p *Processor) Register(node string, handler Handler) {
	settings := p.settings
	logger := p.logger

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        node,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("stage handler breaker state changed",
				zap.String("stage", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[node] = &registeredHandler{handler: handler, breaker: cb}
}

// OnProcessed registers a hook invoked once per stage invocation with the
// elapsed time. Wiring code uses it to drive the per-stage histogram.
func (p *Processor) OnProcessed(fn func(node string, elapsed time.Duration)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProcessed = fn
}

// Registered reports whether a stage has a handler bound.
func (p *Processor) Registered(node string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.handlers[node]
	return ok
}

// Process runs one stage over the payload and returns its output. Every
// invocation emits a node-processed event with the elapsed time, handler or
// not.
func (p *Processor) Process(ctx context.Context, node string, data []byte) []byte {
	start := p.now()

	p.mu.RLock()
	reg, ok := p.handlers[node]
	p.mu.RUnlock()

	out := data
	if ok {
		result, err := reg.breaker.Execute(func() (interface{}, error) {
			return reg.handler.Handle(ctx, data)
		})
		if err != nil {
			// Identity pass-through keeps the route alive; the breaker
			// tracks the failure.
			p.logger.Warn("stage handler failed, passing data through",
				zap.String("stage", node),
				zap.Error(err),
			)
		} else if b, castOK := result.([]byte); castOK {
			out = b
		}
	}

	elapsed := p.now().Sub(start)
	if p.bus != nil {
		p.bus.Publish(domain.NewNodeProcessedEvent(node, elapsed, p.now()))
	}
	if p.onProcessed != nil {
		p.onProcessed(node, elapsed)
	}
	return out
}
