// Package http wires the engine's administrative and observability API:
// routing, topology seeding, cache access, snapshots and the event stream.
package http

import (
	"net/http"

	"pathway-engine/internal/config"
	"pathway-engine/internal/engine"
	"pathway-engine/internal/interfaces/http/handlers"
	"pathway-engine/internal/interfaces/http/middleware"
	"pathway-engine/internal/observability"
	"pathway-engine/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router.
type Router struct {
	engine  *engine.Engine
	cfg     *config.Config
	metrics *observability.Collector
	tokens  *auth.TokenService
	logger  *zap.Logger
}

// NewRouter creates a new router instance. tokens may be nil when
// authentication is disabled.
func NewRouter(
	eng *engine.Engine,
	cfg *config.Config,
	metrics *observability.Collector,
	tokens *auth.TokenService,
	logger *zap.Logger,
) *Router {
	return &Router{
		engine:  eng,
		cfg:     cfg,
		metrics: metrics,
		tokens:  tokens,
		logger:  logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(rt.engine)
	router.Get("/health", healthHandler.Health)
	router.Get("/ready", healthHandler.Ready)
	router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CircuitBreaker("api", engine.DefaultBreakerSettings(), rt.logger))

		if rt.tokens != nil {
			authHandler := handlers.NewAuthHandler(rt.tokens, rt.cfg.Auth.Secret, rt.logger)
			r.Post("/auth/token", authHandler.IssueToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens, rt.logger))

			engineHandler := handlers.NewEngineHandler(rt.engine, rt.metrics, rt.logger)
			r.Post("/interactions", engineHandler.ProcessInteraction)

			r.Route("/connections", func(r chi.Router) {
				r.Post("/", engineHandler.CreateConnection)
				r.Get("/{source}/{target}", engineHandler.GetConnection)
			})

			r.Get("/status", engineHandler.Status)

			r.Route("/cache", func(r chi.Router) {
				r.Post("/", engineHandler.CachePut)
				r.Get("/{key}", engineHandler.CacheGet)
			})

			r.Route("/snapshot", func(r chi.Router) {
				r.Get("/", engineHandler.ExportSnapshot)
				r.Post("/", engineHandler.ImportSnapshot)
			})

			eventsHandler := handlers.NewEventsHandler(rt.engine, rt.logger)
			r.Get("/events", eventsHandler.Stream)
		})
	})

	return router
}
