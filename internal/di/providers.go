// Package di wires the engine, its observability and the HTTP tier together
// for the API binary. Providers are composed by Wire; see wire.go and the
// generated wire_gen.go.
package di

import (
	nethttp "net/http"
	"time"

	"pathway-engine/internal/config"
	"pathway-engine/internal/engine"
	"pathway-engine/internal/events"
	httpiface "pathway-engine/internal/interfaces/http"
	"pathway-engine/internal/observability"
	"pathway-engine/pkg/auth"

	"go.uber.org/zap"
)

// Container holds the assembled application.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector
	Bus     *events.Bus
	Engine  *engine.Engine
	Tokens  *auth.TokenService
	Router  nethttp.Handler
}

func newContainer(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Collector,
	bus *events.Bus,
	eng *engine.Engine,
	tokens *auth.TokenService,
	router nethttp.Handler,
) *Container {
	return &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Bus:     bus,
		Engine:  eng,
		Tokens:  tokens,
		Router:  router,
	}
}

func provideConfig(configPath string) (*config.Config, error) {
	return config.Load(configPath)
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

func provideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector("pathway")
}

func provideBus(cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *events.Bus {
	bus := events.NewBus(cfg.Events.BufferSize, logger)
	bus.OnDrop(metrics.EventsDropped.Inc)
	return bus
}

func provideEngineOptions(cfg *config.Config) engine.Options {
	opts := engine.DefaultOptions()
	opts.OriginRoutes = cfg.Engine.OriginRoutes
	opts.DefaultStart = cfg.Engine.DefaultStart
	opts.DefaultTarget = cfg.Engine.DefaultTarget
	opts.AutoHeal = cfg.Engine.AutoHeal
	opts.MaxConnections = cfg.Engine.MaxConnections
	opts.EventBuffer = cfg.Events.BufferSize
	opts.CacheCapacity = cfg.Cache.Capacity
	return opts
}

func provideEngine(
	opts engine.Options,
	bus *events.Bus,
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Collector,
) *engine.Engine {
	eng := engine.New(opts, bus, logger)
	eng.SetLearningParameters(
		cfg.Engine.StrengthenDelta,
		cfg.Engine.DecayRate,
		cfg.Engine.StalenessWindow,
	)

	// Wire the engine's hooks to the Prometheus counters.
	eng.Store().OnCreated(metrics.PathwaysCreated.Inc)
	eng.OnStrengthened(metrics.PathwaysStrengthened.Inc)
	eng.OnPruned(metrics.PathwaysPruned.Inc)
	eng.Cache().OnHit(metrics.CacheHits.Inc)
	eng.Cache().OnMiss(metrics.CacheMisses.Inc)
	eng.OnProcessed(func(node string, elapsed time.Duration) {
		metrics.StageDuration.WithLabelValues(node).Observe(elapsed.Seconds())
	})

	return eng
}

func provideTokenService(cfg *config.Config) *auth.TokenService {
	if !cfg.Auth.Enabled {
		return nil
	}
	return auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
}

func provideRouter(
	eng *engine.Engine,
	cfg *config.Config,
	metrics *observability.Collector,
	tokens *auth.TokenService,
	logger *zap.Logger,
) nethttp.Handler {
	return httpiface.NewRouter(eng, cfg, metrics, tokens, logger).Setup()
}
