//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
)

// InitializeContainer assembles the application from its providers.
func InitializeContainer(configPath string) (*Container, error) {
	wire.Build(
		provideConfig,
		provideLogger,
		provideMetrics,
		provideBus,
		provideEngineOptions,
		provideEngine,
		provideTokenService,
		provideRouter,
		newContainer,
	)
	return nil, nil
}
