//go:build wireinject
// +build wireinject

package di

import (
	"DefiPrime/pkg/config"
	"DefiPrime/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Source collaborators
		ProvideHTTPClient,
		ProvideLimiter,
		ProvideBreaker,
		ProvideSource,

		// Output
		ProvideSink,

		// Use cases
		ProvidePipeline,
		ProvideTVLReport,
		ProvideCompositeHandler,

		// Application
		ProvideApp,
	)
	return nil, nil, nil
}
