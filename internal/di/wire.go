//go:build wireinject
// +build wireinject

package di

import (
	"TrendBand/pkg/config"
	"TrendBand/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideClickHouseClient,
		ProvideResultCache,

		// Record sources and loading
		ProvideSources,
		ProvideLoader,
		ProvidePublisher,

		// Use cases
		ProvidePipeline,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
