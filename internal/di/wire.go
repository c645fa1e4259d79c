//go:build wireinject
// +build wireinject

package di

import (
	"FinStudies/pkg/config"
	"FinStudies/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideIEXClient,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRefDataCache,

		// Repositories
		ProvideSeriesSource,
		ProvideRefData,
		ProvideStudyPublisher,

		// Use cases
		ProvideStudiesUseCase,
		ProvideIsinUseCase,
		ProvideKafkaStudiesHandler,

		// Transport
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
