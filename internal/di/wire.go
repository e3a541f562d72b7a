//go:build wireinject
// +build wireinject

package di

import (
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideTracing,
		ProvideMetrics,
		ProvideHTTPClient,

		// Infrastructure clients
		ProvideRedis,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideRecommendationStore,
		ProvidePublisher,

		// Sources and use cases
		ProvideSummarizer,
		ProvideSources,
		ProvideDefaults,
		ProvideAgents,
		ProvideAggregator,
		ProvideHub,
		ProvidePipeline,
		ProvideQueue,
		ProvideJobs,
		ProvideScheduler,
		ProvideKafkaConsumer,

		// Transport
		ProvideHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
