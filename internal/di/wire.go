//go:build wireinject
// +build wireinject

package di

import (
	"TradePulse/pkg/config"
	"TradePulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application and
// the release function of its clients.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideRedisClient,
		ProvideSeenCache,
		ProvideWatchlistStore,
		ProvideStorage,
		ProvideAsyncSink,

		// Venues and market data
		ProvideStreams,
		ProvideSubscriptions,
		ProvideVenues,
		ProvideOrderQueue,

		// Use cases
		ProvideIndicatorEngine,
		ProvideRiskSizer,
		ProvideSentimentClassifier,
		ProvideTickerExtractor,
		ProvideSignalScorer,
		ProvideDecisionEngine,
		ProvideAssetDiscoverer,

		// Ingestion
		ProvidePipelineRouter,
		ProvideCollectors,
		ProvideKafkaConsumer,
		ProvideNewsPoller,
		ProvideSocialPoller,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
