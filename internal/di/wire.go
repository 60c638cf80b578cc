//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"OptionPilot/internal/usecase"
	"OptionPilot/pkg/config"
	"OptionPilot/pkg/server"
)

var baseSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
)

var screeningSet = wire.NewSet(
	ProvideOptionalClickHouse,
	ProvideChainArchiver,
	ProvideChainSource,
	ProvideFallbackChain,
	ProvideScreener,
)

// InitializeMarketData wires the quote cache service and its Kafka writer.
func InitializeMarketData(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvideRedisCache,
		ProvideQuoteStore,
		ProvideMarketData,
		ProvideKafkaConsumer,
		ProvideQuoteIngestHandler,
		ProvideCacheWriter,
		ProvideMarketDataApp,
	)
	return nil, nil, nil
}

// InitializeOptionsAnalytics wires the screening service.
func InitializeOptionsAnalytics(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(baseSet, screeningSet, ProvideOptionsAnalyticsApp)
	return nil, nil, nil
}

// InitializeScreener wires a standalone screener for one-off runs.
func InitializeScreener(cfg *config.Config) (*usecase.Screener, func(), error) {
	wire.Build(baseSet, screeningSet)
	return nil, nil, nil
}

// InitializeRecommendation wires the recommendation engine.
func InitializeRecommendation(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvideOptionalClickHouse,
		ProvideFeatureLookup,
		ProvidePredictor,
		ProvideKafkaProducer,
		ProvideDecisionPublisher,
		ProvideRecommender,
		ProvideRecommendationApp,
	)
	return nil, nil, nil
}

// InitializeSignals wires the signals snapshot service.
func InitializeSignals(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvidePostgres,
		ProvideSignalsStore,
		ProvideSignalsService,
		ProvideSignalsApp,
	)
	return nil, nil, nil
}

// InitializeRationale wires the rationale orchestrator.
func InitializeRationale(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvidePostgres,
		ProvideDocumentStore,
		ProvideRationaleBuilder,
		ProvideRationaleApp,
	)
	return nil, nil, nil
}

// InitializeGateway wires the public recommendation router.
func InitializeGateway(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvidePlatform,
		ProvideGateway,
		ProvideGatewayApp,
	)
	return nil, nil, nil
}

// InitializeIngest wires the quote stream to Kafka collector.
func InitializeIngest(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvideKafkaProducer,
		ProvideQuoteStream,
		ProvideEventPublisher,
		ProvideQuoteCollector,
		ProvideIngestApp,
	)
	return nil, nil, nil
}

// InitializeFeatureETL wires the feature job for a single run.
func InitializeFeatureETL(cfg *config.Config) (*usecase.FeatureETL, func(), error) {
	wire.Build(
		baseSet,
		ProvideClickHouseClient,
		ProvideFeatureMaterializer,
		ProvideFeatureETL,
	)
	return nil, nil, nil
}

// InitializeFeatureETLApp wires the scheduled feature job.
func InitializeFeatureETLApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvideClickHouseClient,
		ProvideFeatureMaterializer,
		ProvideFeatureETL,
		ProvideFeatureETLApp,
	)
	return nil, nil, nil
}
