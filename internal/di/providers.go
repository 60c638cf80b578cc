package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	domrepo "OptionPilot/internal/domain/repository"
	domsvc "OptionPilot/internal/domain/service"
	"OptionPilot/internal/handler/api"
	mid "OptionPilot/internal/middleware"
	internalrepo "OptionPilot/internal/repository"
	"OptionPilot/internal/service/polygon"
	"OptionPilot/internal/services/analytics"
	"OptionPilot/internal/services/options"
	"OptionPilot/internal/usecase"
	"OptionPilot/pkg/cache"
	pkgch "OptionPilot/pkg/clickhouse"
	"OptionPilot/pkg/config"
	xhttp "OptionPilot/pkg/http"
	pkgkafka "OptionPilot/pkg/kafka"
	applogger "OptionPilot/pkg/logger"
	"OptionPilot/pkg/metrics"
	"OptionPilot/pkg/postgres"
	"OptionPilot/pkg/server"
)

const schemaTimeout = 10 * time.Second

// ProvideLogger builds the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	log, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// ProvideRegistry creates the per-process Prometheus registry.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the pipeline metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) domrepo.Metrics {
	return metrics.New(reg)
}

// ProvideClickHouseClient opens ClickHouse and applies the feature schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema(client.Database())); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, func() { _ = client.Close() }, nil
}

// ProvideOptionalClickHouse is ProvideClickHouseClient for services that
// work without the feature store. An unset host or an unreachable server
// yields a nil client.
func ProvideOptionalClickHouse(cfg *config.Config, log *applogger.Logger) (*pkgch.Client, func(), error) {
	if cfg.ClickHouse.Host == "" {
		return nil, func() {}, nil
	}
	client, cleanup, err := ProvideClickHouseClient(cfg)
	if err != nil {
		log.Warn("clickhouse unavailable, continuing without feature store", applogger.Error(err))
		return nil, func() {}, nil
	}
	return client, cleanup, nil
}

// ProvideChainArchiver archives screened chains when ClickHouse is available.
func ProvideChainArchiver(client *pkgch.Client) domrepo.ChainArchiver {
	if client == nil {
		return nil
	}
	return internalrepo.NewCHChainArchive(client.DB(), client.Database())
}

// ProvideFeatureLookup reads liquidity features when ClickHouse is available,
// memoized for clickhouse.feature_cache_ttl.
func ProvideFeatureLookup(client *pkgch.Client, cfg *config.Config, log *applogger.Logger) (domrepo.FeatureLookup, func()) {
	if client == nil {
		return nil, func() {}
	}
	store := internalrepo.NewCHFeatureStore(client.DB(), client.Database(), log)
	cached := internalrepo.NewCachedFeatureLookup(store, cfg.ClickHouse.FeatureCacheTTL,
		cache.WithMaxSize(cfg.ClickHouse.FeatureCacheSize))
	return cached, func() { _ = cached.Close() }
}

// ProvideFeatureMaterializer is the ETL side of the feature store.
func ProvideFeatureMaterializer(client *pkgch.Client, log *applogger.Logger) domrepo.FeatureMaterializer {
	return internalrepo.NewCHFeatureStore(client.DB(), client.Database(), log)
}

// ProvideRedisCache connects to the quote cache.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, func(), error) {
	c, err := cache.NewRedisCache(
		cache.WithRedisURL(cfg.Redis.URI),
		cache.WithRedisPrefix(cfg.Redis.Namespace),
		cache.WithRedisPool(cfg.Redis.PoolSize, 1, 4*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, func() { _ = c.Close() }, nil
}

// ProvideQuoteStore exposes the Redis cache as the quote store.
func ProvideQuoteStore(c *cache.RedisCache, cfg *config.Config) domrepo.QuoteStore {
	return internalrepo.NewRedisQuoteStore(c, cfg.Redis.QuoteTTL, cfg.Redis.AggregateTTL)
}

// ProvidePostgres opens the signals database. No DSN or a failed connection
// yields a nil pool; the services then serve placeholder data.
func ProvidePostgres(cfg *config.Config, log *applogger.Logger) (*postgres.DB, func(), error) {
	if cfg.Postgres.DSN == "" {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Postgres.DSN, postgres.WithMaxConns(cfg.Postgres.MaxConns))
	if err != nil {
		log.Warn("postgres unavailable, serving placeholder data", applogger.Error(err))
		return nil, func() {}, nil
	}
	for _, stmt := range []string{internalrepo.SignalsSchema, internalrepo.DocumentsSchema} {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
	}
	return db, db.Close, nil
}

// ProvideSignalsStore returns nil without a database.
func ProvideSignalsStore(db *postgres.DB) domrepo.SignalsStore {
	if db == nil {
		return nil
	}
	return internalrepo.NewPGSignalsStore(db.Pool)
}

// ProvideDocumentStore returns nil without a database.
func ProvideDocumentStore(db *postgres.DB) domrepo.DocumentStore {
	if db == nil {
		return nil
	}
	return internalrepo.NewPGDocumentStore(db.Pool)
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, func(), error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideKafkaConsumer creates the quote cache writer consumer.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerRegisterer(reg),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.LoggingHook{Log: log.Component("quote-ingest"), Slow: 250 * time.Millisecond})
	return consumer, nil
}

// ProvideQuoteIngestHandler writes consumed market events to the quote store.
func ProvideQuoteIngestHandler(cfg *config.Config, store domrepo.QuoteStore, m domrepo.Metrics) *usecase.QuoteIngestHandler {
	return usecase.NewQuoteIngestHandler(cfg.Kafka.Topics.Events, store, m)
}

// ProvideCacheWriter registers the ingest handler and runs the consumer as a worker.
func ProvideCacheWriter(consumer *pkgkafka.Consumer, h *usecase.QuoteIngestHandler) server.Worker {
	consumer.RegisterHandler(h)
	return server.WorkerFunc{
		ID: "quote-cache-writer",
		Fn: func(ctx context.Context) error {
			if err := consumer.Start(); err != nil {
				return fmt.Errorf("start consumer: %w", err)
			}
			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return consumer.Stop(stopCtx)
		},
	}
}

// ProvideQuoteStream picks the Polygon websocket or the synthetic generator.
func ProvideQuoteStream(cfg *config.Config, log *applogger.Logger) domrepo.QuoteStream {
	if cfg.SyntheticQuotes() {
		log.Info("polygon api key missing or synthetic mode set, generating quotes locally")
		return polygon.NewSynthetic(cfg.Polygon.Symbols, cfg.Polygon.SyntheticInterval)
	}
	return polygon.New(
		cfg.Polygon.APIKey,
		cfg.Polygon.WebSocketURL,
		cfg.Polygon.Symbols,
		cfg.Polygon.ReconnectDelay,
		cfg.Polygon.PingInterval,
		log,
	)
}

// ProvideEventPublisher publishes ingested events to the events topic.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config, m domrepo.Metrics) *internalrepo.KafkaEventPublisher {
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topics.Events, m)
}

// ProvideQuoteCollector builds the throttled stream-to-Kafka pipeline.
func ProvideQuoteCollector(
	stream domrepo.QuoteStream,
	pub *internalrepo.KafkaEventPublisher,
	m domrepo.Metrics,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.QuoteCollector {
	pipe := mid.NewRealtimePipeline(pub, m,
		mid.WithMaxRPS(cfg.Ingest.MaxRPS),
		mid.WithBufferSize(cfg.Ingest.BufferSize),
	)
	return usecase.NewQuoteCollector(stream, pipe, m, log)
}

// ProvideDecisionPublisher audits recommendations on the decisions topic.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.DecisionPublisher {
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.Topics.Decisions)
}

// ProvideChainSource calls the market-data service. An empty URL yields a
// client that always reports the source as disabled.
func ProvideChainSource(cfg *config.Config, log *applogger.Logger) domrepo.ChainSource {
	var base *analytics.HTTPServiceBase
	if cfg.MarketData.URL != "" {
		base = analytics.NewHTTPServiceBase(cfg.MarketData.URL, cfg.MarketData.Timeout)
	}
	b := cfg.MarketData.Breaker
	return analytics.NewMarketDataClient(base, analytics.BreakerSettings{
		MaxRequests:         b.MaxRequests,
		Interval:            b.Interval,
		Timeout:             b.Timeout,
		ConsecutiveFailures: b.ConsecutiveFailures,
	}, log)
}

// ProvideFallbackChain supplies the synthetic chain.
func ProvideFallbackChain() domrepo.FallbackChainProvider {
	return options.MockChainProvider{}
}

// ProvidePredictor returns nil when no model URL is configured.
func ProvidePredictor(cfg *config.Config) domsvc.Predictor {
	if cfg.Model.URL == "" {
		return nil
	}
	return analytics.NewModelClient(analytics.NewHTTPServiceBase(cfg.Model.URL, cfg.Model.Timeout), cfg.Model.RetryMax)
}

// ProvideScreener creates the screening use case.
func ProvideScreener(
	source domrepo.ChainSource,
	fallback domrepo.FallbackChainProvider,
	archiver domrepo.ChainArchiver,
	m domrepo.Metrics,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.Screener {
	return usecase.NewScreener(source, fallback, m,
		usecase.WithTopN(cfg.Screening.TopN),
		usecase.WithFetchTimeout(cfg.Screening.FetchTimeout),
		usecase.WithChainArchiver(archiver),
		usecase.WithScreenerLogger(log),
	)
}

// ProvideRecommender creates the recommendation use case.
func ProvideRecommender(
	lookup domrepo.FeatureLookup,
	predictor domsvc.Predictor,
	decisions domrepo.DecisionPublisher,
	m domrepo.Metrics,
	log *applogger.Logger,
) *usecase.Recommender {
	return usecase.NewRecommender(m,
		usecase.WithFeatureLookup(lookup),
		usecase.WithPredictor(predictor),
		usecase.WithDecisionPublisher(decisions),
		usecase.WithRecommenderLogger(log),
	)
}

// ProvideMarketData creates the market-data cache use case.
func ProvideMarketData(store domrepo.QuoteStore, m domrepo.Metrics, cfg *config.Config, log *applogger.Logger) *usecase.MarketData {
	return usecase.NewMarketData(store, m, cfg.Redis.DefaultChainContracts, log)
}

// ProvideSignalsService creates the signals snapshot use case.
func ProvideSignalsService(store domrepo.SignalsStore, m domrepo.Metrics, log *applogger.Logger) *usecase.SignalsService {
	return usecase.NewSignalsService(store, m, log)
}

// ProvideRationaleBuilder creates the rationale use case.
func ProvideRationaleBuilder(docs domrepo.DocumentStore, m domrepo.Metrics, log *applogger.Logger) *usecase.RationaleBuilder {
	return usecase.NewRationaleBuilder(docs, m, log)
}

// ProvidePlatform is the gateway's client for the downstream services.
func ProvidePlatform(cfg *config.Config) domsvc.Platform {
	return analytics.NewPlatformClient(analytics.PlatformURLs{
		Analytics:   cfg.Gateway.AnalyticsURL,
		Signals:     cfg.Gateway.SignalsURL,
		Recommender: cfg.Gateway.RecommenderURL,
		Rationale:   cfg.Gateway.RationaleURL,
	}, cfg.Gateway.Timeout)
}

// ProvideGateway creates the end-to-end recommendation router.
func ProvideGateway(p domsvc.Platform, m domrepo.Metrics, cfg *config.Config, log *applogger.Logger) *usecase.Gateway {
	return usecase.NewGateway(p, m,
		usecase.WithMarketDataURL(cfg.MarketData.URL),
		usecase.WithRAG(cfg.Gateway.RAGEnabled),
		usecase.WithGatewayLogger(log),
	)
}

// ProvideFeatureETL creates the nightly feature job.
func ProvideFeatureETL(store domrepo.FeatureMaterializer, m domrepo.Metrics, cfg *config.Config, log *applogger.Logger) *usecase.FeatureETL {
	return usecase.NewFeatureETL(store, m,
		usecase.WithSchedule(cfg.ETL.Schedule),
		usecase.WithLookbackDays(cfg.ETL.LookbackDays),
		usecase.WithRetryDelay(cfg.ETL.RetryDelay),
		usecase.WithMinSamples(cfg.ETL.MinSamples),
		usecase.WithETLLogger(log),
	)
}

func newHTTPServer(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger, handlers ...xhttp.Handler) *xhttp.Server {
	metricsPath := cfg.Metrics.Path
	if !cfg.Metrics.Enabled {
		metricsPath = ""
	}
	return xhttp.NewServer(xhttp.Handlers(handlers),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithRateLimit(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst),
		xhttp.WithMetrics(reg, metricsPath),
		xhttp.WithLogger(log),
	)
}

// ProvideMarketDataApp serves the quote cache and runs the cache writer.
func ProvideMarketDataApp(
	cfg *config.Config,
	reg *prometheus.Registry,
	log *applogger.Logger,
	md *usecase.MarketData,
	writer server.Worker,
) *server.App {
	return server.New("market-data",
		server.WithHTTPServer(newHTTPServer(cfg, reg, log, api.NewMarketDataHandler(md))),
		server.WithWorkers(writer),
		server.WithAppLogger(log),
	)
}

// ProvideOptionsAnalyticsApp serves POST /screen.
func ProvideOptionsAnalyticsApp(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger, s *usecase.Screener) *server.App {
	return server.New("options-analytics",
		server.WithHTTPServer(newHTTPServer(cfg, reg, log, api.NewScreeningHandler(log, s))),
		server.WithAppLogger(log),
	)
}

// ProvideRecommendationApp serves POST /score.
func ProvideRecommendationApp(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger, r *usecase.Recommender) *server.App {
	return server.New("recommendation",
		server.WithHTTPServer(newHTTPServer(cfg, reg, log, api.NewRecommendationHandler(log, r))),
		server.WithAppLogger(log),
	)
}

// ProvideSignalsApp serves GET /snapshot/:symbol.
func ProvideSignalsApp(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger, s *usecase.SignalsService) *server.App {
	return server.New("signals",
		server.WithHTTPServer(newHTTPServer(cfg, reg, log, api.NewSignalsHandler(s))),
		server.WithAppLogger(log),
	)
}

// ProvideRationaleApp serves POST /rationale.
func ProvideRationaleApp(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger, b *usecase.RationaleBuilder) *server.App {
	return server.New("rationale",
		server.WithHTTPServer(newHTTPServer(cfg, reg, log, api.NewRationaleHandler(b))),
		server.WithAppLogger(log),
	)
}

// ProvideGatewayApp serves POST /recommendations.
func ProvideGatewayApp(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger, g *usecase.Gateway) *server.App {
	return server.New("gateway",
		server.WithHTTPServer(newHTTPServer(cfg, reg, log, api.NewGatewayHandler(log, g))),
		server.WithAppLogger(log),
	)
}

// ProvideIngestApp runs the quote collector. Health and metrics stay exposed.
func ProvideIngestApp(cfg *config.Config, reg *prometheus.Registry, log *applogger.Logger, c *usecase.QuoteCollector) *server.App {
	return server.New("ingest",
		server.WithHTTPServer(newHTTPServer(cfg, reg, log)),
		server.WithWorkers(c),
		server.WithAppLogger(log),
	)
}

// ProvideFeatureETLApp runs the ETL on its cron schedule.
func ProvideFeatureETLApp(log *applogger.Logger, etl *usecase.FeatureETL) *server.App {
	return server.New("feature-etl",
		server.WithWorkers(etl),
		server.WithAppLogger(log),
	)
}
