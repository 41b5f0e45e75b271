package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	dservice "TradePulse/internal/domain/service"
	"TradePulse/internal/handler/api"
	mid "TradePulse/internal/middleware"
	internalrepo "TradePulse/internal/repository"
	"TradePulse/internal/service/alpaca"
	"TradePulse/internal/service/binance"
	"TradePulse/internal/service/kraken"
	"TradePulse/internal/service/news"
	"TradePulse/internal/service/social"
	"TradePulse/internal/service/orderqueue"
	"TradePulse/internal/service/paper"
	"TradePulse/internal/service/wsfeed"
	"TradePulse/internal/services/analytics"
	"TradePulse/internal/usecase"
	"TradePulse/pkg/cache"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	pkgkafka "TradePulse/pkg/kafka"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/metrics"
	"TradePulse/pkg/postgres"
	"TradePulse/pkg/queue"
	"TradePulse/pkg/server"
)

const initTimeout = 10 * time.Second

// Streams holds the market streams of both asset classes.
type Streams struct {
	Crypto *wsfeed.Stream
	Stock  *wsfeed.Stream
}

// Subscriptions holds the monitored sets of both asset classes.
type Subscriptions struct {
	Crypto *usecase.SubscriptionManager
	Stock  *usecase.SubscriptionManager
}

// Venues holds the registry source and the per-class order dispatchers.
type Venues struct {
	Listing     drepo.VenueListing
	Dispatchers map[models.AssetClass]drepo.OrderDispatcher
}

// Storage holds the optional persistence backends.
type Storage struct {
	ClickHouse *internalrepo.ClickHouseStore
	Postgres   *internalrepo.PostgresStore
	Kafka      *internalrepo.KafkaAuditWriter
}

type venueListing struct {
	drepo.CryptoListing
	drepo.StockListing
}

// ProvideLogger creates the root logger. An error digest is shipped to Kafka
// when enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logger.Collect.Enabled && producer != nil {
		l.EnableDigest(applogger.DigestConfig{
			Service:   cfg.Service,
			Interval:  cfg.Logger.Collect.Interval,
			MaxUnique: cfg.Logger.Collect.Threshold,
			Topic:     cfg.Logger.Collect.Topic,
			Publisher: producer,
		})
	}
	return l, l.DisableDigest, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID(cfg.Kafka.ClientID),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideRedisClient connects to Redis, or returns nil when disabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	client, _, err := cache.NewRedisClient(ctx,
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, 2, 30*time.Second),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideSeenCache backs news de-duplication with Redis when available and an
// in-memory TTL cache otherwise.
func ProvideSeenCache(cfg *config.Config, rc *redis.Client) (cache.Service, func()) {
	var c cache.Service
	if rc != nil {
		c = cache.NewRedisCache(rc, cfg.Redis.Prefix)
	} else {
		c = cache.NewMemoryCache(
			cache.WithMemoryMaxSize(50000),
			cache.WithMemoryCleanup(time.Minute),
			cache.WithMemoryDefaultTTL(cfg.News.SeenTTL),
		)
	}
	return c, func() { _ = c.Close() }
}

// ProvideWatchlistStore persists the monitored set in Redis, or returns nil.
func ProvideWatchlistStore(cfg *config.Config, rc *redis.Client) drepo.WatchlistStore {
	if rc == nil {
		return nil
	}
	return internalrepo.NewRedisWatchlist(rc, cfg.Redis.Prefix)
}

// ProvideStorage opens the configured persistence backends.
func ProvideStorage(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) (*Storage, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	st := &Storage{}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.HasBackend("clickhouse") {
		client, err := pkgch.NewClient(ctx, pkgch.Config{
			Host:             cfg.ClickHouse.Host,
			Port:             cfg.ClickHouse.Port,
			Database:         cfg.ClickHouse.Database,
			User:             cfg.ClickHouse.User,
			Password:         cfg.ClickHouse.Password,
			HTTP:             cfg.ClickHouse.UseHTTP,
			Compression:      cfg.ClickHouse.Compression,
			AsyncInsert:      cfg.ClickHouse.AsyncInsert,
			WaitForAsync:     cfg.ClickHouse.WaitForAsync,
			DialTimeout:      cfg.ClickHouse.DialTimeout,
			ReadTimeout:      cfg.ClickHouse.ReadTimeout,
			MaxExecutionTime: cfg.ClickHouse.MaxExecutionTime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		if err := client.InitSchema(ctx, internalrepo.ClickHouseSchema(cfg.ClickHouse.Database)); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		st.ClickHouse = internalrepo.NewClickHouseStore(client, l.With("clickhouse"))
	}

	if cfg.HasBackend("postgres") {
		client, err := postgres.New(ctx,
			postgres.WithDSN(cfg.Postgres.DSN),
			postgres.WithHost(cfg.Postgres.Host, cfg.Postgres.Port),
			postgres.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
			postgres.WithDatabase(cfg.Postgres.Database),
			postgres.WithSSLMode(cfg.Postgres.SSLMode),
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		store := internalrepo.NewPostgresStore(client.DB(), l.With("postgres"))
		if err := store.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		st.Postgres = store
	}

	if cfg.HasBackend("kafka") && producer != nil {
		st.Kafka = internalrepo.NewKafkaAuditWriter(producer, cfg.Kafka.Topics.Audit)
	}
	return st, cleanup, nil
}

// ProvideAsyncSink batches audits and snapshots to every storage backend.
func ProvideAsyncSink(cfg *config.Config, st *Storage, m drepo.Metrics, l *applogger.Logger) *mid.AsyncSink {
	var writers []mid.BatchWriter
	if st.ClickHouse != nil {
		writers = append(writers, st.ClickHouse)
	}
	if st.Postgres != nil {
		writers = append(writers, st.Postgres)
	}
	if st.Kafka != nil {
		writers = append(writers, st.Kafka)
	}
	return mid.NewAsyncSink(writers, m,
		mid.WithSinkQueueSize(cfg.Storage.QueueSize),
		mid.WithSinkBatch(cfg.Storage.BatchSize, cfg.Storage.FlushInterval),
		mid.WithSinkLogger(l.With("sink")),
	)
}

// ProvideIndicatorEngine creates the per-asset indicator engine.
func ProvideIndicatorEngine(cfg *config.Config, sink *mid.AsyncSink, m drepo.Metrics, l *applogger.Logger) *usecase.IndicatorEngine {
	ic := cfg.Indicators
	return usecase.NewIndicatorEngine(m,
		usecase.WithIndicatorConfig(usecase.IndicatorConfig{
			HistorySize:      ic.HistorySize,
			MinHistory:       ic.MinHistory,
			RSIPeriod:        ic.RSIPeriod,
			SMAShort:         ic.SMAShort,
			SMALong:          ic.SMALong,
			BollingerPeriod:  ic.BollingerPeriod,
			BollingerK:       ic.BollingerK,
			VolatilityWindow: ic.VolatilityWindow,
		}),
		usecase.WithSnapshotSink(sink),
		usecase.WithIndicatorLogger(l.With("indicators")),
	)
}

// ProvideRiskSizer sizes trades from the indicator snapshots.
func ProvideRiskSizer(cfg *config.Config, engine *usecase.IndicatorEngine) *usecase.RiskSizer {
	return usecase.NewRiskSizer(engine, cfg.Risk.BaseVolumeUSD, cfg.Risk.TrendVolumeUSD)
}

// ProvideSentimentClassifier creates the model service client.
func ProvideSentimentClassifier(cfg *config.Config) dservice.SentimentClassifier {
	return analytics.NewHTTPSentimentClassifier(cfg.Analytics.BaseURL, cfg.Analytics.Timeout, cfg.Analytics.Attempts)
}

// ProvideTickerExtractor tries the model service and falls back to the
// lexical extractor.
func ProvideTickerExtractor(cfg *config.Config, l *applogger.Logger) dservice.TickerExtractor {
	primary := analytics.NewHTTPTickerExtractor(cfg.Analytics.BaseURL, cfg.Analytics.Timeout, cfg.Analytics.Attempts)
	return analytics.NewFallbackExtractor(primary, analytics.LexicalExtractor{}, l.With("extractor"))
}

// ProvideSignalScorer creates the sentiment scorer.
func ProvideSignalScorer(cfg *config.Config, c dservice.SentimentClassifier, m drepo.Metrics, l *applogger.Logger) *usecase.SignalScorer {
	return usecase.NewSignalScorer(c, cfg.Decision.ConfidenceThreshold, m, l.With("scorer"))
}

// ProvideStreams creates the Kraken and Alpaca websocket streams.
func ProvideStreams(cfg *config.Config, l *applogger.Logger) *Streams {
	wc := wsfeed.Config{
		ReconnectDelay: cfg.Stream.ReconnectDelay,
		PingInterval:   cfg.Stream.PingInterval,
		ReadTimeout:    cfg.Stream.ReadTimeout,
		BufferSize:     cfg.Stream.BufferSize,
	}
	cryptoCfg, stockCfg := wc, wc
	cryptoCfg.URL = cfg.Kraken.WSURL
	stockCfg.URL = cfg.Alpaca.DataURL
	return &Streams{
		Crypto: wsfeed.New("kraken", cryptoCfg, kraken.NewTickerCodec(), l),
		Stock:  wsfeed.New("alpaca", stockCfg, alpaca.NewTradeCodec(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret), l),
	}
}

// ProvideSubscriptions creates the monitored set of each class.
func ProvideSubscriptions(streams *Streams, store drepo.WatchlistStore, m drepo.Metrics, l *applogger.Logger) *Subscriptions {
	return &Subscriptions{
		Crypto: usecase.NewSubscriptionManager(models.AssetClassCrypto, streams.Crypto, store, m, l.With("subs_crypto")),
		Stock:  usecase.NewSubscriptionManager(models.AssetClassStock, streams.Stock, store, m, l.With("subs_stock")),
	}
}

// ProvideVenues selects the listing source and dispatchers for the trade mode.
func ProvideVenues(cfg *config.Config, st *Storage, producer *pkgkafka.Producer, l *applogger.Logger) (*Venues, error) {
	krakenClient := kraken.NewClient(
		kraken.WithBaseURL(cfg.Kraken.RESTURL),
		kraken.WithCredentials(cfg.Kraken.APIKey, cfg.Kraken.APISecret),
		kraken.WithLogger(l.With("kraken")),
	)
	var cryptoVenue interface {
		drepo.CryptoListing
		drepo.OrderDispatcher
	} = krakenClient
	if cfg.Trading.CryptoVenue == "binance" {
		cryptoVenue = binance.New(cfg.Binance.APIKey, cfg.Binance.APISecret,
			binance.WithQuote(cfg.Binance.Quote),
			binance.WithBaseURL(cfg.Binance.BaseURL),
			binance.WithLogger(l.With("binance")),
		)
	}

	var stockListing drepo.StockListing = paper.Listing{Tickers: cfg.Assets.Stocks}
	var trader *alpaca.Trader
	if cfg.Alpaca.APIKey != "" {
		trader = alpaca.NewTrader(alpaca.NewClient(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL), l.With("alpaca"))
		stockListing = trader
	}

	v := &Venues{
		Listing:     venueListing{CryptoListing: cryptoVenue, StockListing: stockListing},
		Dispatchers: make(map[models.AssetClass]drepo.OrderDispatcher, 2),
	}

	switch cfg.Trading.Mode {
	case config.ModeLive:
		if trader == nil {
			return nil, fmt.Errorf("live mode requires alpaca credentials")
		}
		v.Dispatchers[models.AssetClassCrypto] = cryptoVenue
		v.Dispatchers[models.AssetClassStock] = trader
	case config.ModePublish:
		if producer == nil {
			return nil, fmt.Errorf("publish mode requires kafka")
		}
		pub := internalrepo.NewKafkaIntentPublisher(producer, cfg.Kafka.Topics.Intents)
		v.Dispatchers[models.AssetClassCrypto] = pub
		v.Dispatchers[models.AssetClassStock] = pub
	default:
		opts := []paper.Option{paper.WithCash(cfg.Trading.PaperCash), paper.WithLogger(l.With("paper"))}
		if st.Postgres != nil {
			opts = append(opts, paper.WithFillRecorder(st.Postgres))
		}
		acct := paper.NewAccount(opts...)
		v.Dispatchers[models.AssetClassCrypto] = acct
		v.Dispatchers[models.AssetClassStock] = acct
	}
	return v, nil
}

// ProvideOrderQueue puts the Redis job queue between the decision engine and
// the venues when enabled. It returns nil otherwise.
func ProvideOrderQueue(cfg *config.Config, rc *redis.Client, venues *Venues, m drepo.Metrics, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Trading.Queue.Enabled || rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, queue.Config{
		Workers:    cfg.Trading.Queue.Workers,
		RetryLimit: cfg.Trading.Queue.RetryLimit,
		RetryDelay: cfg.Trading.Queue.RetryDelay,
	}, rc, queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
	q.RegisterJob(orderqueue.NewJob(venues.Dispatchers, m, l.With("order_job")))
	return q
}

// ProvideDecisionEngine creates the decision engine. Intents go through the
// order queue when one is configured.
func ProvideDecisionEngine(
	cfg *config.Config,
	engine *usecase.IndicatorEngine,
	sizer *usecase.RiskSizer,
	scorer *usecase.SignalScorer,
	venues *Venues,
	q *queue.RedisQueue,
	sink *mid.AsyncSink,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.DecisionEngine {
	opts := []usecase.DecisionOption{
		usecase.WithAuditSink(sink),
		usecase.WithRSIBounds(cfg.Decision.Oversold, cfg.Decision.Overbought),
		usecase.WithDecisionLogger(l.With("decision")),
	}
	if q != nil {
		d := orderqueue.NewDispatcher(q)
		opts = append(opts,
			usecase.WithDispatcher(models.AssetClassCrypto, d),
			usecase.WithDispatcher(models.AssetClassStock, d))
	} else {
		for class, d := range venues.Dispatchers {
			opts = append(opts, usecase.WithDispatcher(class, d))
		}
	}
	return usecase.NewDecisionEngine(engine, sizer, scorer, m, opts...)
}

// ProvideAssetDiscoverer creates the mention-driven discoverer.
func ProvideAssetDiscoverer(
	cfg *config.Config,
	extractor dservice.TickerExtractor,
	venues *Venues,
	decision *usecase.DecisionEngine,
	subs *Subscriptions,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.AssetDiscoverer {
	return usecase.NewAssetDiscoverer(extractor, venues.Listing, decision, m,
		usecase.WithSubscriptions(models.AssetClassCrypto, subs.Crypto),
		usecase.WithSubscriptions(models.AssetClassStock, subs.Stock),
		usecase.WithDiscoveryConfig(usecase.DiscoveryConfig{
			Lookback:          cfg.Discovery.Lookback,
			Threshold:         cfg.Discovery.Threshold,
			BootstrapAttempts: cfg.Discovery.BootstrapAttempts,
			BootstrapBackoff:  cfg.Discovery.BootstrapBackoff,
		}),
		usecase.WithDiscoveryLogger(l.With("discovery")),
	)
}

// ProvidePipelineRouter fans market events to the indicator engine and text
// events to the decision engine and the discoverer.
func ProvidePipelineRouter(
	cfg *config.Config,
	engine *usecase.IndicatorEngine,
	decision *usecase.DecisionEngine,
	discoverer *usecase.AssetDiscoverer,
	m drepo.Metrics,
	l *applogger.Logger,
) *mid.PipelineRouter {
	return mid.NewPipelineRouter(engine, []mid.TextSink{decision, discoverer}, m,
		mid.WithMarketLanes(cfg.Pipeline.MarketLanes),
		mid.WithLaneSize(cfg.Pipeline.LaneSize),
		mid.WithTextWorkers(cfg.Pipeline.TextWorkers),
		mid.WithTextQueueSize(cfg.Pipeline.TextQueue),
		mid.WithMaxRPS(cfg.Pipeline.MaxRPS),
		mid.WithRouterLogger(l.With("router")),
	)
}

// ProvideCollectors creates one market collector per stream.
func ProvideCollectors(streams *Streams, subs *Subscriptions, router *mid.PipelineRouter, m drepo.Metrics, l *applogger.Logger) []*usecase.MarketCollector {
	return []*usecase.MarketCollector{
		usecase.NewMarketCollector("kraken", streams.Crypto, subs.Crypto, router, m, l),
		usecase.NewMarketCollector("alpaca", streams.Stock, subs.Stock, router, m, l),
	}
}

// ProvideKafkaConsumer consumes text and market topics, or returns nil when
// Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, router *mid.PipelineRouter, m drepo.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(kc.GroupID),
		pkgkafka.WithConsumerStartOffset(kc.StartOffset),
		pkgkafka.WithConsumerWorkers(kc.Workers),
		pkgkafka.WithConsumerBufferSize(kc.BufferSize),
		pkgkafka.WithConsumerRetry(kc.RetryMax, kc.BackoffMin, kc.BackoffMax),
		pkgkafka.WithConsumerDLQ(kc.DLQTopic),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewTextEventHandler(cfg.Kafka.Topics.Text, router, m))
	consumer.RegisterHandler(usecase.NewMarketEventHandler(cfg.Kafka.Topics.Market, router, m))
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), consumerObserver(m, l.With("kafka_consumer"))))
	return consumer, nil
}

// consumerObserver records handling latency and logs failures with their
// trace id.
func consumerObserver(m drepo.Metrics, l *applogger.Logger) pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		After: func(ctx context.Context, topic string, _ kafkago.Message, _ error) {
			if start, ok := pkgkafka.StartTime(ctx); ok {
				m.RecordLatency("consume_"+topic, time.Since(start).Seconds())
			}
		},
		Err: func(_ context.Context, topic string, km kafkago.Message, err error) {
			m.RecordError("consume_" + topic)
			l.Warn("kafka message failed",
				applogger.String("topic", topic),
				applogger.String("trace_id", pkgkafka.ExtractTraceID(km)),
				applogger.Int64("offset", km.Offset),
				applogger.Error(err))
		},
	}
}

// ProvideNewsPoller creates the RSS poller, or nil when disabled.
func ProvideNewsPoller(cfg *config.Config, router *mid.PipelineRouter, seen cache.Service, m drepo.Metrics, l *applogger.Logger) *news.Poller {
	if !cfg.News.Enabled {
		return nil
	}
	opts := []news.Option{
		news.WithInterval(cfg.News.Interval),
		news.WithSeenTTL(cfg.News.SeenTTL),
		news.WithLogger(l.With("news")),
	}
	if len(cfg.News.Feeds) > 0 {
		opts = append(opts, news.WithFeeds(cfg.News.Feeds...))
	}
	return news.NewPoller(router, seen, m, opts...)
}

// ProvideSocialPoller creates the reddit poller, or nil when disabled.
func ProvideSocialPoller(cfg *config.Config, router *mid.PipelineRouter, seen cache.Service, m drepo.Metrics, l *applogger.Logger) (*social.Poller, error) {
	if !cfg.Social.Enabled {
		return nil, nil
	}
	rc := cfg.Social.Reddit
	client, err := social.NewClient(social.ClientConfig{
		ClientID:     rc.ClientID,
		ClientSecret: rc.ClientSecret,
		Username:     rc.Username,
		Password:     rc.Password,
		UserAgent:    rc.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	opts := []social.Option{
		social.WithInterval(cfg.Social.Interval),
		social.WithLimit(cfg.Social.Limit),
		social.WithSeenTTL(cfg.Social.SeenTTL),
		social.WithLogger(l.With("social")),
	}
	if len(cfg.Social.Subreddits) > 0 {
		opts = append(opts, social.WithSubreddits(cfg.Social.Subreddits...))
	}
	return social.NewPoller(client, router, seen, m, opts...), nil
}

// ProvideHTTPServer exposes /metrics and /healthz.
func ProvideHTTPServer(cfg *config.Config, collectors []*usecase.MarketCollector, l *applogger.Logger) *xhttp.Server {
	probes := make(map[string]api.ConnectionProbe, len(collectors))
	for _, c := range collectors {
		probes["stream_"+c.Name()] = c
	}
	return xhttp.NewServer([]xhttp.Handler{api.NewHealthHandler(probes, l.With("health"))},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		xhttp.WithServerLogger(l),
	)
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	sink *mid.AsyncSink,
	router *mid.PipelineRouter,
	discoverer *usecase.AssetDiscoverer,
	decision *usecase.DecisionEngine,
	subs *Subscriptions,
	collectors []*usecase.MarketCollector,
	consumer *pkgkafka.Consumer,
	poller *news.Poller,
	socialPoller *social.Poller,
	q *queue.RedisQueue,
	httpServer *xhttp.Server,
) *server.App {
	seed := map[*usecase.SubscriptionManager][]models.Asset{
		subs.Crypto: configuredAssets(cfg.Assets.Crypto, models.NewCryptoAsset),
		subs.Stock:  configuredAssets(cfg.Assets.Stocks, models.NewStockAsset),
	}
	return server.New(cfg, l, server.Components{
		Sink:       sink,
		Router:     router,
		Discoverer: discoverer,
		Watcher:    decision,
		Seeds:      seed,
		Collectors: collectors,
		Consumer:   consumer,
		Poller:     poller,
		Social:     socialPoller,
		Queue:      q,
		HTTP:       httpServer,
	})
}

func configuredAssets(symbols []string, mk func(string) models.Asset) []models.Asset {
	out := make([]models.Asset, 0, len(symbols))
	for _, s := range symbols {
		if a := mk(s); !a.IsZero() {
			out = append(out, a)
		}
	}
	return out
}
