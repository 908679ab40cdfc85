package di

import (
	"context"
	"fmt"
	"time"

	"EdgeRunner/internal/domain/repository"
	"EdgeRunner/internal/handler/api"
	internalrepo "EdgeRunner/internal/repository"
	"EdgeRunner/internal/scheduler"
	icache "EdgeRunner/internal/service/cache"
	"EdgeRunner/internal/service/datafeed"
	"EdgeRunner/internal/services/broker"
	"EdgeRunner/internal/services/engine"
	"EdgeRunner/internal/usecase"
	pkgch "EdgeRunner/pkg/clickhouse"
	"EdgeRunner/pkg/config"
	pkgkafka "EdgeRunner/pkg/kafka"
	applogger "EdgeRunner/pkg/logger"
	"EdgeRunner/pkg/metrics"
	"EdgeRunner/pkg/server"
)

// ProvideLogger creates the application logger. Development gets console
// output, everything else structured JSON.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when
// persistence is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideResultStore creates the backtest result store and initializes
// its schema. Nil when ClickHouse is disabled.
func ProvideResultStore(ch *pkgch.Client, l *applogger.Logger) (repository.ResultStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHResultStore(ch)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("result store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when event
// publishing is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher creates the Kafka decision publisher, or nil
// when no producer is configured.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.DecisionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideDataProvider creates the Yahoo chart provider behind a quote
// and bar cache. Redis serves the cache when enabled, an in-process TTL
// map otherwise.
func ProvideDataProvider(cfg *config.Config, l *applogger.Logger) repository.DataProvider {
	yahoo := datafeed.NewYahooProvider(
		cfg.Datafeed.BaseURL,
		cfg.Datafeed.FallbackURL,
		cfg.Datafeed.Timeout,
		l,
	)

	var c icache.BytesCache
	if cfg.Redis.Enabled {
		c = icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	} else {
		c = icache.NewTTLCache()
	}
	return datafeed.NewCachedProvider(yahoo, c, cfg.Redis.QuoteTTL, cfg.Redis.BarTTL)
}

// ProvideBroker creates the simulated live broker.
func ProvideBroker(cfg *config.Config, provider repository.DataProvider) repository.Broker {
	return broker.NewSimBroker(cfg.Risk.StartingCapital, provider)
}

// ProvideQuoteStream creates the live quote stream, or nil when no
// stream endpoint is configured.
func ProvideQuoteStream(cfg *config.Config, l *applogger.Logger) repository.QuoteStream {
	if cfg.Datafeed.StreamURL == "" {
		return nil
	}
	return datafeed.NewStream(
		cfg.Datafeed.StreamAPIKey,
		cfg.Datafeed.StreamURL,
		cfg.Symbols,
		cfg.Datafeed.ReconnectDelay,
		cfg.Datafeed.PingInterval,
		l,
	)
}

// ProvidePipeline creates the live analysis pipeline.
func ProvidePipeline(
	provider repository.DataProvider,
	bk repository.Broker,
	publisher repository.DecisionPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Pipeline {
	riskCfg := engine.RiskConfig{
		ScoreThreshold:         cfg.Risk.ScoreThreshold,
		MaxDailyLossPercent:    cfg.Risk.MaxDailyLossPercent,
		MaxPositionSizePercent: cfg.Risk.MaxPositionSizePercent,
		MinRewardRiskRatio:     cfg.Risk.MinRewardRiskRatio,
	}
	return usecase.NewPipeline(provider, bk, publisher, m, l, riskCfg, cfg.BlockedSessions, cfg.Peers)
}

// ProvideBacktestEngine creates the backtest engine.
func ProvideBacktestEngine(provider repository.DataProvider, l *applogger.Logger, m repository.Metrics) *usecase.BacktestEngine {
	return usecase.NewBacktestEngine(provider, l, m)
}

// ProvideBacktestRunner creates the run registry.
func ProvideBacktestRunner(eng *usecase.BacktestEngine, store repository.ResultStore, l *applogger.Logger) *usecase.BacktestRunner {
	return usecase.NewBacktestRunner(eng, store, l)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(l *applogger.Logger, runner *usecase.BacktestRunner, pipeline *usecase.Pipeline) *api.Handler {
	return api.NewHandler(l, runner, pipeline)
}

// ProvideScheduler creates the cron scheduler.
func ProvideScheduler(l *applogger.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(l)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	runner *usecase.BacktestRunner,
	handler *api.Handler,
	sched *scheduler.Scheduler,
	bk repository.Broker,
	stream repository.QuoteStream,
	store repository.ResultStore,
	publisher repository.DecisionPublisher,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, l, pipeline, handler, sched, bk, stream, store, publisher, chClient)
}
