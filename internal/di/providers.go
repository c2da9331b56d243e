package di

import (
	"fmt"

	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/extractor"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/services/classifier"
	"StockPulse/internal/usecase"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRegistry loads the ticker registry from configured files.
func ProvideRegistry(cfg *config.Config) (*extractor.Registry, error) {
	reg, err := extractor.NewRegistry(cfg.Registry.TickersPath, cfg.Registry.StoplistPath)
	if err != nil {
		return nil, fmt.Errorf("ticker registry: %w", err)
	}
	return reg, nil
}

// ProvideClassifier creates the HTTP classifier adapter.
func ProvideClassifier(cfg *config.Config) domsvc.Classifier {
	return classifier.New(classifier.Config{
		ServiceURL:          cfg.Classifier.ServiceURL,
		Timeout:             cfg.Classifier.Timeout,
		MaxInputChars:       cfg.Classifier.MaxInputChars,
		ConfidenceThreshold: cfg.Classifier.ConfidenceThreshold,
		RetryAttempts:       cfg.Classifier.RetryAttempts,
	})
}

// ProvidePostStore creates the configured post store backend.
func ProvidePostStore(cfg *config.Config) (domrepo.PostStore, error) {
	if cfg.Storage.Type == "memory" {
		return internalrepo.NewMemoryPostStore(), nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return internalrepo.NewClickHousePostStore(client, cfg.ClickHouse.Database+".posts"), nil
}

// ProvidePublisher creates the analyzed-post event publisher. Disabled Kafka
// yields a no-op publisher.
func ProvidePublisher(cfg *config.Config) (domrepo.Publisher, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.EventsTopic == "" {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPostPublisher(producer, cfg.Kafka.EventsTopic), nil
}

// ProvideResultCache creates the aggregation result cache: Redis when
// configured, otherwise in-process TTL.
func ProvideResultCache(cfg *config.Config) icache.BytesCache {
	if cfg.Analytics.CacheTTL <= 0 {
		return nil
	}
	if cfg.Analytics.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Analytics.Redis.Addr,
			Password: cfg.Analytics.Redis.Password,
			DB:       cfg.Analytics.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideIngestor creates the ingestion pipeline.
func ProvideIngestor(
	store domrepo.PostStore,
	pub domrepo.Publisher,
	cls domsvc.Classifier,
	registry *extractor.Registry,
	m domrepo.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) (*usecase.Ingestor, error) {
	return usecase.NewIngestor(store, pub, cls, registry, m, logger,
		cfg.Ingest.Workers, cfg.Ingest.ExcludePatterns)
}

// ProvideAggregator creates the read-side aggregator.
func ProvideAggregator(
	store domrepo.PostStore,
	registry *extractor.Registry,
	c icache.BytesCache,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Aggregator {
	return usecase.NewAggregator(store, registry, c, logger, usecase.AggregatorConfig{
		MinSampleSize: cfg.Analytics.MinSampleSize,
		MaxRankSize:   cfg.Analytics.MaxRankSize,
		PageLimit:     cfg.Analytics.PageLimit,
		CacheTTL:      cfg.Analytics.CacheTTL,
	})
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	logger *applogger.Logger,
	ingestor *usecase.Ingestor,
	agg *usecase.Aggregator,
	cls domsvc.Classifier,
	registry *extractor.Registry,
	store domrepo.PostStore,
) xhttp.Handler {
	return api.NewHandler(logger, ingestor, agg, cls, registry, store)
}

// ProvideKafkaConsumer creates the intake consumer when Kafka is enabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.ItemsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaItemsHandler creates the intake topic handler.
func ProvideKafkaItemsHandler(cfg *config.Config, ingestor *usecase.Ingestor, logger *applogger.Logger) pkgkafka.MessageHandler {
	if !cfg.Kafka.Enabled || cfg.Kafka.ItemsTopic == "" {
		return nil
	}
	return usecase.NewKafkaItemsHandler(cfg.Kafka.ItemsTopic, ingestor, logger)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	store domrepo.PostStore,
	pub domrepo.Publisher,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, logger, store, pub, consumer, kh, handler)
}
