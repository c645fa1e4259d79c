package di

import (
	"context"
	"fmt"
	"time"

	"FinStudies/internal/domain/repository"
	"FinStudies/internal/handler/api"
	internalrepo "FinStudies/internal/repository"
	"FinStudies/internal/service/cache"
	"FinStudies/internal/service/iex"
	"FinStudies/internal/service/ratelimit"
	"FinStudies/internal/usecase"
	pkgch "FinStudies/pkg/clickhouse"
	"FinStudies/pkg/config"
	xhttp "FinStudies/pkg/http"
	pkgkafka "FinStudies/pkg/kafka"
	applogger "FinStudies/pkg/logger"
	"FinStudies/pkg/metrics"
	"FinStudies/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideIEXClient creates the market data provider client.
func ProvideIEXClient(cfg *config.Config) *iex.Client {
	return iex.New(cfg.IEX.BaseURL, cfg.IEX.Version, cfg.IEX.Token, cfg.IEX.Timeout)
}

// ProvideClickHouseClient creates a ClickHouse client when the series source
// is clickhouse; otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config, log *applogger.Logger) (*pkgch.Client, error) {
	if cfg.Source.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.CandlesSchema(cfg.ClickHouse.Table)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		log.Info("clickhouse schema ready", applogger.String("table", cfg.ClickHouse.Table))
	}
	return client, nil
}

// ProvideSeriesSource selects the price series backend.
func ProvideSeriesSource(cfg *config.Config, iexClient *iex.Client, ch *pkgch.Client, log *applogger.Logger) repository.SeriesSource {
	if cfg.Source.Type == "clickhouse" && ch != nil {
		src := internalrepo.NewCHSeriesSource(ch, cfg.ClickHouse.Table)
		src.SetLogger(log)
		return src
	}
	return iexClient
}

// ProvideRefData exposes the provider client as the ISIN lookup backend.
func ProvideRefData(iexClient *iex.Client) repository.RefDataProvider {
	return iexClient
}

// ProvideRefDataCache returns the ISIN response cache, or nil when disabled.
func ProvideRefDataCache(cfg *config.Config) cache.BytesCache {
	if !cfg.RefData.Cache.Enabled {
		return nil
	}
	if cfg.RefData.Cache.Backend == "redis" {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	}
	return cache.NewTTLCache()
}

// ProvideStudiesUseCase creates the studies use case over the configured source.
func ProvideStudiesUseCase(cfg *config.Config, src repository.SeriesSource, m repository.Metrics, log *applogger.Logger) *usecase.StudiesUseCase {
	return usecase.NewStudiesUseCase(src, cfg.Source.Type, m, log)
}

// ProvideIsinUseCase creates the ISIN lookup use case.
func ProvideIsinUseCase(cfg *config.Config, ref repository.RefDataProvider, c cache.BytesCache, m repository.Metrics, log *applogger.Logger) *usecase.IsinUseCase {
	return usecase.NewIsinUseCase(ref, c, cfg.RefData.Cache.TTL, m, log)
}

// ProvideRateLimiter returns the per-client limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.Server.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.PerSec)
}

// ProvideHTTPHandler creates the echo API handler.
func ProvideHTTPHandler(log *applogger.Logger, st *usecase.StudiesUseCase, isin *usecase.IsinUseCase, limiter *ratelimit.Limiter) xhttp.Handler {
	return api.NewEchoHandler(log, st, isin, limiter)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, log *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h, log,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.SlowThreshold),
	)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideStudyPublisher publishes study results to the result topic.
func ProvideStudyPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.ResultTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil
// when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	c := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerHandleTimeout(c.HandleTimeout),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.TraceHook())
	return consumer, nil
}

// ProvideKafkaStudiesHandler handles study requests from the request topic.
func ProvideKafkaStudiesHandler(cfg *config.Config, st *usecase.StudiesUseCase, pub repository.Publisher, m repository.Metrics, log *applogger.Logger) *usecase.KafkaStudiesHandler {
	if pub == nil {
		return nil
	}
	return usecase.NewKafkaStudiesHandler(cfg.Kafka.RequestTopic, st, pub, m, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaStudiesHandler,
	pub repository.Publisher,
	ch *pkgch.Client,
	refCache cache.BytesCache,
) *server.App {
	app := server.New(cfg, log, httpServer)
	if consumer != nil && kh != nil {
		app.SetConsumer(consumer, kh)
	}
	if pub != nil {
		app.AddCloser("kafka publisher", pub)
	}
	if ch != nil {
		app.AddCloser("clickhouse", ch)
	}
	if c, ok := refCache.(*cache.RedisCache); ok {
		app.AddCloser("redis", c)
	}
	return app
}
