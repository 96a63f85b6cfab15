package di

import (
	"fmt"

	"TrendBand/internal/domain/repository"
	"TrendBand/internal/handler/api"
	"TrendBand/internal/loader"
	internalrepo "TrendBand/internal/repository"
	"TrendBand/internal/usecase"
	"TrendBand/pkg/cache"
	pkgch "TrendBand/pkg/clickhouse"
	"TrendBand/pkg/config"
	xhttp "TrendBand/pkg/http"
	pkgkafka "TrendBand/pkg/kafka"
	applogger "TrendBand/pkg/logger"
	"TrendBand/pkg/metrics"
	"TrendBand/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the client used by http record sources. The
// per-request timeout follows the analysis load timeout.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Analysis.LoadTimeout))
}

// ProvideClickHouseClient creates a ClickHouse client when at least one
// instrument reads from a clickhouse source; otherwise no client is built.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	needed := false
	for _, ins := range cfg.Instruments {
		if ins.Source.Type == "clickhouse" {
			needed = true
			break
		}
	}
	if !needed {
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
	return client, nil
}

// ProvideResultCache builds the result cache: in-memory L1 and, when
// configured, a Redis L2. Disabled cache means no caching at all.
func ProvideResultCache(cfg *config.Config) cache.BytesCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	l1 := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize))
	if !cfg.Cache.Redis.Enabled {
		return l1
	}
	l2 := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   "trendband",
	})
	return cache.NewLayeredCache(l1, l2)
}

// ProvideSources builds one record source per configured instrument.
func ProvideSources(cfg *config.Config, httpClient *xhttp.Client, chClient *pkgch.Client) ([]repository.RecordSource, error) {
	sources := make([]repository.RecordSource, 0, len(cfg.Instruments))
	for _, ins := range cfg.Instruments {
		switch ins.Source.Type {
		case "file":
			sources = append(sources, internalrepo.NewFileSource(ins.Name, ins.Source.Path))
		case "http":
			sources = append(sources, internalrepo.NewHTTPSource(ins.Name, ins.Source.URL, httpClient))
		case "clickhouse":
			if chClient == nil {
				return nil, fmt.Errorf("instrument %q: clickhouse source without clickhouse config", ins.Name)
			}
			sources = append(sources, internalrepo.NewClickHouseSource(ins.Name, ins.Source.Table, chClient))
		default:
			return nil, fmt.Errorf("instrument %q: unknown source type %q", ins.Name, ins.Source.Type)
		}
	}
	return sources, nil
}

// ProvideLoader creates the record loader.
func ProvideLoader(m repository.Metrics, l *applogger.Logger) *loader.Loader {
	return loader.New(m, l)
}

// ProvidePublisher creates the Kafka signal publisher when enabled.
func ProvidePublisher(cfg *config.Config) (repository.SignalPublisher, error) {
	if !cfg.Publisher.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Publisher.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Publisher.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Publisher.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Publisher.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Publisher.Kafka.WriteTimeout, cfg.Publisher.Kafka.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Publisher.Topic), nil
}

// ProvidePipeline creates the signal pipeline use case.
func ProvidePipeline(
	cfg *config.Config,
	sources []repository.RecordSource,
	ld *loader.Loader,
	publisher repository.SignalPublisher,
	results cache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(sources, ld, publisher, results, m, l, usecase.Options{
		Window:         cfg.Analysis.Window,
		BandMultiplier: cfg.Analysis.BandMultiplier,
		LoadTimeout:    cfg.Analysis.LoadTimeout,
		CacheTTL:       cfg.Cache.TTL,
	})
}

// ProvideHandler creates the signals API handler.
func ProvideHandler(pipeline *usecase.Pipeline, l *applogger.Logger) xhttp.Handler {
	return api.NewHandler(pipeline, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	handler xhttp.Handler,
	results cache.BytesCache,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, l, pipeline, handler, results, publisher, chClient)
}
