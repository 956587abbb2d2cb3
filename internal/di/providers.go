package di

import (
	"errors"
	"fmt"
	"os"

	"DefiPrime/internal/domain/models"
	"DefiPrime/internal/domain/repository"
	"DefiPrime/internal/handler/api"
	internalrepo "DefiPrime/internal/repository"
	"DefiPrime/internal/service/breaker"
	"DefiPrime/internal/service/llama"
	"DefiPrime/internal/service/ratelimit"
	"DefiPrime/internal/usecase"
	pkgch "DefiPrime/pkg/clickhouse"
	"DefiPrime/pkg/config"
	xhttp "DefiPrime/pkg/http"
	pkgkafka "DefiPrime/pkg/kafka"
	applogger "DefiPrime/pkg/logger"
	"DefiPrime/pkg/metrics"
	"DefiPrime/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sony/gobreaker"
)

// ProvideLogger creates the application logger from config.
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

// ProvideRegistry creates the Prometheus registry served on the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideHTTPClient creates the outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Source.Timeout))
}

// ProvideLimiter creates the per-host request pacer.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Source.RateLimit.RPS, cfg.Source.RateLimit.Burst)
}

// ProvideBreaker creates the per-host circuit breaker and logs transitions.
func ProvideBreaker(cfg *config.Config, l *applogger.Logger) *breaker.Manager {
	b := cfg.Source.Breaker
	m := breaker.New(breaker.Config{
		MaxRequests:         b.MaxRequests,
		Interval:            b.Interval,
		Timeout:             b.Timeout,
		ConsecutiveFailures: b.ConsecutiveFailures,
		IsSuccessful:        hostHealthy,
	})
	m.OnStateChange(func(name string, from, to gobreaker.State) {
		l.Warn("circuit breaker state change",
			applogger.String("host", name),
			applogger.String("from", from.String()),
			applogger.String("to", to.String()),
		)
	})
	return m
}

// hostHealthy treats 4xx answers as healthy: an unknown pool id must not
// open the breaker for every other pool on the same host.
func hostHealthy(err error) bool {
	if err == nil {
		return true
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Code >= 400 && se.Code < 500 && se.Code != 429
	}
	return false
}

// ProvideClickHouseClient creates a read-only ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.Source.Concurrency, cfg.Source.Concurrency),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithReadOnly(true),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSource selects the series source named by source.type. The cleanup
// releases any connection the source holds.
func ProvideSource(
	cfg *config.Config,
	l *applogger.Logger,
	httpClient *xhttp.Client,
	limiter *ratelimit.Limiter,
	br *breaker.Manager,
) (repository.SeriesSource, func(), error) {
	switch cfg.Source.Type {
	case "llama":
		src, err := llama.New(cfg.Source.BaseURL, httpClient, limiter, br, cfg.Source.Fields)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	case "file":
		return internalrepo.NewFileSeriesSource(cfg.Source.Dir, cfg.Source.Fields), func() {}, nil
	case "clickhouse":
		client, err := ProvideClickHouseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		src := internalrepo.NewCHSeriesSource(client.DB(), cfg.ClickHouse.Database+"."+cfg.Source.Table)
		src.(*internalrepo.CHSeriesSource).SetLogger(l)
		cleanup := func() {
			if err := client.Close(); err != nil {
				l.Warn("clickhouse close error", applogger.Error(err))
			}
		}
		return src, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideSink selects the composite sink named by sink.type.
func ProvideSink(cfg *config.Config, reg *prometheus.Registry) (repository.CompositeSink, func(), error) {
	var sink repository.CompositeSink
	switch cfg.Sink.Type {
	case "console":
		sink = internalrepo.NewConsoleSink(os.Stdout, cfg.Sink.Preview)
	case "csv":
		sink = internalrepo.NewCSVSink(cfg.Sink.Path)
	case "json":
		sink = internalrepo.NewJSONSink(cfg.Sink.Path)
	case "kafka":
		producer, err := ProvideKafkaProducer(cfg, reg)
		if err != nil {
			return nil, nil, err
		}
		sink = internalrepo.NewKafkaSink(producer, cfg.Kafka.Topic)
	default:
		return nil, nil, fmt.Errorf("unknown sink type %q", cfg.Sink.Type)
	}
	return sink, func() { _ = sink.Close() }, nil
}

// ProvidePipeline creates the composite pipeline use case.
func ProvidePipeline(
	cfg *config.Config,
	source repository.SeriesSource,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.CompositePipeline {
	return usecase.NewCompositePipeline(source, m, l, usecase.PipelineConfig{
		TrendWindow:     cfg.Pipeline.TrendWindow,
		DisplayDays:     cfg.Pipeline.DisplayDays,
		Concurrency:     cfg.Source.Concurrency,
		FetchTimeout:    cfg.Source.Timeout,
		DuplicatePolicy: models.DuplicatePolicy(cfg.Pipeline.DuplicatePolicy),
	})
}

// ProvideTVLReport creates the protocol TVL report. It reads the protocol
// endpoint, or source.dir when source.type is "file".
func ProvideTVLReport(
	cfg *config.Config,
	l *applogger.Logger,
	httpClient *xhttp.Client,
	limiter *ratelimit.Limiter,
	br *breaker.Manager,
	m repository.Metrics,
) (*usecase.TVLReport, error) {
	var src repository.SeriesSource
	if cfg.Source.Type == "file" {
		src = internalrepo.NewFileSeriesSource(cfg.Source.Dir, cfg.TVLFields())
	} else {
		var err error
		src, err = llama.New(cfg.TVL.BaseURL, httpClient, limiter, br, cfg.TVLFields())
		if err != nil {
			return nil, fmt.Errorf("tvl source: %w", err)
		}
	}
	return usecase.NewTVLReport(src, m, l, usecase.PipelineConfig{
		Concurrency:     cfg.Source.Concurrency,
		FetchTimeout:    cfg.Source.Timeout,
		DuplicatePolicy: models.DuplicatePolicy(cfg.Pipeline.DuplicatePolicy),
	}), nil
}

// ProvideCompositeHandler creates the HTTP handler for serve mode.
func ProvideCompositeHandler(
	cfg *config.Config,
	l *applogger.Logger,
	p *usecase.CompositePipeline,
	tvl *usecase.TVLReport,
	source repository.SeriesSource,
) *api.CompositeEchoHandler {
	return api.NewCompositeEchoHandler(l, p, tvl, cfg.Entities, cfg.TVL.Protocols, source.Name())
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	p *usecase.CompositePipeline,
	tvl *usecase.TVLReport,
	sink repository.CompositeSink,
	h *api.CompositeEchoHandler,
	reg *prometheus.Registry,
) *server.App {
	return server.New(cfg, l, p, tvl, sink, h, reg)
}
