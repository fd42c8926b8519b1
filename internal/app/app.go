package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"openml-schema-check/internal/check"
	"openml-schema-check/internal/config"
	"openml-schema-check/internal/dataset"
	"openml-schema-check/internal/events"
	"openml-schema-check/internal/failure"
	"openml-schema-check/internal/observability/logging"
	"openml-schema-check/internal/observability/metrics"
	"openml-schema-check/internal/report"
	"openml-schema-check/internal/schema"
	"openml-schema-check/internal/source"
	"openml-schema-check/internal/source/httpsource"
)

const shutdownTimeout = 10 * time.Second

// Application holds process-wide state for one validation run.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	registry  *prometheus.Registry
	pusher    *metrics.Pusher
	publisher *events.Publisher
	runner    *check.Runner
	url       string
}

// Option overrides a dependency of the application.
type Option func(*options)

type options struct {
	fetcher source.Fetcher
	stdout  io.Writer
	url     string
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f source.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithStdout redirects the console report.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithURL validates url instead of the pinned snapshot.
func WithURL(url string) Option {
	return func(o *options) { o.url = url }
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Config, opts ...Option) *Application {
	o := options{stdout: os.Stdout, url: check.DatasetURL}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Application{
		Cfg:      cfg,
		registry: prometheus.NewRegistry(),
		url:      o.url,
	}
	a.setupLogger()

	m := metrics.NewMetrics(a.registry)
	a.pusher = metrics.NewPusher(cfg.Observability.PushgatewayURL, cfg.Observability.MetricsJob, a.registry)
	a.publisher = events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.TopicReport,
		Principal: cfg.Kafka.Principal,
	}, m)

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = httpsource.New(httpsource.DefaultConfig())
	}

	a.runner = check.New(check.Options{
		Fetcher:   fetcher,
		Decoder:   dataset.NewDecoder(nil),
		Validator: schema.New(),
		Publisher: a.publisher,
		Metrics:   m,
		Console:   report.NewConsole(o.stdout),
		IDs:       check.NewIDGenerator(cfg.Service.Principal),
	})

	a.Logger.Info().
		Str("method", "New").
		Bool("kafkaEnabled", a.publisher.Enabled()).
		Bool("metricsPush", a.pusher.Enabled()).
		Msg("Schema check application created")
	return a
}

// setupLogger configures zerolog from the observability settings. Logs go
// to stderr so stdout carries only the console report.
func (a *Application) setupLogger() {
	a.Logger = logging.Init(logging.Config{
		Level:  a.Cfg.Observability.LogLevel,
		Format: a.Cfg.Observability.LogFormat,
	}).With().Str("component", "application").Logger()

	a.Logger.Debug().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Str("environment", a.Cfg.Service.Environment).
		Msg("Logger setup completed")
}

// Run executes one validation and returns the process exit code.
func (a *Application) Run(ctx context.Context) int {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Str("method", "Run").
		Time("startupTime", a.StartupTime).
		Str("datasetUrl", a.url).
		Msg("Schema check starting")

	_, err := a.runner.Run(ctx, a.url)
	a.Shutdown(ctx)
	return failure.ExitCode(err)
}

// Shutdown pushes metrics and closes the publisher. Failures are logged
// and never change the run outcome.
func (a *Application) Shutdown(ctx context.Context) {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.pusher.Push(sctx); err != nil {
		shutdownLogger.Warn().Err(err).Msg("Metrics push failed")
	}
	if err := a.publisher.Close(); err != nil {
		shutdownLogger.Warn().Err(err).Msg("Failed to close report publisher")
	}
	shutdownLogger.Debug().Msg("Schema check shut down")
}
