package otel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds OpenTelemetry provider configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Namespace groups the server and the CLI under one service namespace.
	Namespace   string
	Environment string // "development" or "production"
	Exporter    string // "stdout", "otlp" or "none"
	Insecure    bool   // use HTTP instead of HTTPS for OTLP
	// MetricInterval is how often metrics are pushed to the exporter.
	MetricInterval time.Duration
}

const defaultMetricInterval = 30 * time.Second

// ConfigFromEnv builds Config from OTEL_* environment variables.
func ConfigFromEnv() Config {
	env := envOrDefault("OTEL_ENVIRONMENT", "development")

	interval, err := time.ParseDuration(os.Getenv("OTEL_METRIC_INTERVAL"))
	if err != nil || interval <= 0 {
		interval = defaultMetricInterval
	}

	return Config{
		ServiceName:    envOrDefault("OTEL_SERVICE_NAME", "leadflow"),
		ServiceVersion: envOrDefault("OTEL_SERVICE_VERSION", "0.1.0"),
		Namespace:      envOrDefault("OTEL_SERVICE_NAMESPACE", "leadflow"),
		Environment:    env,
		Exporter:       envOrDefault("OTEL_EXPORTER", "stdout"),
		Insecure:       env == "development",
		MetricInterval: interval,
	}
}

// Providers holds initialized OTel providers and their shutdown function.
type Providers struct {
	Shutdown func(ctx context.Context) error
}

// Setup installs global tracer and meter providers for cfg. Shutdown must be
// called on exit to flush pending telemetry. The "none" exporter leaves the
// global no-op providers in place.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	if cfg.Exporter == "none" {
		return &Providers{Shutdown: func(context.Context) error { return nil }}, nil
	}

	res, err := Resource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	spans, err := spanExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating tracer provider: %w", err)
	}
	metrics, err := metricExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating meter provider: %w", err)
	}

	interval := cfg.MetricInterval
	if interval <= 0 {
		interval = defaultMetricInterval
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(spans),
	)
	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metrics, metric.WithInterval(interval))),
		metric.WithView(Views()...),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			wrapShutdown("tracer", tp.Shutdown(ctx)),
			wrapShutdown("meter", mp.Shutdown(ctx)),
		)
	}
	return &Providers{Shutdown: shutdown}, nil
}

// Resource describes this process: service identity, namespace,
// environment and host.
func Resource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	if cfg.Namespace != "" {
		attrs = append(attrs, semconv.ServiceNamespace(cfg.Namespace))
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(attrs...),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}
	return res, nil
}

// Views shapes the metric streams leadflow exports. Transition counts keep
// only the action and the resulting lead status, and statement latency uses
// buckets sized for an embedded database.
func Views() []metric.View {
	return []metric.View{
		metric.NewView(
			metric.Instrument{Name: "leadflow.transitions"},
			metric.Stream{AttributeFilter: attribute.NewAllowKeysFilter("action", "lead.status")},
		),
		metric.NewView(
			metric.Instrument{Name: "db.sql.latency"},
			metric.Stream{Aggregation: metric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
			}},
		),
	}
}

func spanExporter(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		var opts []otlptracehttp.Option
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return nil, unsupportedExporter(cfg.Exporter)
}

func metricExporter(ctx context.Context, cfg Config) (metric.Exporter, error) {
	switch cfg.Exporter {
	case "otlp":
		var opts []otlpmetrichttp.Option
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	case "stdout":
		return stdoutmetric.New()
	}
	return nil, unsupportedExporter(cfg.Exporter)
}

func unsupportedExporter(name string) error {
	return fmt.Errorf("unsupported exporter: %q (use \"stdout\", \"otlp\" or \"none\")", name)
}

func wrapShutdown(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s shutdown: %w", what, err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
