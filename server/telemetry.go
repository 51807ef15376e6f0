package server

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

type ShutdownFn func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// TelemetryInitFn installs the global telemetry providers for a server run.
type TelemetryInitFn func(ctx context.Context, cfg TelemetryConfig) (ShutdownFn, error)

func newMeterProvider(res *resource.Resource, reader metric.Reader) *metric.MeterProvider {
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(reader))
}

func newTracerProvider(res *resource.Resource, spanExporter trace.SpanExporter) *trace.TracerProvider {
	return trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.AlwaysSample())),
		trace.WithResource(res),
		trace.WithBatcher(spanExporter),
	)
}

func telemetryResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		// the service name used to display traces and metrics in the backend
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize telemetry resource: %w", err)
	}
	return res, nil
}

// NewPrometheusExporter registers the otel metric reader on registerer. A nil
// registerer means the default prometheus registry served by promhttp.
func NewPrometheusExporter(registerer prometheus.Registerer) (*otelprom.Exporter, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	exporter, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	return exporter, nil
}

// NewOTLPTraceExporter does not wait for the collector: the gRPC connection
// is established lazily and spans are dropped while it is unreachable.
func NewOTLPTraceExporter(ctx context.Context, otlpEndpoint string) (*otlptrace.Exporter, error) {
	traceClient := otlptracegrpc.NewClient(
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(otlpEndpoint))
	traceExp, err := otlptrace.New(ctx, traceClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create the collector trace exporter: %w", err)
	}
	return traceExp, nil
}

func initTelemetry(ctx context.Context, cfg TelemetryConfig) (ShutdownFn, error) {
	return initTelemetryWith(ctx, cfg, prometheus.DefaultRegisterer)
}

// initTelemetryWith installs the global meter provider and, when an OTLP
// endpoint is configured, the global tracer provider.
func initTelemetryWith(ctx context.Context, cfg TelemetryConfig, registerer prometheus.Registerer) (ShutdownFn, error) {
	res, err := telemetryResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	exporter, err := NewPrometheusExporter(registerer)
	if err != nil {
		return nil, err
	}
	meterProvider := newMeterProvider(res, exporter)

	traceShutdown := ShutdownFn(noopShutdown)
	if cfg.OTLPEndpoint != "" {
		spanExporter, err := NewOTLPTraceExporter(ctx, cfg.OTLPEndpoint)
		if err != nil {
			_ = meterProvider.Shutdown(ctx)
			return nil, err
		}
		log.Info().Str("endpoint", cfg.OTLPEndpoint).Msg("exporting traces over OTLP")
		tracerProvider := newTracerProvider(res, spanExporter)
		otel.SetTracerProvider(tracerProvider)
		traceShutdown = tracerProvider.Shutdown
	}
	otel.SetMeterProvider(meterProvider)

	return func(ctx context.Context) error {
		if err := traceShutdown(ctx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
		return meterProvider.Shutdown(ctx)
	}, nil
}
