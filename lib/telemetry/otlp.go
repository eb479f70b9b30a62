package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// otlpConfig points both signals at one collector, which is all a batch
// tool needs.
type otlpConfig struct {
	Endpoint string `json:"endpoint"`
	// Protocol selects the exporter, "grpc" (default) or "http".
	Protocol string            `json:"protocol"`
	Headers  map[string]string `json:"headers"`
}

type config struct {
	Otlp otlpConfig `json:"otlp"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, config config) (*trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter trace.SpanExporter
	var err error
	switch config.Otlp.Protocol {
	case "", "grpc":
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(config.Otlp.Endpoint),
			otlptracegrpc.WithHeaders(config.Otlp.Headers),
		)
	case "http":
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(config.Otlp.Endpoint),
			otlptracehttp.WithHeaders(config.Otlp.Headers),
		)
	default:
		err = fmt.Errorf("unknown otlp protocol %q", config.Otlp.Protocol)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("trace export initialized", "endpoint", config.Otlp.Endpoint)

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newMetricProvider(ctx context.Context, r *resource.Resource, config config) (*metric.MeterProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter metric.Exporter
	var err error
	switch config.Otlp.Protocol {
	case "", "grpc":
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(config.Otlp.Endpoint),
			otlpmetricgrpc.WithHeaders(config.Otlp.Headers),
		)
	case "http":
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(config.Otlp.Endpoint),
			otlpmetrichttp.WithHeaders(config.Otlp.Headers),
		)
	default:
		err = fmt.Errorf("unknown otlp protocol %q", config.Otlp.Protocol)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("metric export initialized", "endpoint", config.Otlp.Endpoint)

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Second*30))),
		metric.WithResource(r),
	), nil
}
