package config

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/library-inventory-go/eventstore"
	"github.com/AntonStoeckl/library-inventory-go/eventstore/oteladapters"
)

// ObservabilityProviders holds the OpenTelemetry SDK providers and the eventstore adapters built on them.
type ObservabilityProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Resource       *resource.Resource

	MetricsCollector eventstore.ContextualMetricsCollector
	TracingCollector eventstore.TracingCollector
	ContextualLogger eventstore.ContextualLogger
}

// ObservabilityOption adds span processors or metric readers, e.g. exporters, to the providers.
type ObservabilityOption func(*observabilityConfig)

type observabilityConfig struct {
	traceOptions  []sdktrace.TracerProviderOption
	metricOptions []sdkmetric.Option
}

func WithSpanProcessor(processor sdktrace.SpanProcessor) ObservabilityOption {
	return func(c *observabilityConfig) {
		c.traceOptions = append(c.traceOptions, sdktrace.WithSpanProcessor(processor))
	}
}

func WithMetricReader(reader sdkmetric.Reader) ObservabilityOption {
	return func(c *observabilityConfig) {
		c.metricOptions = append(c.metricOptions, sdkmetric.WithReader(reader))
	}
}

// NewObservabilityProviders creates tracer and meter providers for serviceName, registers them globally
// and builds the eventstore adapters on top of them.
// Logs go through the otelslog bridge, so they reach whatever global LoggerProvider is installed.
func NewObservabilityProviders(
	ctx context.Context,
	serviceName string,
	serviceVersion string,
	options ...ObservabilityOption,
) (*ObservabilityProviders, error) {

	cfg := observabilityConfig{}
	for _, option := range options {
		option(&cfg)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(append(cfg.traceOptions, sdktrace.WithResource(res))...)
	meterProvider := sdkmetric.NewMeterProvider(append(cfg.metricOptions, sdkmetric.WithResource(res))...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &ObservabilityProviders{
		TracerProvider:   tracerProvider,
		MeterProvider:    meterProvider,
		Resource:         res,
		MetricsCollector: oteladapters.NewMetricsCollector(meterProvider.Meter(serviceName)),
		TracingCollector: oteladapters.NewTracingCollector(tracerProvider.Tracer(serviceName)),
		ContextualLogger: oteladapters.NewSlogBridgeLogger(serviceName),
	}, nil
}

// Shutdown flushes and stops both providers.
func (p *ObservabilityProviders) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}
