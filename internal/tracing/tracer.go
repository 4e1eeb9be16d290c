// Package tracing installs the OpenTelemetry provider that exports scrape
// and sidecar fetch spans to Jaeger.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/songzhibin97/metricsd/internal/config"
)

const (
	batchTimeout   = 5 * time.Second
	maxExportBatch = 512
)

// TracerProvider owns the SDK provider when tracing is enabled. The zero
// value falls back to the global provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTracerProvider installs a Jaeger-backed provider and the W3C trace
// context and baggage propagators as the otel globals. When tracing is
// disabled nothing global changes.
func NewTracerProvider(cfg *config.TracingConfig, version string) (*TracerProvider, error) {
	if cfg == nil || !cfg.Enabled {
		return &TracerProvider{}, nil
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(cfg.Jaeger.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Jaeger.Endpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.Jaeger.SampleRate)),
		sdktrace.WithBatcher(exp,
			sdktrace.WithBatchTimeout(batchTimeout),
			sdktrace.WithMaxExportBatchSize(maxExportBatch),
		),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{provider: provider}, nil
}

// sampler keeps every trace at rate 1 or above and otherwise samples root
// spans by trace ID while following the caller's decision
func sampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// Tracer returns a named tracer from the installed provider, or from the
// otel global when tracing is disabled
func (tp *TracerProvider) Tracer(name string) trace.Tracer {
	if !tp.IsEnabled() {
		return otel.Tracer(name)
	}
	return tp.provider.Tracer(name)
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp != nil && tp.provider != nil
}

// Shutdown exports pending spans and stops the provider. Both steps run
// even if the flush fails.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if !tp.IsEnabled() {
		return nil
	}

	var errs []error
	if err := tp.provider.ForceFlush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush tracer: %w", err))
	}
	if err := tp.provider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown tracer: %w", err))
	}
	return errors.Join(errs...)
}
