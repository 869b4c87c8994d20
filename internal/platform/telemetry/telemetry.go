// Package telemetry configures OpenTelemetry metric and trace export
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveysync/internal/platform/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Options configures exporters; an empty Endpoint keeps the global no-op providers
type Options struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	ExportInterval time.Duration
}

// FromConfig reads OTEL_ENDPOINT, OTEL_INSECURE and OTEL_INTERVAL
func FromConfig(cfg config.Conf, service, version string) Options {
	c := cfg.Prefix("OTEL_")
	return Options{
		Endpoint:       c.MayString("ENDPOINT", ""),
		Insecure:       c.MayBool("INSECURE", false),
		ServiceName:    service,
		ServiceVersion: version,
		ExportInterval: c.MayDuration("INTERVAL", 15*time.Second),
	}
}

// Shutdown flushes and stops the installed providers
type Shutdown func(ctx context.Context) error

// Init installs global meter and tracer providers
func Init(ctx context.Context, o Options) (Shutdown, error) {
	if o.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(o.ServiceName),
			semconv.ServiceVersionKey.String(o.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(o.Endpoint)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(o.Endpoint)}
	if o.Insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	traceExp, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)

	metricExp, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: metric exporter: %w", err)
	}
	interval := o.ExportInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// Meter returns a meter from the global provider
func Meter(name string) metric.Meter { return otel.GetMeterProvider().Meter(name) }

// Tracer returns a tracer from the global provider
func Tracer(name string) trace.Tracer { return otel.GetTracerProvider().Tracer(name) }
