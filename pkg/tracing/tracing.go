// Package tracing configures the OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

// Exporter names accepted by WithExporter.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ErrUnknownExporter is returned for an exporter name Init does not know.
var ErrUnknownExporter = errors.New("unknown trace exporter")

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Option configures Init.
type Option func(*settings)

type settings struct {
	serviceName    string
	serviceVersion string
	exporter       string
	endpoint       string
	sampleRate     float64
	writer         io.Writer
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.serviceName = name
		}
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(v string) Option {
	return func(s *settings) {
		if v != "" {
			s.serviceVersion = v
		}
	}
}

// WithExporter selects ExporterNone, ExporterStdout or ExporterOTLP.
func WithExporter(name string) Option {
	return func(s *settings) {
		s.exporter = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithOTLPEndpoint sets host:port of the OTLP/HTTP collector.
func WithOTLPEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.endpoint = endpoint
	}
}

// WithSampleRate sets the fraction of traces kept, in (0, 1].
func WithSampleRate(rate float64) Option {
	return func(s *settings) {
		if rate > 0 && rate <= 1 {
			s.sampleRate = rate
		}
	}
}

// WithWriter sends stdout-exported spans to w.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.writer = w
		}
	}
}

// Init installs a global tracer provider and W3C propagator. With
// ExporterNone it leaves the global no-op provider in place.
func Init(ctx context.Context, opts ...Option) (ShutdownFunc, error) {
	s := settings{
		serviceName:    "prepdeck",
		serviceVersion: "dev",
		exporter:       ExporterNone,
		sampleRate:     1,
		writer:         os.Stdout,
	}
	for _, opt := range opts {
		opt(&s)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch s.exporter {
	case "", ExporterNone:
		return func(context.Context) error { return nil }, nil
	case ExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithWriter(s.writer))
	case ExporterOTLP:
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
		if s.endpoint != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithEndpoint(s.endpoint))
		}
		exp, err = otlptracehttp.New(ctx, httpOpts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, s.exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", s.exporter, err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(s.serviceName),
			semconv.ServiceVersion(s.serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.sampleRate))),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
