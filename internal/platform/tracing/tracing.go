// Package tracing configures OpenTelemetry tracing for the function hosts.
package tracing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/janisto/function-app-demo/internal/platform/config"
)

const instrumentationName = "github.com/janisto/function-app-demo"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Options selects the exporter and the resource identity.
type Options struct {
	Exporter       string
	ServiceName    string
	ServiceVersion string
	// Writer receives stdout exporter output. Nil means os.Stdout.
	Writer io.Writer
	// Synchronous exports each span as it ends instead of batching.
	Synchronous bool
}

// Setup installs the W3C propagator and, unless the exporter is "none", a
// global tracer provider. The returned shutdown is always safe to call.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	noop := func(context.Context) error { return nil }
	switch opts.Exporter {
	case "", config.ExporterNone:
		return noop, nil
	case config.ExporterStdout:
	default:
		return noop, fmt.Errorf("unknown tracing exporter %q", opts.Exporter)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return noop, fmt.Errorf("create stdout exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.ServiceVersion),
	))
	if err != nil {
		return noop, fmt.Errorf("build resource: %w", err)
	}

	export := sdktrace.WithBatcher(exporter)
	if opts.Synchronous {
		export = sdktrace.WithSyncer(exporter)
	}
	tp := sdktrace.NewTracerProvider(export, sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Middleware starts a server span per request and extracts incoming trace context.
func Middleware(operation string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(operation)
}

// StartInvocation starts a span around one function invocation.
func StartInvocation(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name,
		trace.WithAttributes(attribute.String("faas.name", name)),
	)
}
