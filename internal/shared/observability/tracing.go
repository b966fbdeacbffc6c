package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bindgen"

// Tracer delegates to the global provider, so spans are dropped until
// InitTracer installs an exporting one.
var Tracer trace.Tracer = otel.Tracer(instrumentationName)

type TracingOptions struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Version     string
}

// InitTracer installs an OTLP/gRPC exporting tracer provider. With no
// endpoint it does nothing. The returned function flushes and stops the
// exporter.
func InitTracer(ctx context.Context, opts TracingOptions) (func(context.Context) error, error) {
	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("service.version", opts.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("tracing enabled", "endpoint", opts.Endpoint)
	return tp.Shutdown, nil
}
