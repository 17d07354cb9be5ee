// Package traces provides OpenTelemetry distributed tracing for the fraud scoring service.
package traces

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/NOURDINED-MED/fraudscore"

// Init initializes the OpenTelemetry tracer provider.
// If otlpEndpoint is empty, a no-op provider is used.
// Returns a shutdown function that should be called on server stop.
func Init(ctx context.Context, otlpEndpoint string, logger *slog.Logger) (func(context.Context) error, error) {
	if otlpEndpoint == "" {
		logger.Info("tracing disabled (no OTEL_EXPORTER_OTLP_ENDPOINT set)")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(otlpEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("fraudscore"),
			semconv.ServiceVersion("0.1.0"),
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

	logger.Info("tracing enabled", "endpoint", otlpEndpoint)
	return tp.Shutdown, nil
}

// StartSpan starts a new span with the given name and returns the updated context and span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// Common attribute helpers for consistent span decoration.

func CustomerID(id string) attribute.KeyValue {
	return attribute.String("customer.id", id)
}

func TransactionID(id string) attribute.KeyValue {
	return attribute.String("transaction.id", id)
}

func Score(score int) attribute.KeyValue {
	return attribute.Int("fraud.score", score)
}

func Flagged(flagged bool) attribute.KeyValue {
	return attribute.Bool("fraud.flagged", flagged)
}
