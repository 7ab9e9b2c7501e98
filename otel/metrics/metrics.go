package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter metric.Meter

	// Gateway metrics
	gatewayRequestsTotal   metric.Int64Counter
	gatewayRequestDuration metric.Float64Histogram

	// Session metrics
	sessionTransitionsTotal metric.Int64Counter
	sessionEvictionsTotal   metric.Int64Counter
)

// Init creates the instruments on the global meter provider. Recording before
// Init is a no-op.
func Init(serviceName string) error {
	meter = otel.Meter(serviceName)

	var err error

	gatewayRequestsTotal, err = meter.Int64Counter(
		"gateway_requests_total",
		metric.WithDescription("Total number of backend calls issued by the gateway"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway_requests_total counter: %w", err)
	}

	gatewayRequestDuration, err = meter.Float64Histogram(
		"gateway_request_duration_seconds",
		metric.WithDescription("Backend call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway_request_duration_seconds histogram: %w", err)
	}

	sessionTransitionsTotal, err = meter.Int64Counter(
		"session_transitions_total",
		metric.WithDescription("Session state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create session_transitions_total counter: %w", err)
	}

	sessionEvictionsTotal, err = meter.Int64Counter(
		"session_evictions_total",
		metric.WithDescription("Sessions evicted after an unauthorized response"),
		metric.WithUnit("{eviction}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create session_evictions_total counter: %w", err)
	}

	return nil
}

// RecordGatewayCall records one backend call. statusCode is 0 when no
// response was received.
func RecordGatewayCall(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
		attribute.Bool("success", statusCode >= 200 && statusCode < 300),
	}

	if gatewayRequestsTotal != nil {
		gatewayRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if gatewayRequestDuration != nil {
		gatewayRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
}

func RecordSessionTransition(ctx context.Context, from, to string) {
	if sessionTransitionsTotal != nil {
		sessionTransitionsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", from),
			attribute.String("to", to),
		))
	}
}

func RecordEviction(ctx context.Context) {
	if sessionEvictionsTotal != nil {
		sessionEvictionsTotal.Add(ctx, 1)
	}
}
