package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	previous := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(func() { zap.ReplaceGlobals(previous) })
	return logs
}

func TestInfoCtxWithoutSpan(t *testing.T) {
	logs := observe(t)

	InfoCtx(context.Background(), "session restored", zap.String("role", "admin"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]interface{}{"role": "admin"}, entries[0].ContextMap())
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestErrorCtxAddsTraceAndError(t *testing.T) {
	logs := observe(t)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "refresh")
	defer span.End()

	ErrorCtx(ctx, "refresh failed", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, GetTraceID(ctx), fields["trace_id"])
}

func TestFormattedHelpers(t *testing.T) {
	logs := observe(t)

	InfofCtx(context.Background(), "page %d of %d", 1, 3)
	WarnfCtx(context.Background(), "slow call to %s", "admin/clients")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "page 1 of 3", entries[0].Message)
	assert.Equal(t, "slow call to admin/clients", entries[1].Message)
}
