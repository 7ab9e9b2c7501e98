package logger

import (
	"context"
	"fmt"

	"github.com/octabyte/caisse-gommon/utils/logger"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InfoCtx logs an info message carrying the trace of ctx
func InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	logger.LogInfo(msg, withTrace(ctx, fields)...)
}

// WarnCtx logs a warning carrying the trace of ctx
func WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	logger.LogWarn(msg, withTrace(ctx, fields)...)
}

// DebugCtx logs a debug message carrying the trace of ctx
func DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	logger.LogDebug(msg, withTrace(ctx, fields)...)
}

// ErrorCtx logs err under msg carrying the trace of ctx
func ErrorCtx(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.LogError(msg, withTrace(ctx, fields)...)
}

func InfofCtx(ctx context.Context, format string, args ...interface{}) {
	logger.LogInfo(fmt.Sprintf(format, args...), withTrace(ctx, nil)...)
}

func WarnfCtx(ctx context.Context, format string, args ...interface{}) {
	logger.LogWarn(fmt.Sprintf(format, args...), withTrace(ctx, nil)...)
}

func withTrace(ctx context.Context, fields []zap.Field) []zap.Field {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return fields
	}
	return append(fields,
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}

// GetTraceID extracts the trace ID from context
func GetTraceID(ctx context.Context) string {
	spanContext := trace.SpanContextFromContext(ctx)
	if spanContext.IsValid() {
		return spanContext.TraceID().String()
	}
	return ""
}
