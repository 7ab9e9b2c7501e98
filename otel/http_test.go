package otel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return recorder
}

// traceIDOf reads the trace ID out of a 00-<trace>-<span>-<flags> header.
func traceIDOf(t *testing.T, traceparent string) string {
	t.Helper()

	parts := strings.Split(traceparent, "-")
	require.Len(t, parts, 4, "traceparent %q", traceparent)
	return parts[1]
}

func TestWithTraceHeadersSendsSpanTraceID(t *testing.T) {
	useRecorder(t)

	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ctx, finish := StartHTTPSpan(context.Background(), "caisse", "gateway", "user", http.MethodGet, server.URL, "/user")
	client := resty.New().SetBaseURL(server.URL).OnBeforeRequest(WithTraceHeaders)

	resp, err := client.R().SetContext(ctx).Get("/user")
	require.NoError(t, err)
	finish(resp.StatusCode(), nil)

	assert.Equal(t, trace.SpanContextFromContext(ctx).TraceID().String(), traceIDOf(t, received))
}

func TestWithTraceHeadersWithoutSpan(t *testing.T) {
	useRecorder(t)

	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("traceparent")
	}))
	defer server.Close()

	_, err := resty.New().SetBaseURL(server.URL).OnBeforeRequest(WithTraceHeaders).R().Get("/user")
	require.NoError(t, err)

	assert.Empty(t, received)
}

func TestExtractTraceContextContinuesTrace(t *testing.T) {
	useRecorder(t)

	ctx, finish := StartHTTPSpan(context.Background(), "caisse", "gateway", "auth/logout", http.MethodPost, "http://localhost:8000/api/", "auth/logout")
	defer finish(http.StatusNoContent, nil)

	header := http.Header{}
	for k, v := range InjectTraceHeaders(ctx, nil) {
		header.Set(k, v)
	}

	remote := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), header))
	require.True(t, remote.IsValid())
	assert.True(t, remote.IsRemote())
	assert.Equal(t, trace.SpanContextFromContext(ctx).TraceID(), remote.TraceID())

	empty := ExtractTraceContext(context.Background(), http.Header{})
	assert.False(t, trace.SpanContextFromContext(empty).IsValid())
}

func TestStartHTTPSpanRecordsStatus(t *testing.T) {
	recorder := useRecorder(t)

	_, finish := StartHTTPSpan(context.Background(), "caisse", "gateway", "admin/clients", "GET", "http://localhost:8000/api/", "admin/clients")
	finish(http.StatusForbidden, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP.gateway.admin/clients", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "HTTP 403", spans[0].Status().Description)

	var status int64
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "http.response.status_code" {
			status = attr.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(http.StatusForbidden), status)
}

func TestStartHTTPSpanRecordsTransportError(t *testing.T) {
	recorder := useRecorder(t)

	_, finish := StartHTTPSpan(context.Background(), "caisse", "gateway", "paiements", "POST", "http://localhost:8000/api/", "paiements")
	finish(0, assert.AnError)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, assert.AnError.Error(), spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)

	_, finish = StartHTTPSpan(context.Background(), "caisse", "gateway", "user", "GET", "http://localhost:8000/api/", "user")
	finish(http.StatusOK, nil)
	assert.Equal(t, codes.Ok, recorder.Ended()[1].Status().Code)
}
