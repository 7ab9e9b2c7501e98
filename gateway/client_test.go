package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type GatewayTestSuite struct {
	suite.Suite
	server   *httptest.Server
	client   *Client
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

func (s *GatewayTestSuite) SetupTest() {
	s.requests = nil
	s.status = http.StatusOK
	s.body = `{"ok":true}`

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.requests = append(s.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(raw),
		})
		status, body := s.status, s.body
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))

	client, err := New(Config{BaseURL: s.server.URL + "/api/"})
	s.Require().NoError(err)
	s.client = client
}

func (s *GatewayTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *GatewayTestSuite) respond(status int, body string) {
	s.mu.Lock()
	s.status, s.body = status, body
	s.mu.Unlock()
}

func (s *GatewayTestSuite) last() capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().NotEmpty(s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *GatewayTestSuite) TestAuthorizationHeaderFollowsToken() {
	steps := []struct {
		name     string
		token    string
		expected string
	}{
		{"no token", "", ""},
		{"token set", "T1", "Bearer T1"},
		{"token replaced", "T2", "Bearer T2"},
		{"token cleared", "", ""},
	}

	for _, step := range steps {
		s.Run(step.name, func() {
			s.client.SetToken(step.token)
			_, err := s.client.Request(context.Background(), http.MethodGet, "admin/clients", nil, nil)
			s.Require().NoError(err)

			header := s.last().Header
			if step.expected == "" {
				_, present := header[HeaderAuthorization]
				s.False(present, "no Authorization header expected")
			} else {
				s.Equal(step.expected, header.Get(HeaderAuthorization))
			}
		})
	}
}

func (s *GatewayTestSuite) TestSetTokenIsIdempotent() {
	s.client.SetToken("T1")
	s.client.SetToken("T1")
	s.Equal("T1", s.client.Token())

	_, err := s.client.Request(context.Background(), http.MethodGet, "user", nil, nil)
	s.Require().NoError(err)
	s.Equal([]string{"Bearer T1"}, s.last().Header.Values(HeaderAuthorization))
}

func (s *GatewayTestSuite) TestJSONNegotiationAndPath() {
	_, err := s.client.Request(context.Background(), http.MethodPost, "/paiements", map[string]interface{}{"montant": 1500}, nil)
	s.Require().NoError(err)

	req := s.last()
	s.Equal(http.MethodPost, req.Method)
	s.Equal("/api/paiements", req.Path)
	s.Equal("application/json", req.Header.Get("Accept"))
	s.Contains(req.Header.Get("Content-Type"), "application/json")
	s.JSONEq(`{"montant":1500}`, req.Body)
	s.NotEmpty(req.Header.Get(HeaderRequestID))
}

func (s *GatewayTestSuite) TestQueryParams() {
	_, err := s.client.Request(context.Background(), http.MethodGet, "paiements/mes-paiements", nil, map[string]string{"page": "2", "limit": "10"})
	s.Require().NoError(err)
	s.Equal("limit=10&page=2", s.last().Query)
}

func (s *GatewayTestSuite) TestDecodeResponse() {
	s.respond(http.StatusOK, `{"user":{"id":1,"role":"admin"},"token":"T1"}`)

	resp, err := s.client.Request(context.Background(), http.MethodPost, "auth/login", nil, nil)
	s.Require().NoError(err)

	var payload struct {
		Token string `json:"token"`
	}
	s.Require().NoError(resp.Decode(&payload))
	s.Equal("T1", payload.Token)
	s.Equal("admin", resp.Get("user.role").String())
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *GatewayTestSuite) TestUnauthorizedEvictsOnNonLoginPath() {
	var calls []*apierror.AuthorizationExpiredError
	s.client.SetUnauthorizedHandler(func(_ context.Context, err *apierror.AuthorizationExpiredError) {
		calls = append(calls, err)
	})
	s.client.SetToken("T1")
	s.respond(http.StatusUnauthorized, `{"message":"Unauthenticated"}`)

	resp, err := s.client.Request(context.Background(), http.MethodGet, "admin/clients", nil, nil)

	s.Nil(resp)
	s.ErrorIs(err, apierror.ErrAuthorizationExpired)
	s.Empty(s.client.Token())
	s.Require().Len(calls, 1)
	s.Equal("Unauthenticated", calls[0].Cause.Message)
	s.Equal("admin/clients", calls[0].Cause.Path)
	s.Equal("T1", calls[0].Token)
}

func (s *GatewayTestSuite) TestUnauthorizedForReplacedTokenKeepsCurrentToken() {
	var calls []*apierror.AuthorizationExpiredError
	s.client.SetUnauthorizedHandler(func(_ context.Context, err *apierror.AuthorizationExpiredError) {
		calls = append(calls, err)
	})
	s.client.SetToken("T2")
	s.respond(http.StatusUnauthorized, `{"message":"Unauthenticated"}`)

	_, err := s.client.Request(context.Background(), http.MethodGet, "user", nil, nil, WithBearer("T1"))

	s.ErrorIs(err, apierror.ErrAuthorizationExpired)
	s.Equal("T2", s.client.Token())
	s.Require().Len(calls, 1)
	s.Equal("T1", calls[0].Token)
}

func (s *GatewayTestSuite) TestUnauthorizedOnLoginIsPlainBackendError() {
	called := false
	s.client.SetUnauthorizedHandler(func(context.Context, *apierror.AuthorizationExpiredError) { called = true })
	s.client.SetToken("T1")
	s.respond(http.StatusUnauthorized, `{"message":"Identifiants invalides"}`)

	for _, path := range []string{"auth/login", "/auth/login"} {
		_, err := s.client.Request(context.Background(), http.MethodPost, path, nil, nil)

		var backendErr *apierror.BackendError
		s.Require().True(errors.As(err, &backendErr))
		s.Equal(http.StatusUnauthorized, backendErr.StatusCode)
		s.Equal("Identifiants invalides", backendErr.Message)
		s.NotErrorIs(err, apierror.ErrAuthorizationExpired)
	}

	s.False(called)
	s.Equal("T1", s.client.Token())
}

func (s *GatewayTestSuite) TestWithoutEvictionKeepsToken() {
	called := false
	s.client.SetUnauthorizedHandler(func(context.Context, *apierror.AuthorizationExpiredError) { called = true })
	s.client.SetToken("T1")
	s.respond(http.StatusUnauthorized, `{"message":"Unauthenticated"}`)

	_, err := s.client.Request(context.Background(), http.MethodPost, "auth/logout", nil, nil, WithoutEviction())

	s.ErrorIs(err, apierror.ErrBackend)
	s.NotErrorIs(err, apierror.ErrAuthorizationExpired)
	s.False(called)
	s.Equal("T1", s.client.Token())
}

func (s *GatewayTestSuite) TestWithBearerOverridesToken() {
	s.client.SetToken("")

	_, err := s.client.Request(context.Background(), http.MethodPost, "auth/logout", nil, nil, WithBearer("OLD"))
	s.Require().NoError(err)
	s.Equal("Bearer OLD", s.last().Header.Get(HeaderAuthorization))

	s.client.SetToken("T1")
	_, err = s.client.Request(context.Background(), http.MethodGet, "user", nil, nil, WithBearer(""))
	s.Require().NoError(err)
	_, present := s.last().Header[HeaderAuthorization]
	s.False(present)
}

func (s *GatewayTestSuite) TestOtherErrorsPassThrough() {
	s.respond(http.StatusUnprocessableEntity, `{"message":"Le montant doit être supérieur à 0","errors":{"montant":["invalid"]}}`)
	s.client.SetToken("T1")

	_, err := s.client.Request(context.Background(), http.MethodPost, "paiements", map[string]int{"montant": 0}, nil)

	var backendErr *apierror.BackendError
	s.Require().True(errors.As(err, &backendErr))
	s.Equal(http.StatusUnprocessableEntity, backendErr.StatusCode)
	s.Equal("Le montant doit être supérieur à 0", backendErr.Message)
	s.JSONEq(`{"message":"Le montant doit être supérieur à 0","errors":{"montant":["invalid"]}}`, string(backendErr.Body))
	s.Equal("T1", s.client.Token())
	s.mu.Lock()
	s.Len(s.requests, 1, "no retry")
	s.mu.Unlock()
}

func (s *GatewayTestSuite) TestRequestPropagatesTraceContext() {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("caisse-cli").Start(context.Background(), "whoami")
	_, err := s.client.Request(ctx, http.MethodGet, "user", nil, nil)
	span.End()
	s.Require().NoError(err)

	parts := strings.Split(s.last().Header.Get("traceparent"), "-")
	s.Require().Len(parts, 4)
	s.Equal(span.SpanContext().TraceID().String(), parts[1])

	ended := recorder.Ended()
	s.Require().Len(ended, 2)
	s.Equal("HTTP.gateway.user", ended[0].Name())
	s.Equal(span.SpanContext().SpanID(), ended[0].Parent().SpanID())
	s.Equal(ended[0].SpanContext().SpanID().String(), parts[2])
}

func TestGatewayTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := New(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = client.Request(context.Background(), http.MethodGet, "user", nil, nil)

	assert.ErrorIs(t, err, apierror.ErrNetwork)
	var netErr *apierror.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "user", netErr.Path)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	client, err := New(Config{BaseURL: DefaultBaseURL + "/"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.True(t, client.IsLoginPath("/auth/login?remember=1"))
	assert.False(t, client.IsLoginPath("auth/register"))
}
