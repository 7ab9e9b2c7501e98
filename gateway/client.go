package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/octabyte/caisse-gommon/apierror"
	"github.com/octabyte/caisse-gommon/otel"
	otellogger "github.com/octabyte/caisse-gommon/otel/logger"
	"github.com/octabyte/caisse-gommon/otel/metrics"
	"github.com/octabyte/caisse-gommon/utils"
	"go.uber.org/zap"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	mimeJSON            = "application/json"
)

// UnauthorizedHandler is told about every 401 that means the session is no
// longer valid. The gateway has already dropped its token when it runs.
type UnauthorizedHandler func(ctx context.Context, err *apierror.AuthorizationExpiredError)

// Client is the single outbound HTTP client to the Caisse backend.
type Client struct {
	rest       *resty.Client
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized UnauthorizedHandler
}

type bearerOverrideKey struct{}

func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.L().Named("gateway")
	}

	if c.httpClient != nil {
		c.rest = resty.NewWithClient(c.httpClient)
	} else {
		c.rest = resty.New()
	}

	c.rest.
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", mimeJSON).
		SetHeader("Accept", mimeJSON).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetLogger(c.logger.Sugar()).
		OnBeforeRequest(c.injectBearer).
		OnBeforeRequest(injectRequestID).
		OnBeforeRequest(otel.WithTraceHeaders)

	return c, nil
}

// SetToken sets the bearer token sent with every following request; an empty
// token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetUnauthorizedHandler replaces the handler; there is only ever one.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.mu.Lock()
	c.onUnauthorized = h
	c.mu.Unlock()
}

func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

func (c *Client) LoginPath() string {
	return c.cfg.LoginPath
}

func (c *Client) IsLoginPath(path string) bool {
	return normalizePath(path) == normalizePath(c.cfg.LoginPath)
}

// Request calls baseURL + path. body is sent as JSON when non-nil and query
// becomes the query string. Non-2xx answers come back as *apierror.BackendError
// (or *apierror.AuthorizationExpiredError for a non-login 401) and transport
// failures as *apierror.NetworkError.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, query map[string]string, opts ...CallOption) (*Response, error) {
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	ctx, finish := otel.StartHTTPSpan(ctx, c.cfg.ServiceName, "gateway", normalizePath(path), method, c.cfg.BaseURL, path)
	if call.hasBearer {
		ctx = context.WithValue(ctx, bearerOverrideKey{}, call.bearer)
	}

	req := c.rest.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		finish(0, err)
		metrics.RecordGatewayCall(ctx, method, path, 0, time.Since(start))
		otellogger.ErrorCtx(ctx, "backend unreachable", err, zap.String("method", method), zap.String("path", path))
		return nil, &apierror.NetworkError{Method: method, Path: path, Err: err}
	}

	status := resp.StatusCode()
	finish(status, nil)
	metrics.RecordGatewayCall(ctx, method, path, status, time.Since(start))
	otellogger.DebugCtx(ctx, "backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)

	if status >= 200 && status < 300 {
		return &Response{StatusCode: status, Header: resp.Header(), Body: resp.Body()}, nil
	}

	backendErr := apierror.NewBackendError(method, path, status, resp.Body())
	if status == http.StatusUnauthorized && !call.noEviction && !c.IsLoginPath(path) {
		sent := utils.TokenFromBearerHeader(req.Header.Get(HeaderAuthorization))
		return nil, c.expire(ctx, backendErr, sent)
	}

	return nil, backendErr
}

// expire clears the token only when it is still the one that was rejected.
func (c *Client) expire(ctx context.Context, cause *apierror.BackendError, sent string) error {
	expired := &apierror.AuthorizationExpiredError{Cause: cause, Token: sent}

	c.mu.Lock()
	if c.token == sent {
		c.token = ""
	}
	handler := c.onUnauthorized
	c.mu.Unlock()

	otellogger.WarnCtx(ctx, "authorization expired", zap.String("path", cause.Path), zap.String("message", cause.Message))
	if handler != nil {
		handler(ctx, expired)
	}

	return expired
}

// injectBearer runs for every request so that a token set after the client
// was built is picked up.
func (c *Client) injectBearer(_ *resty.Client, req *resty.Request) error {
	token, overridden := req.Context().Value(bearerOverrideKey{}).(string)
	if !overridden {
		token = c.Token()
	}
	if token != "" {
		req.SetHeader(HeaderAuthorization, utils.BearerHeader(token))
	}
	return nil
}

func injectRequestID(_ *resty.Client, req *resty.Request) error {
	if req.Header.Get(HeaderRequestID) == "" {
		req.SetHeader(HeaderRequestID, uuid.NewString())
	}
	return nil
}
