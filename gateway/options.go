package gateway

import (
	"net/http"

	"go.uber.org/zap"
)

type Option func(*Client)

// WithHTTPClient sets the transport client used underneath resty.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

type callOptions struct {
	bearer     string
	hasBearer  bool
	noEviction bool
}

type CallOption func(*callOptions)

// WithBearer sends token instead of the client's current token for one call.
func WithBearer(token string) CallOption {
	return func(o *callOptions) {
		o.bearer = token
		o.hasBearer = true
	}
}

// WithoutEviction reports a 401 as a plain BackendError and leaves the
// session alone.
func WithoutEviction() CallOption {
	return func(o *callOptions) {
		o.noEviction = true
	}
}
