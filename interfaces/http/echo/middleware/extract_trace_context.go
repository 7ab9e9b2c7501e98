package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/octabyte/caisse-gommon/otel"
)

// ExtractTraceContext continues the caller's trace: the traceparent sent by
// the gateway ends up in the request context.
func ExtractTraceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(otel.ExtractTraceContext(req.Context(), req.Header)))
			return next(c)
		}
	}
}
