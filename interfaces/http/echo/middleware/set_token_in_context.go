package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/octabyte/caisse-gommon/utils"
	ctxutils "github.com/octabyte/caisse-gommon/utils/context"
)

// SetTokenInContext extracts the bearer token and stores it both on the echo
// context and on the request context.
func SetTokenInContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// First, look in the request header for the Authorization key
			token := utils.TokenFromBearerHeader(c.Request().Header.Get(Authorization))

			// If no present, look in cookie
			if token == "" {
				cookie, err := c.Cookie(SessionCookie)
				if err != nil {
					if !errors.Is(err, http.ErrNoCookie) {
						log.Errorf("Error retrieving session cookie: %v", err)
					}
				} else {
					token = cookie.Value
				}
			}

			if token != "" {
				c.Set(TokenKey, token)
				c.SetRequest(c.Request().WithContext(ctxutils.WithToken(c.Request().Context(), token)))
			}
			return next(c)
		}
	}
}
