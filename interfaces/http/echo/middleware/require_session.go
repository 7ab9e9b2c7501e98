package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/octabyte/caisse-gommon/enums"
	"github.com/octabyte/caisse-gommon/models"
	ctxutils "github.com/octabyte/caisse-gommon/utils/context"
)

// SessionResolver maps a bearer token to the user it was issued to.
type SessionResolver func(token string) (models.User, bool)

// RequireSession answers 401 {"message":"Unauthenticated"} unless the token set
// by SetTokenInContext resolves to a user, which is then put in context.
func RequireSession(resolve SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, _ := c.Get(TokenKey).(string)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": MessageUnauthenticated})
			}

			user, ok := resolve(token)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": MessageUnauthenticated})
			}

			c.Set(RequestSessionKey, user)
			c.SetRequest(c.Request().WithContext(ctxutils.WithUser(c.Request().Context(), user)))
			return next(c)
		}
	}
}

// RequireRole answers 403 unless the session user has one of roles.
func RequireRole(roles ...enums.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := ctxutils.GetUserFromContext(c.Request().Context())
			if ok {
				for _, role := range roles {
					if user.Role == role {
						return next(c)
					}
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"message": MessageForbidden})
		}
	}
}

// SessionUser returns the user stored by RequireSession.
func SessionUser(c echo.Context) models.User {
	user, _ := c.Get(RequestSessionKey).(models.User)
	return user
}
