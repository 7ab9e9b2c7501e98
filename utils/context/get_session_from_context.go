package context

import (
	"github.com/octabyte/caisse-gommon/models"
	"golang.org/x/net/context"
)

type sessionKey struct{}

func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, sessionKey{}, user)
}

// GetUserFromContext returns the authenticated user stored by WithUser.
func GetUserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(sessionKey{}).(models.User)
	return user, ok
}
