package session

import (
	"context"

	"github.com/octabyte/caisse-gommon/models"
)

type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is what listeners receive after every change. User is nil unless
// State is StateAuthenticated.
type Snapshot struct {
	State State
	User  *models.User
	Token string
}

type Listener func(Snapshot)

// Navigator moves the application to a view. The store only ever asks for
// the login view, after an eviction.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) {
	f(ctx, route)
}

// EventPublisher receives session lifecycle events; queue.Publisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, v interface{}) error
}
