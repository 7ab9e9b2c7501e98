package session

type Option func(*Store)

func WithNavigator(n Navigator) Option {
	return func(s *Store) {
		s.navigator = n
	}
}

// WithEvents publishes lifecycle events to p. Publishing failures are logged.
func WithEvents(p EventPublisher) Option {
	return func(s *Store) {
		s.events = p
	}
}

// WithRemoteLogout toggles the best-effort auth/logout call made on Logout.
// It is on by default.
func WithRemoteLogout(enabled bool) Option {
	return func(s *Store) {
		s.remoteLogout = enabled
	}
}
