package middleware

const (
	Authorization     = "Authorization"
	SessionCookie     = "Session"
	RequestSessionKey = "requestSession"
	TokenKey          = "requestToken"

	MessageUnauthenticated = "Unauthenticated"
	MessageForbidden       = "Accès refusé"
)
