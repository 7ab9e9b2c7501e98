package enums

type SessionEventName string

const (
	SessionEventLogin      SessionEventName = "session.login"
	SessionEventRegistered SessionEventName = "session.registered"
	SessionEventLogout     SessionEventName = "session.logout"
	SessionEventEvicted    SessionEventName = "session.evicted"
)
