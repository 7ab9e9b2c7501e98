package models

import (
	"time"

	"github.com/octabyte/caisse-gommon/enums"
)

// SessionEvent is published on every session lifecycle transition. It never
// carries the bearer token.
type SessionEvent struct {
	EventName enums.SessionEventName `json:"event_name"`
	UserID    uint64                 `json:"user_id"`
	Email     string                 `json:"email,omitempty"`
	Role      enums.Role             `json:"role,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewSessionEvent(name enums.SessionEventName, user User) SessionEvent {
	return SessionEvent{
		EventName: name,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Timestamp: time.Now().UTC(),
	}
}
