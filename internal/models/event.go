package models

import "time"

// User lifecycle event types.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is published after a successful mutation of a user.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     int       `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
