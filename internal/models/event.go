package models

// User lifecycle event actions published to Kafka.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is the message published after a successful user mutation.
// It intentionally carries no credential material.
type UserEvent struct {
	EventID   string `json:"event_id"`  // UUID of the event itself
	Action    string `json:"action"`    // One of UserCreated/UserUpdated/UserDeleted
	UserID    string `json:"user_id"`   // Affected user
	Email     string `json:"email"`     // Email at the time of the event
	Timestamp int64  `json:"timestamp"` // Unix seconds
}
