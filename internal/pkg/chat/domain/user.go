package chat

import "time"

// User identity as the messaging core sees it. Presence fields are mutated
// only by the presence tracker.
type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Online       bool       `db:"online"`
	LastSeen     *time.Time `db:"last_seen"`
	CreatedAt    time.Time  `db:"created_at"`
}

// PeerView is the peer-list projection: one row per other user, annotated with
// presence and the last message exchanged with them, if any.
type PeerView struct {
	User           User
	ConversationID *string
	LastMessage    *string
	LastMessageAt  *time.Time
	LastMessageBy  *string
}

// PresenceEvent is the transient broadcast emitted on online/offline edges.
// It is never stored.
type PresenceEvent struct {
	UserID   string
	Online   bool
	LastSeen *time.Time
}
