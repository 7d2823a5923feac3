package chat

import (
	"time"

	"go-courier/pkg/apperrors"
)

// Conversation is the durable pairing of two users. Rows are stored with the
// canonical ordering UserA < UserB so the unordered pair maps to exactly one
// record; the database enforces this with a unique index on (user_a, user_b).
type Conversation struct {
	ID            string     `db:"id"`
	UserA         string     `db:"user_a"`
	UserB         string     `db:"user_b"`
	LastMessage   string     `db:"last_message"`
	LastMessageAt *time.Time `db:"last_message_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

// CanonicalPair orders the two distinct user ids; it rejects self-pairs.
func CanonicalPair(userA, userB string) (string, string, error) {
	if userA == "" || userB == "" {
		return "", "", apperrors.InvalidArg("both user ids are required")
	}
	if userA == userB {
		return "", "", apperrors.ErrSelfConversation
	}
	if userA < userB {
		return userA, userB, nil
	}
	return userB, userA, nil
}

// Peer returns the other participant of the conversation.
func (c Conversation) Peer(userID string) string {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}
