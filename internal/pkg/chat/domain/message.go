package chat

import (
	"strings"
	"time"

	"go-courier/pkg/apperrors"
)

// Status is the delivery state of a message. It only ever moves forward:
// sent -> delivered -> read (delivered may be skipped when the recipient
// stayed offline until they read from history).
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

var statusRank = map[Status]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// CanAdvanceTo reports whether moving from s to next respects the monotonic walk.
func (s Status) CanAdvanceTo(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Message is a single text message inside a conversation.
// CorrelationID is a client-supplied reconciliation handle for optimistic
// local echoes; it is carried back to the sender but never persisted.
type Message struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	RecipientID    string     `db:"recipient_id"`
	Text           string     `db:"text"`
	Status         Status     `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	DeliveredAt    *time.Time `db:"delivered_at"`
	ReadAt         *time.Time `db:"read_at"`

	CorrelationID string `db:"-"`
}

// NewMessage validates and normalizes a draft message ready to persist.
func NewMessage(m Message) (*Message, error) {
	if m.SenderID == "" || m.RecipientID == "" {
		return nil, apperrors.InvalidArg("sender and recipient are required")
	}
	if m.SenderID == m.RecipientID {
		return nil, apperrors.ErrSelfConversation
	}

	m.Text = strings.TrimSpace(m.Text)
	if m.Text == "" {
		return nil, apperrors.ErrEmptyText
	}

	if m.Status == "" {
		m.Status = StatusSent
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}
