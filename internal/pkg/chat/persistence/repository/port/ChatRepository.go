package repository

import (
	"context"
	"time"

	chat "go-courier/internal/pkg/chat/domain"
)

// ChatRepository defines persistence operations for the messaging core.
// The store is expected to enforce the unordered-pair uniqueness on
// conversations and to apply the bulk status updates atomically; the
// monotonic status walk relies on guarded single-statement updates.
type ChatRepository interface {
	// Users
	CreateUser(ctx context.Context, u chat.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*chat.User, error)
	GetUserByUsername(ctx context.Context, username string) (*chat.User, error)
	SetPresence(ctx context.Context, userID string, online bool, lastSeen *time.Time) error
	ListPeers(ctx context.Context, selfID string) ([]chat.PeerView, error)

	// Conversations
	ResolveConversation(ctx context.Context, userA, userB string) (*chat.Conversation, error)
	TouchConversation(ctx context.Context, conversationID string, text string, at time.Time) error

	// Messages
	InsertMessage(ctx context.Context, m chat.Message) (string, error)
	MarkDelivered(ctx context.Context, messageIDs []string, at time.Time) ([]chat.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string, messageIDs []string, at time.Time) ([]chat.Message, error)
	DeliverBacklog(ctx context.Context, recipientID string, at time.Time) ([]chat.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error)
}
