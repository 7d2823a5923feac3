package adapter

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	chat "go-courier/internal/pkg/chat/domain"
	"go-courier/pkg/apperrors"
)

// PgChatRepository is the pgx-backed store for users, conversations and messages.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

const messageColumns = `id::text, conversation_id::text, sender_id::text, recipient_id::text, text, status, created_at, delivered_at, read_at`

func scanMessage(row pgx.Row) (chat.Message, error) {
	var m chat.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.RecipientID, &m.Text, &m.Status, &m.CreatedAt, &m.DeliveredAt, &m.ReadAt)
	return m, err
}

func collectMessages(rows pgx.Rows) ([]chat.Message, error) {
	defer rows.Close()
	var msgs []chat.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ===================== Users =====================

func (r *PgChatRepository) CreateUser(ctx context.Context, u chat.User) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.users (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, u.Username, u.PasswordHash, u.CreatedAt).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "chatRepo.CreateUser.Insert")
	}
	return id, nil
}

func (r *PgChatRepository) GetUserByID(ctx context.Context, id string) (*chat.User, error) {
	return r.getUser(ctx, `WHERE id = $1::uuid`, id)
}

func (r *PgChatRepository) GetUserByUsername(ctx context.Context, username string) (*chat.User, error) {
	return r.getUser(ctx, `WHERE username = $1`, username)
}

func (r *PgChatRepository) getUser(ctx context.Context, where string, arg any) (*chat.User, error) {
	var u chat.User
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, username, password_hash, online, last_seen, created_at
		FROM chat.users `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Online, &u.LastSeen, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "chatRepo.getUser.Scan")
	}
	return &u, nil
}

func (r *PgChatRepository) SetPresence(ctx context.Context, userID string, online bool, lastSeen *time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.users SET online = $2, last_seen = $3 WHERE id = $1::uuid
	`, userID, online, lastSeen)
	return errors.Wrap(err, "chatRepo.SetPresence.Exec")
}

// ListPeers returns every other user annotated with the conversation shared
// with selfID (if any) and its last-message preview.
func (r *PgChatRepository) ListPeers(ctx context.Context, selfID string) ([]chat.PeerView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id::text, u.username, u.online, u.last_seen, u.created_at,
		       c.id::text, c.last_message, c.last_message_at, m.sender_id::text
		FROM chat.users u
		LEFT JOIN chat.conversation c
		       ON c.user_a = least(u.id, $1::uuid) AND c.user_b = greatest(u.id, $1::uuid)
		LEFT JOIN LATERAL (
			SELECT sender_id FROM chat.message
			WHERE conversation_id = c.id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON true
		WHERE u.id <> $1::uuid
		ORDER BY c.last_message_at DESC NULLS LAST, u.username ASC
	`, selfID)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.ListPeers.Query")
	}
	defer rows.Close()

	var peers []chat.PeerView
	for rows.Next() {
		var p chat.PeerView
		if err := rows.Scan(
			&p.User.ID, &p.User.Username, &p.User.Online, &p.User.LastSeen, &p.User.CreatedAt,
			&p.ConversationID, &p.LastMessage, &p.LastMessageAt, &p.LastMessageBy,
		); err != nil {
			return nil, errors.Wrap(err, "chatRepo.ListPeers.Scan")
		}
		peers = append(peers, p)
	}
	return peers, errors.Wrap(rows.Err(), "chatRepo.ListPeers.Rows")
}

// ===================== Conversations =====================

// ResolveConversation returns the conversation for the unordered pair, creating
// it on first contact. Two racing first-contacts are resolved by the unique
// index on (user_a, user_b): the loser's insert hits the conflict and falls
// through to the select of the winner's row.
func (r *PgChatRepository) ResolveConversation(ctx context.Context, userA, userB string) (*chat.Conversation, error) {
	a, b, err := chat.CanonicalPair(userA, userB)
	if err != nil {
		return nil, err
	}

	var c chat.Conversation
	err = r.pool.QueryRow(ctx, `
		INSERT INTO chat.conversation (user_a, user_b, created_at)
		VALUES (least($1::uuid, $2::uuid), greatest($1::uuid, $2::uuid), now())
		ON CONFLICT (user_a, user_b) DO NOTHING
		RETURNING id::text, user_a::text, user_b::text, last_message, last_message_at, created_at
	`, a, b).Scan(&c.ID, &c.UserA, &c.UserB, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(err, "chatRepo.ResolveConversation.Insert")
	}

	err = r.pool.QueryRow(ctx, `
		SELECT id::text, user_a::text, user_b::text, last_message, last_message_at, created_at
		FROM chat.conversation
		WHERE user_a = least($1::uuid, $2::uuid) AND user_b = greatest($1::uuid, $2::uuid)
	`, a, b).Scan(&c.ID, &c.UserA, &c.UserB, &c.LastMessage, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.ResolveConversation.Select")
	}
	return &c, nil
}

func (r *PgChatRepository) TouchConversation(ctx context.Context, conversationID string, text string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chat.conversation
		SET last_message = $2, last_message_at = $3
		WHERE id = $1::uuid AND (last_message_at IS NULL OR last_message_at <= $3)
	`, conversationID, text, at)
	return errors.Wrap(err, "chatRepo.TouchConversation.Exec")
}

// ===================== Messages =====================

func (r *PgChatRepository) InsertMessage(ctx context.Context, m chat.Message) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, recipient_id, text, status, created_at, delivered_at, read_at)
		VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7, $8)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.RecipientID, m.Text, m.Status, m.CreatedAt, m.DeliveredAt, m.ReadAt).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "chatRepo.InsertMessage.Insert")
	}
	return id, nil
}

// MarkDelivered advances the given messages from sent to delivered. Messages
// already past sent are left untouched and excluded from the result, which is
// what makes concurrent delivery attempts idempotent.
func (r *PgChatRepository) MarkDelivered(ctx context.Context, messageIDs []string, at time.Time) ([]chat.Message, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		UPDATE chat.message
		SET status = 'delivered', delivered_at = $2
		WHERE id = ANY($1::uuid[]) AND status = 'sent'
		RETURNING `+messageColumns,
		messageIDs, at)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.MarkDelivered.Update")
	}
	msgs, err := collectMessages(rows)
	return msgs, errors.Wrap(err, "chatRepo.MarkDelivered.Collect")
}

// MarkRead advances messages addressed to readerID inside the conversation to
// read. Ids that are missing, foreign to the conversation, not addressed to
// the reader, or already read are silently skipped.
func (r *PgChatRepository) MarkRead(ctx context.Context, conversationID, readerID string, messageIDs []string, at time.Time) ([]chat.Message, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		UPDATE chat.message
		SET status = 'read', read_at = $4,
		    delivered_at = COALESCE(delivered_at, $4)
		WHERE id = ANY($3::uuid[])
		  AND conversation_id = $1::uuid
		  AND recipient_id = $2::uuid
		  AND status <> 'read'
		RETURNING `+messageColumns,
		conversationID, readerID, messageIDs, at)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.MarkRead.Update")
	}
	msgs, err := collectMessages(rows)
	return msgs, errors.Wrap(err, "chatRepo.MarkRead.Collect")
}

// DeliverBacklog advances every still-sent message addressed to recipientID to
// delivered in one statement, stamping a single timestamp. Concurrent callers
// for the same user partition the rows between them; no row is advanced twice.
func (r *PgChatRepository) DeliverBacklog(ctx context.Context, recipientID string, at time.Time) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE chat.message
		SET status = 'delivered', delivered_at = $2
		WHERE recipient_id = $1::uuid AND status = 'sent'
		RETURNING `+messageColumns,
		recipientID, at)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.DeliverBacklog.Update")
	}
	msgs, err := collectMessages(rows)
	return msgs, errors.Wrap(err, "chatRepo.DeliverBacklog.Collect")
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.ListMessages.Query")
	}
	msgs, err := collectMessages(rows)
	return msgs, errors.Wrap(err, "chatRepo.ListMessages.Collect")
}
